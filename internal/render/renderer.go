// Package render turns a tower and its resolved defenses and users into the
// content drawn inside the tower rectangle.
package render

import (
	"siegemap/internal/assignment"
	"siegemap/internal/domain"
	"siegemap/internal/geometry"
)

// Mode selects what a tower shows.
type Mode string

const (
	ModeIcons Mode = "icons"
	ModeNames Mode = "names"
)

// Resolved holds the defenses and users fetched for a view. Ids missing from
// the maps were not found and are silently left out.
type Resolved struct {
	Defenses map[string]domain.Defense
	Users    map[string]domain.User
}

// Icon is one monster slot.
type Icon struct {
	Monster string        `json:"monster"`
	Label   string        `json:"label"`
	Sources []ImageSource `json:"sources"`
}

// IconRow is one assignment drawn as three monster icons.
type IconRow struct {
	DefenseID string  `json:"defenseId"`
	Icons     [3]Icon `json:"icons"`
}

// NameGroup is one defense with every distinct user assigned to it.
type NameGroup struct {
	DefenseID string    `json:"defenseId"`
	Monsters  [3]string `json:"monsters"`
	Users     []string  `json:"users"`
}

// TowerView is the rendered content of a tower.
type TowerView struct {
	ID          string        `json:"id"`
	Number      string        `json:"towerNumber"`
	Stars       int           `json:"stars"`
	Color       domain.Color  `json:"color"`
	Rect        geometry.Rect `json:"rect"`
	IconSize    float64       `json:"iconSize"`
	Mode        Mode          `json:"mode"`
	Placeholder bool          `json:"placeholder"`
	Rows        []IconRow     `json:"rows,omitempty"`
	Groups      []NameGroup   `json:"groups,omitempty"`
}

// Options controls one render pass.
type Options struct {
	ShowNames bool
	// Index is the map-wide snapshot used to hide pairs another tower already shows.
	Index *assignment.Index
}

// Renderer draws towers for one view.
type Renderer struct {
	catalog *Catalog
	images  *ImageCache
}

// NewRenderer uses catalog for labels and images for the icon fallback state.
func NewRenderer(catalog *Catalog, images *ImageCache) *Renderer {
	return &Renderer{catalog: catalog, images: images}
}

// Render produces the view of t.
func (r *Renderer) Render(t domain.Tower, res Resolved, opts Options) TowerView {
	rect := geometry.Rect{X: t.X, Y: t.Y, Width: geometry.WidthForHeight(t.Height), Height: t.Height}
	view := TowerView{
		ID:       t.ID,
		Number:   t.TowerNumber,
		Stars:    t.Stars,
		Color:    t.Color.OrDefault(),
		Rect:     rect,
		IconSize: geometry.IconSize(t.Height),
	}

	list := assignment.Parse(t.DefenseIDs)
	if opts.ShowNames {
		view.Mode = ModeNames
		if opts.Index != nil {
			list = opts.Index.Visible(t.ID, list)
		}
		view.Groups = r.groups(list, res)
		view.Placeholder = len(view.Groups) == 0
		return view
	}

	view.Mode = ModeIcons
	view.Rows = r.rows(list, res)
	view.Placeholder = len(view.Rows) == 0
	return view
}

func (r *Renderer) rows(list []assignment.Assignment, res Resolved) []IconRow {
	rows := make([]IconRow, 0, len(list))
	for _, a := range list {
		if len(rows) == assignment.MaxPerTower {
			break
		}
		def, ok := res.Defenses[a.DefenseID]
		if !ok {
			continue
		}
		row := IconRow{DefenseID: def.ID}
		for i, m := range def.Monsters() {
			row.Icons[i] = r.icon(m)
		}
		rows = append(rows, row)
	}
	return rows
}

func (r *Renderer) icon(raw string) Icon {
	icon := Icon{Monster: raw, Label: r.catalog.DisplayName(raw)}
	if r.images != nil {
		icon.Sources = r.images.Chain(raw)
	}
	return icon
}

func (r *Renderer) groups(list []assignment.Assignment, res Resolved) []NameGroup {
	var groups []NameGroup
	pos := make(map[string]int)
	seen := make(map[string]map[string]struct{})

	for _, a := range list {
		def, ok := res.Defenses[a.DefenseID]
		if !ok {
			continue
		}
		i, exists := pos[def.ID]
		if !exists {
			monsters := def.Monsters()
			for j, m := range monsters {
				monsters[j] = r.catalog.DisplayName(m)
			}
			groups = append(groups, NameGroup{DefenseID: def.ID, Monsters: monsters, Users: []string{}})
			i = len(groups) - 1
			pos[def.ID] = i
			seen[def.ID] = make(map[string]struct{})
		}
		if !a.HasUser() {
			continue
		}
		user, ok := res.Users[a.UserID]
		if !ok {
			continue
		}
		name := user.DisplayName()
		if _, dup := seen[def.ID][name]; dup {
			continue
		}
		seen[def.ID][name] = struct{}{}
		groups[i].Users = append(groups[i].Users, name)
	}
	return groups
}
