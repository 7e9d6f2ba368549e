package board

import (
	"siegemap/internal/assignment"
	"siegemap/internal/domain"
	"siegemap/internal/geometry"
	"siegemap/internal/render"
)

// Overlay is one tower drawn over the map image, positioned in screen space.
type Overlay struct {
	Tower         render.TowerView `json:"tower"`
	Screen        geometry.Rect    `json:"screen"`
	PointerEvents string           `json:"pointerEvents"`
}

// MapView is the map image with every tower as an absolutely positioned
// overlay scaled by the map scale.
type MapView struct {
	MapName  string             `json:"mapName"`
	ImageURL string             `json:"imageUrl"`
	Natural  geometry.ImageSize `json:"natural"`
	Scale    geometry.Scale     `json:"scale"`
	Width    float64            `json:"width"`
	Height   float64            `json:"height"`
	Editing  bool               `json:"editing"`
	Names    bool               `json:"showNames"`
	Overlays []Overlay          `json:"overlays"`
}

// TowerList is the scale-independent grid of tower cards.
type TowerList struct {
	MapName string             `json:"mapName"`
	Columns int                `json:"columns"`
	Names   bool               `json:"showNames"`
	Cards   []render.TowerView `json:"cards"`
}

// ListColumns is the number of cards per row in the list presentation.
const ListColumns = 3

// Composer builds both presentations from the same towers and resolved
// records so their content is identical.
type Composer struct {
	renderer *render.Renderer
}

// NewComposer draws towers with r.
func NewComposer(r *render.Renderer) *Composer {
	return &Composer{renderer: r}
}

func (c *Composer) views(towers []domain.Tower, res render.Resolved, showNames bool) []render.TowerView {
	opts := render.Options{ShowNames: showNames, Index: assignment.NewIndex(towers)}
	views := make([]render.TowerView, 0, len(towers))
	for _, t := range towers {
		views = append(views, c.renderer.Render(t, res, opts))
	}
	return views
}

// MapView lays towers over the map image. board decides whether towers take
// pointer events.
func (c *Composer) MapView(mapName, imageURL string, natural geometry.ImageSize, vp geometry.Viewport,
	towers []domain.Tower, res render.Resolved, showNames bool, b *geometry.Board) MapView {
	scale := geometry.ComputeScale(natural, vp)
	pointer := "none"
	editing := false
	if b != nil {
		pointer = b.PointerEvents()
		editing = b.Editing()
	}

	mv := MapView{
		MapName:  mapName,
		ImageURL: imageURL,
		Natural:  natural,
		Scale:    scale,
		Width:    float64(natural.Width) * float64(scale),
		Height:   float64(natural.Height) * float64(scale),
		Editing:  editing,
		Names:    showNames,
		Overlays: make([]Overlay, 0, len(towers)),
	}
	for _, v := range c.views(towers, res, showNames) {
		mv.Overlays = append(mv.Overlays, Overlay{
			Tower:         v,
			Screen:        v.Rect.Scaled(scale),
			PointerEvents: pointer,
		})
	}
	return mv
}

// TowerList renders towers as sorted cards. Cross-tower filtering uses the
// collection order, not the sorted order, so both presentations agree.
func (c *Composer) TowerList(mapName string, towers []domain.Tower, res render.Resolved, showNames bool) TowerList {
	views := c.views(towers, res, showNames)
	byID := make(map[string]render.TowerView, len(views))
	for _, v := range views {
		byID[v.ID] = v
	}

	sorted := SortTowers(towers)
	cards := make([]render.TowerView, 0, len(sorted))
	for _, t := range sorted {
		cards = append(cards, byID[t.ID])
	}
	return TowerList{MapName: mapName, Columns: ListColumns, Names: showNames, Cards: cards}
}
