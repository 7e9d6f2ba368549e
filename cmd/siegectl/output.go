package main

import (
	"fmt"
	"io"
	"strings"

	"siegemap/internal/domain"
	"siegemap/internal/editor"
	"siegemap/internal/render"
)

func printView(w io.Writer, v render.TowerView) {
	fmt.Fprintf(w, "%-3s %d* %-6s %s\n", v.Number, v.Stars, v.Color, v.ID)
	switch {
	case v.Placeholder:
		fmt.Fprintln(w, "    -")
	case v.Mode == render.ModeNames:
		for _, g := range v.Groups {
			fmt.Fprintf(w, "    %s: %s\n", strings.Join(g.Monsters[:], " / "), strings.Join(g.Users, ", "))
		}
	default:
		for _, row := range v.Rows {
			labels := make([]string, 0, len(row.Icons))
			for _, icon := range row.Icons {
				labels = append(labels, icon.Label)
			}
			fmt.Fprintf(w, "    %s\n", strings.Join(labels, " / "))
		}
	}
}

func printSession(w io.Writer, s *editor.Session, catalog *render.Catalog) {
	u := s.Update()
	fmt.Fprintf(w, "tower %s: %s, %d stars, %s\n", s.TowerID(), u.TowerNumber, u.Stars, u.Color)
	res := s.Resolved()
	for i, a := range s.Assignments() {
		defense := a.DefenseID
		if d, ok := res.Defenses[a.DefenseID]; ok {
			defense = monsterNames(catalog, d)
		}
		user := "-"
		if a.HasUser() {
			user = a.UserID
			if rec, ok := res.Users[a.UserID]; ok {
				user = rec.DisplayName()
			}
		}
		fmt.Fprintf(w, "  %d. %s (%s) %s\n", i+1, defense, a.DefenseID, user)
	}
}

func monsterNames(catalog *render.Catalog, d domain.Defense) string {
	monsters := d.Monsters()
	names := make([]string, 0, len(monsters))
	for _, m := range monsters {
		names = append(names, catalog.DisplayName(m))
	}
	return strings.Join(names, " / ")
}
