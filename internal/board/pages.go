package board

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"siegemap/internal/render"
)

//go:embed templates
var templateFS embed.FS

// Assets serves board.js and board.css.
func Assets() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

type iconData struct {
	Source   render.ImageSource
	Fallback string
	Label    string
	Size     float64
}

func iconFor(icon render.Icon, size float64) iconData {
	d := iconData{Label: icon.Label, Size: size}
	if len(icon.Sources) == 0 {
		d.Source = render.ImageSource{Kind: render.SourceText, Text: icon.Label}
		return d
	}
	d.Source = icon.Sources[0]
	var rest []string
	for _, s := range icon.Sources[1:] {
		if s.Kind != render.SourceText {
			rest = append(rest, s.URL)
		}
	}
	d.Fallback = strings.Join(rest, " ")
	return d
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// Pages renders the server-side HTML of both presentations.
type Pages struct {
	mapTmpl  *template.Template
	listTmpl *template.Template
}

// NewPages parses the embedded templates.
func NewPages() (*Pages, error) {
	funcs := template.FuncMap{"px": px, "icon": iconFor}
	parse := func(page string) (*template.Template, error) {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		return t, nil
	}

	mapTmpl, err := parse("map.html")
	if err != nil {
		return nil, err
	}
	listTmpl, err := parse("list.html")
	if err != nil {
		return nil, err
	}
	return &Pages{mapTmpl: mapTmpl, listTmpl: listTmpl}, nil
}

// RenderMap writes the map page.
func (p *Pages) RenderMap(w io.Writer, mv MapView) error {
	return p.mapTmpl.ExecuteTemplate(w, "map.html", mv)
}

// RenderList writes the list page.
func (p *Pages) RenderList(w io.Writer, tl TowerList) error {
	return p.listTmpl.ExecuteTemplate(w, "list.html", tl)
}
