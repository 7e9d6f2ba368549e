package board

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siegemap/internal/domain"
	"siegemap/internal/geometry"
	"siegemap/internal/render"
)

func TestSortTowers(t *testing.T) {
	tests := []struct {
		name  string
		input []domain.Tower
		want  []string
	}{
		{
			name: "color bucket then number, QG last in its bucket",
			input: []domain.Tower{
				{ID: "red-1", Color: domain.ColorRed, TowerNumber: "1"},
				{ID: "blue-QG", Color: domain.ColorBlue, TowerNumber: "QG"},
				{ID: "blue-2", Color: domain.ColorBlue, TowerNumber: "2"},
				{ID: "yellow-1", Color: domain.ColorYellow, TowerNumber: "1"},
			},
			want: []string{"blue-2", "blue-QG", "red-1", "yellow-1"},
		},
		{
			name: "numbers sort numerically",
			input: []domain.Tower{
				{ID: "10", TowerNumber: "10"},
				{ID: "9", TowerNumber: "9"},
				{ID: "1", TowerNumber: "1"},
			},
			want: []string{"1", "9", "10"},
		},
		{
			name: "unknown colors last, empty color is blue",
			input: []domain.Tower{
				{ID: "purple", Color: "purple", TowerNumber: "1"},
				{ID: "yellow", Color: domain.ColorYellow, TowerNumber: "5"},
				{ID: "default", TowerNumber: "7"},
			},
			want: []string{"default", "yellow", "purple"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SortTowers(tt.input)
			ids := make([]string, 0, len(got))
			for _, tw := range got {
				ids = append(ids, tw.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSortTowers_DoesNotModifyInput(t *testing.T) {
	in := []domain.Tower{{ID: "b", TowerNumber: "2"}, {ID: "a", TowerNumber: "1"}}
	SortTowers(in)
	assert.Equal(t, "b", in[0].ID)
}

func TestNaturalSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 200))))

	size, err := NaturalSize(&buf)
	require.NoError(t, err)
	assert.Equal(t, geometry.ImageSize{Width: 320, Height: 200}, size)

	_, err = NaturalSize(strings.NewReader("not an image"))
	assert.Error(t, err)
}

func fixture() ([]domain.Tower, render.Resolved) {
	towers := []domain.Tower{
		{ID: "A", TowerNumber: "QG", Color: domain.ColorBlue, X: 100, Y: 50, Height: 120, DefenseIDs: `[{"defenseId":"d1","userId":"u1"}]`},
		{ID: "B", TowerNumber: "1", Color: domain.ColorBlue, X: 400, Y: 300, Height: 60, DefenseIDs: `[{"defenseId":"d1","userId":"u1"}]`},
	}
	res := render.Resolved{
		Defenses: map[string]domain.Defense{"d1": {ID: "d1", LeaderMonster: "Lushen", Monster2: "Chasun", Monster3: "Bastet"}},
		Users:    map[string]domain.User{"u1": {ID: "u1", Identifier: "alice"}},
	}
	return towers, res
}

func TestMapView_ScalesOverlays(t *testing.T) {
	towers, res := fixture()
	c := NewComposer(render.NewRenderer(nil, nil))
	b := geometry.NewBoard()

	mv := c.MapView("nord", "/uploads/nord", geometry.ImageSize{Width: 2000, Height: 1000},
		geometry.Viewport{Width: 1000, Height: 2000}, towers, res, false, b)

	assert.InDelta(t, 0.475, float64(mv.Scale), 1e-9)
	assert.InDelta(t, 950, mv.Width, 1e-9)
	require.Len(t, mv.Overlays, 2)
	assert.InDelta(t, 47.5, mv.Overlays[0].Screen.X, 1e-9)
	assert.InDelta(t, 76*0.475, mv.Overlays[0].Screen.Width, 1e-9)
	assert.Equal(t, 76.0, mv.Overlays[0].Tower.Rect.Width, "natural geometry is kept unscaled")
	assert.Equal(t, "none", mv.Overlays[0].PointerEvents)

	b.SetEditing(true)
	mv = c.MapView("nord", "/uploads/nord", geometry.ImageSize{Width: 2000, Height: 1000},
		geometry.Viewport{Width: 1000, Height: 2000}, towers, res, false, b)
	assert.Equal(t, "auto", mv.Overlays[0].PointerEvents)
	assert.True(t, mv.Editing)
}

func TestListAndMapShowTheSameContent(t *testing.T) {
	towers, res := fixture()
	c := NewComposer(render.NewRenderer(nil, nil))

	mv := c.MapView("nord", "", geometry.ImageSize{Width: 100, Height: 100}, geometry.Viewport{}, towers, res, true, nil)
	tl := c.TowerList("nord", towers, res, true)

	require.Len(t, tl.Cards, 2)
	assert.Equal(t, "B", tl.Cards[0].ID, "1 sorts before QG")
	assert.Equal(t, mv.Overlays[1].Tower, tl.Cards[0])
	assert.Equal(t, mv.Overlays[0].Tower, tl.Cards[1])

	// The pair is held by both towers; only A, first in collection order, shows it.
	assert.Len(t, tl.Cards[1].Groups, 1)
	assert.True(t, tl.Cards[0].Placeholder)
}

func TestPages(t *testing.T) {
	towers, res := fixture()
	images := render.NewImageCache(render.ImageResolver{})
	c := NewComposer(render.NewRenderer(nil, images))
	pages, err := NewPages()
	require.NoError(t, err)

	var buf bytes.Buffer
	mv := c.MapView("nord", "/uploads/nord", geometry.ImageSize{Width: 1000, Height: 500},
		geometry.Viewport{Width: 1000, Height: 1000}, towers, res, false, nil)
	require.NoError(t, pages.RenderMap(&buf, mv))
	html := buf.String()
	assert.Contains(t, html, `src="/uploads/nord"`)
	assert.Contains(t, html, `/uploads/monsters/lushen.png`)
	assert.Contains(t, html, `pointer-events:none`)

	buf.Reset()
	require.NoError(t, pages.RenderList(&buf, c.TowerList("nord", towers, res, true)))
	assert.Contains(t, buf.String(), "alice")
	assert.Contains(t, buf.String(), "repeat(3,1fr)")
}

func TestAssets(t *testing.T) {
	_, err := Assets().Open("board.js")
	assert.NoError(t, err)
}
