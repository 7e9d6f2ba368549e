package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clamp(lo, hi, v float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func TestWidthForHeight(t *testing.T) {
	for h := 60.0; h <= 600; h += 7.5 {
		want := clamp(24, 48, h/6)*3 + 4
		assert.InDelta(t, want, WidthForHeight(h), 1e-9, "height %v", h)
	}

	assert.Equal(t, 76.0, WidthForHeight(60))
	assert.Equal(t, 112.0, WidthForHeight(216))
	assert.Equal(t, 148.0, WidthForHeight(1000))
}

func TestNewRectDerivesWidth(t *testing.T) {
	r := NewRect(10, 20, 240)
	assert.Equal(t, Rect{X: 10, Y: 20, Width: 124, Height: 240}, r)
	assert.Equal(t, Rect{X: 5, Y: 10, Width: 62, Height: 120}, r.Scaled(0.5))
}

func editingBoard() *Board {
	b := NewBoard()
	b.SetEditing(true)
	return b
}

func TestDrag_UsesStorageSpace(t *testing.T) {
	b := editingBoard()

	// The map is shown at scale 0.5, which plays no part: the drag handler
	// reports positions in the same natural space the tower is stored in.
	drag, err := b.BeginDrag("t1", Point{X: 100, Y: 100})
	require.NoError(t, err)
	assert.True(t, b.Active("t1"))

	assert.Equal(t, Point{X: 110, Y: 105}, drag.Move(10, 5))
	drag.Move(50, 20)

	assert.Equal(t, Point{X: 150, Y: 120}, drag.Commit())
	assert.False(t, b.Active("t1"))
}

func TestResize(t *testing.T) {
	b := editingBoard()

	// Rendered at 120px with scale 0.5 means natural height 240.
	r, err := b.BeginResize("t1", 120, 0.5)
	require.NoError(t, err)

	live := r.Move(30)
	assert.InDelta(t, 300, live.Height, 1e-9)
	assert.InDelta(t, WidthForHeight(300), live.Width, 1e-9)

	live = r.Move(-500)
	assert.InDelta(t, 120, live.Height, 1e-9, "60 screen pixels at scale 0.5")
	assert.InDelta(t, WidthForHeight(120), live.Width, 1e-9)

	committed := r.Commit()
	assert.Equal(t, live, committed)
	assert.False(t, b.Active("t1"))
}

func TestResize_WidthInvariantDuringMove(t *testing.T) {
	b := editingBoard()
	r, err := b.BeginResize("t1", 200, 1.25)
	require.NoError(t, err)

	for dy := -300.0; dy <= 300; dy += 13 {
		size := r.Move(dy)
		assert.GreaterOrEqual(t, size.Height*1.25, MinRenderedHeight-1e-9)
		assert.InDelta(t, clamp(24, 48, size.Height/6)*3+4, size.Width, 1e-9)
	}
}

func TestGesturesAreExclusivePerTower(t *testing.T) {
	b := editingBoard()

	r, err := b.BeginResize("t1", 100, 1)
	require.NoError(t, err)

	_, err = b.BeginDrag("t1", Point{})
	assert.ErrorIs(t, err, ErrGestureActive)

	other, err := b.BeginDrag("t2", Point{})
	require.NoError(t, err, "other towers are independent")
	other.Cancel()

	r.Commit()
	d, err := b.BeginDrag("t1", Point{})
	require.NoError(t, err)
	d.Cancel()
}

func TestStaleGestureDoesNotReleaseNewerLock(t *testing.T) {
	b := editingBoard()

	stale, err := b.BeginDrag("t1", Point{})
	require.NoError(t, err)

	b.SetEditing(false)
	b.SetEditing(true)

	r, err := b.BeginResize("t1", 100, 1)
	require.NoError(t, err)

	stale.Commit()
	assert.True(t, b.Active("t1"), "resize still holds the tower")
	_, err = b.BeginDrag("t1", Point{})
	assert.ErrorIs(t, err, ErrGestureActive)

	r.Commit()
	assert.False(t, b.Active("t1"))
}

func TestReadOnlyBoard(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, "none", b.PointerEvents())

	_, err := b.BeginDrag("t1", Point{})
	assert.ErrorIs(t, err, ErrEditingDisabled)
	_, err = b.BeginResize("t1", 100, 1)
	assert.ErrorIs(t, err, ErrEditingDisabled)

	b.SetEditing(true)
	assert.Equal(t, "auto", b.PointerEvents())
	_, err = b.BeginDrag("t1", Point{})
	require.NoError(t, err)

	b.SetEditing(false)
	assert.False(t, b.Active("t1"))
}

func TestComputeScale(t *testing.T) {
	natural := ImageSize{Width: 2000, Height: 1000}

	tests := []struct {
		name string
		vp   Viewport
		want float64
	}{
		{"desktop width bound", Viewport{Width: 1000, Height: 2000}, 0.475},
		{"desktop height bound", Viewport{Width: 4000, Height: 500}, 0.5},
		{"desktop capped", Viewport{Width: 10000, Height: 10000}, 1.2},
		{"mobile reference width", Viewport{Width: 400, Height: 800, Mobile: true}, 0.5},
		{"mobile wide viewport", Viewport{Width: 1200, Height: 800, Mobile: true}, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, float64(ComputeScale(natural, tt.vp)), 1e-9)
		})
	}

	assert.Equal(t, Scale(1), ComputeScale(ImageSize{}, Viewport{Width: 100}))
}

func TestScaleTracker(t *testing.T) {
	tr := NewScaleTracker(Viewport{Width: 1000, Height: 2000})

	s, loaded := tr.Scale()
	assert.False(t, loaded)
	assert.Equal(t, Scale(1), s)

	assert.InDelta(t, 0.475, float64(tr.ImageLoaded(ImageSize{Width: 2000, Height: 1000})), 1e-9)
	assert.InDelta(t, 0.95, float64(tr.Resized(Viewport{Width: 2000, Height: 2000})), 1e-9)

	_, loaded = tr.Scale()
	assert.True(t, loaded)
}
