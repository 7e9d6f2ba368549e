package geometry

import (
	"errors"
	"math"
	"sync"
)

var (
	ErrEditingDisabled = errors.New("editing disabled")
	ErrGestureActive   = errors.New("another gesture is active on this tower")
)

// Board tracks which towers are being dragged or resized. A tower carries at
// most one gesture at a time; different towers are independent.
type Board struct {
	mu      sync.Mutex
	editing bool
	next    uint64
	// active maps a tower to the token of the gesture holding it.
	active map[string]uint64
}

// NewBoard returns a read-only board.
func NewBoard() *Board {
	return &Board{active: make(map[string]uint64)}
}

// SetEditing toggles edit mode. Leaving edit mode cancels every gesture.
func (b *Board) SetEditing(editing bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.editing = editing
	if !editing {
		clear(b.active)
	}
}

// Editing reports whether gestures are accepted.
func (b *Board) Editing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.editing
}

// PointerEvents is the CSS pointer-events value for tower overlays: outside
// edit mode towers let events through to the map.
func (b *Board) PointerEvents() string {
	if b.Editing() {
		return "auto"
	}
	return "none"
}

func (b *Board) acquire(towerID string) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.editing {
		return 0, ErrEditingDisabled
	}
	if _, busy := b.active[towerID]; busy {
		return 0, ErrGestureActive
	}
	b.next++
	b.active[towerID] = b.next
	return b.next, nil
}

// release frees towerID only if token still holds it. A gesture cancelled by
// leaving edit mode must not free a lock taken after it.
func (b *Board) release(towerID string, token uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active[towerID] == token {
		delete(b.active, towerID)
	}
}

// Active reports whether towerID has a gesture in progress.
func (b *Board) Active(towerID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.active[towerID]
	return ok
}

// Drag moves a tower. Positions reported by the drag handler are already in
// natural space, so deltas are applied unscaled.
type Drag struct {
	board   *Board
	towerID string
	token   uint64
	origin  Point
	offset  Point
	done    bool
}

// BeginDrag starts dragging towerID from its stored position.
func (b *Board) BeginDrag(towerID string, origin Point) (*Drag, error) {
	token, err := b.acquire(towerID)
	if err != nil {
		return nil, err
	}
	return &Drag{board: b, towerID: towerID, token: token, origin: origin}, nil
}

// Move updates the transient offset and returns the position to draw at.
func (d *Drag) Move(dx, dy float64) Point {
	d.offset = Point{X: dx, Y: dy}
	return d.Position()
}

// Position is origin plus the current offset.
func (d *Drag) Position() Point {
	return Point{X: d.origin.X + d.offset.X, Y: d.origin.Y + d.offset.Y}
}

// Commit ends the drag and returns the position to store.
func (d *Drag) Commit() Point {
	d.finish()
	return d.Position()
}

// Cancel ends the drag without a position change.
func (d *Drag) Cancel() {
	d.finish()
}

func (d *Drag) finish() {
	if !d.done {
		d.done = true
		d.board.release(d.towerID, d.token)
	}
}

// Resize changes a tower height from its bottom-right handle. Pointer deltas
// arrive in screen pixels and are divided by the scale.
type Resize struct {
	board        *Board
	towerID      string
	token        uint64
	scale        Scale
	startNatural float64
	height       float64
	done         bool
}

// BeginResize captures the rendered height of towerID at scale s.
func (b *Board) BeginResize(towerID string, renderedHeight float64, s Scale) (*Resize, error) {
	if s <= 0 {
		s = 1
	}
	token, err := b.acquire(towerID)
	if err != nil {
		return nil, err
	}
	start := renderedHeight / float64(s)
	return &Resize{board: b, towerID: towerID, token: token, scale: s, startNatural: start, height: start}, nil
}

// Move applies a vertical screen delta and returns the live size. The height
// never renders below MinRenderedHeight screen pixels.
func (r *Resize) Move(deltaY float64) Rect {
	f := float64(r.scale)
	r.height = math.Max(MinRenderedHeight/f, r.startNatural+deltaY/f)
	return r.Size()
}

// Size is the current natural size, width derived from height.
func (r *Resize) Size() Rect {
	return Rect{Width: WidthForHeight(r.height), Height: r.height}
}

// Commit ends the resize and returns the height and derived width to store.
func (r *Resize) Commit() Rect {
	if !r.done {
		r.done = true
		r.board.release(r.towerID, r.token)
	}
	return r.Size()
}
