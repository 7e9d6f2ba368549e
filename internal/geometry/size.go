// Package geometry turns pointer gestures into tower geometry updates and
// computes the map scale. Geometry is stored in the map image's natural pixel
// space; only rendering multiplies by the scale.
package geometry

import "math"

const (
	MinIconSize       = 24.0
	MaxIconSize       = 48.0
	iconDivisor       = 6.0
	iconsPerRow       = 3.0
	widthPadding      = 4.0
	MinRenderedHeight = 60.0
)

// IconSize is the monster icon edge for a tower of the given height.
func IconSize(height float64) float64 {
	return math.Min(MaxIconSize, math.Max(MinIconSize, height/iconDivisor))
}

// WidthForHeight is the only way a tower width is ever obtained.
func WidthForHeight(height float64) float64 {
	return IconSize(height)*iconsPerRow + widthPadding
}

// Point is a position in natural pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a tower rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect builds a rectangle whose width is derived from height.
func NewRect(x, y, height float64) Rect {
	return Rect{X: x, Y: y, Width: WidthForHeight(height), Height: height}
}

// Scaled projects r into screen space.
func (r Rect) Scaled(s Scale) Rect {
	f := float64(s)
	return Rect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}
