package geometry

import "math"

// Scale is the ratio between the rendered and the natural map image size.
type Scale float64

const (
	// MobileReferenceWidth is the width the map is laid out at on mobile so
	// the user can pinch-zoom into it.
	MobileReferenceWidth = 1000.0
	desktopWidthFraction = 0.95
	MaxDesktopScale      = 1.2
)

// ImageSize is a natural image size in pixels.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport describes the container the map is drawn into.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Mobile bool    `json:"mobile"`
}

// ComputeScale picks the map scale for an image shown in vp.
// Mobile lays the image out at a reference width at least as wide as the
// viewport. Desktop fits 95% of the container width and its full height,
// capped at 120% of natural size.
func ComputeScale(natural ImageSize, vp Viewport) Scale {
	if natural.Width <= 0 || natural.Height <= 0 {
		return 1
	}
	nw, nh := float64(natural.Width), float64(natural.Height)

	if vp.Mobile {
		return Scale(math.Max(MobileReferenceWidth, vp.Width) / nw)
	}

	s := MaxDesktopScale
	if vp.Width > 0 {
		s = math.Min(s, vp.Width*desktopWidthFraction/nw)
	}
	if vp.Height > 0 {
		s = math.Min(s, vp.Height/nh)
	}
	return Scale(s)
}

// ScaleTracker recomputes the scale whenever the image loads or the viewport changes.
type ScaleTracker struct {
	natural  *ImageSize
	viewport Viewport
	scale    Scale
}

// NewScaleTracker starts with scale 1 until the image has loaded.
func NewScaleTracker(vp Viewport) *ScaleTracker {
	return &ScaleTracker{viewport: vp, scale: 1}
}

// ImageLoaded records the natural size and returns the new scale.
func (t *ScaleTracker) ImageLoaded(size ImageSize) Scale {
	t.natural = &size
	return t.recompute()
}

// Resized records a viewport change and returns the new scale.
func (t *ScaleTracker) Resized(vp Viewport) Scale {
	t.viewport = vp
	return t.recompute()
}

// Scale returns the current scale and whether the image has loaded.
func (t *ScaleTracker) Scale() (Scale, bool) {
	return t.scale, t.natural != nil
}

func (t *ScaleTracker) recompute() Scale {
	if t.natural != nil {
		t.scale = ComputeScale(*t.natural, t.viewport)
	}
	return t.scale
}
