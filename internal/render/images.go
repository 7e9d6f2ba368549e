package render

import (
	"strings"
	"sync"
)

// SourceKind is a tier of the monster image fallback chain.
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceRemote SourceKind = "remote"
	SourceText   SourceKind = "text"
)

// ImageSource is one way of drawing a monster: an image URL or plain text.
type ImageSource struct {
	Kind SourceKind `json:"kind"`
	URL  string     `json:"url,omitempty"`
	Text string     `json:"text,omitempty"`
}

// maxSwaps bounds how many times an image element changes source.
const maxSwaps = 2

// Default locations of monster icons.
const (
	DefaultLocalBase  = "/uploads/monsters"
	DefaultImageExt   = "png"
	DefaultRemoteBase = "https://swarfarm.com/static/herders/images/monsters"
)

// ImageResolver builds the fallback chain for a monster: the locally cached
// icon, the remote canonical image, then the monster's name as text.
type ImageResolver struct {
	LocalBase  string
	Ext        string
	RemoteBase string
	Catalog    *Catalog
}

// Chain returns the ordered sources for raw.
func (r ImageResolver) Chain(raw string) []ImageSource {
	local := strings.TrimRight(orDefault(r.LocalBase, DefaultLocalBase), "/")
	ext := strings.TrimPrefix(orDefault(r.Ext, DefaultImageExt), ".")

	name := raw
	m, known := r.Catalog.Lookup(raw)
	if known && m.Name != "" {
		name = m.Name
	}

	chain := make([]ImageSource, 0, 3)
	if stem := NormalizeName(name); stem != "" {
		chain = append(chain, ImageSource{Kind: SourceLocal, URL: local + "/" + stem + "." + ext})
	}
	if known && m.ImageFilename != "" {
		remote := strings.TrimRight(orDefault(r.RemoteBase, DefaultRemoteBase), "/")
		chain = append(chain, ImageSource{Kind: SourceRemote, URL: remote + "/" + m.ImageFilename})
	}
	return append(chain, ImageSource{Kind: SourceText, Text: r.Catalog.DisplayName(raw)})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// FallbackImage is the state of one image element walking the chain. It
// swaps source at most twice and never cycles.
type FallbackImage struct {
	mu      sync.Mutex
	sources []ImageSource
	pos     int
	swaps   int
}

// NewFallbackImage starts at the first source of chain.
func NewFallbackImage(chain []ImageSource) *FallbackImage {
	return &FallbackImage{sources: chain}
}

// Current is the source to draw now.
func (f *FallbackImage) Current() ImageSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sources) == 0 {
		return ImageSource{Kind: SourceText}
	}
	return f.sources[f.pos]
}

// Fail records a load failure of the current source and returns the next
// one. ok is false once the element has given up.
func (f *FallbackImage) Fail() (next ImageSource, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.swaps >= maxSwaps || f.pos+1 >= len(f.sources) {
		if len(f.sources) == 0 {
			return ImageSource{Kind: SourceText}, false
		}
		return f.sources[f.pos], false
	}
	f.pos++
	f.swaps++
	return f.sources[f.pos], true
}

// ImageCache memoizes fallback state per monster for one view. Build one per
// page or session and pass it to every renderer of that view; once a
// monster's source has failed, later elements start at the next tier.
type ImageCache struct {
	resolver    ImageResolver
	unavailable func(ImageSource) bool
	mu          sync.Mutex
	images      map[string]*FallbackImage
}

// NewImageCache creates an empty cache over resolver.
func NewImageCache(resolver ImageResolver) *ImageCache {
	return &ImageCache{resolver: resolver, images: make(map[string]*FallbackImage)}
}

// SkipUnavailable makes the cache fail sources for which fn reports true
// before handing them out, as if they had failed to load.
func (c *ImageCache) SkipUnavailable(fn func(ImageSource) bool) *ImageCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unavailable = fn
	return c
}

// Image returns the shared fallback state for raw.
func (c *ImageCache) Image(raw string) *FallbackImage {
	c.mu.Lock()
	defer c.mu.Unlock()
	img, ok := c.images[raw]
	if !ok {
		img = NewFallbackImage(c.resolver.Chain(raw))
		if c.unavailable != nil {
			for c.unavailable(img.Current()) {
				if _, ok := img.Fail(); !ok {
					break
				}
			}
		}
		c.images[raw] = img
	}
	return img
}

// Chain returns the remaining sources for raw starting at its current tier.
func (c *ImageCache) Chain(raw string) []ImageSource {
	img := c.Image(raw)
	img.mu.Lock()
	defer img.mu.Unlock()
	return append([]ImageSource(nil), img.sources[img.pos:]...)
}

// Len returns the number of monsters seen by this cache.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
