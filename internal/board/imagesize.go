package board

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"

	_ "golang.org/x/image/webp" // Register WebP decoder

	"siegemap/internal/geometry"
)

// NaturalSize reads the pixel size of an encoded map image without decoding
// its pixels.
func NaturalSize(r io.Reader) (geometry.ImageSize, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return geometry.ImageSize{}, fmt.Errorf("decode image header: %w", err)
	}
	return geometry.ImageSize{Width: cfg.Width, Height: cfg.Height}, nil
}

// NaturalSizeFile is NaturalSize for a file on disk.
func NaturalSizeFile(path string) (geometry.ImageSize, error) {
	f, err := os.Open(path)
	if err != nil {
		return geometry.ImageSize{}, fmt.Errorf("open map image: %w", err)
	}
	defer f.Close()
	return NaturalSize(f)
}
