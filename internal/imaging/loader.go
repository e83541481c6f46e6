package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"path/filepath"
	"strings"
)

// Load reads image(s) from a source identifier into a fresh sequence.
//
// When probe is true only the header is decoded: the returned Image has
// Width, Height and Format populated but Pix stays nil, and no pixel
// data is materialized. This is the metadata-only entry point selected
// by the ping setting.
//
// A single file yields a one-element sequence. Multi-frame sources are
// not decoded frame-by-frame; the first frame is returned (the stdlib
// decoders register only single-frame decode here).
func Load(source string, probe bool) ([]*Image, error) {
	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if probe {
		cfg, format, err := image.DecodeConfig(f)
		if err != nil {
			return nil, fmt.Errorf("failed to probe image: %w", err)
		}
		im := NewImage(nil)
		im.Width = cfg.Width
		im.Height = cfg.Height
		im.Format = format
		im.Source = source
		return []*Image{im}, nil
	}

	pix, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	im := NewImage(pix)
	im.Format = format
	im.Source = source
	return []*Image{im}, nil
}

// formatForPath maps a destination path to an encoder name by extension.
func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	}
	return ""
}
