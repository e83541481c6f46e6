package imaging

import (
	"fmt"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
)

// Write encodes a sequence to a destination path. The encoder is chosen
// by the destination extension, falling back to each image's recorded
// format and finally to PNG. Multi-image sequences are written as
// numbered siblings (out.png, out-1.png, ...), matching the adjoin-off
// behavior of the original pipeline.
//
// Probe-only images (no pixel data) cannot be written.
func Write(seq []*Image, dest string, quality int) error {
	if len(seq) == 0 {
		return fmt.Errorf("no images to write")
	}
	for i, im := range seq {
		path := dest
		if i > 0 {
			path = numberedPath(dest, i)
		}
		if err := writeOne(im, path, quality); err != nil {
			return err
		}
	}
	return nil
}

func writeOne(im *Image, path string, quality int) error {
	if !im.HasPixels() {
		return fmt.Errorf("image %q has no pixel data to write", im.Source)
	}

	format := formatForPath(path)
	if format == "" {
		format = im.Format
	}
	if format == "" {
		format = "png"
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	switch format {
	case "png":
		err = png.Encode(f, im.Pix)
	case "jpeg":
		if quality <= 0 || quality > 100 {
			quality = jpeg.DefaultQuality
		}
		err = jpeg.Encode(f, im.Pix, &jpeg.Options{Quality: quality})
	case "gif":
		err = gif.Encode(f, im.Pix, nil)
	default:
		err = fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}

// numberedPath inserts a sequence number before the extension:
// "out.png" -> "out-1.png".
func numberedPath(path string, n int) string {
	ext := ""
	base := path
	if i := lastDot(path); i >= 0 {
		base, ext = path[:i], path[i:]
	}
	return fmt.Sprintf("%s-%d%s", base, n, ext)
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case '.':
			return i
		case '/':
			return -1
		}
	}
	return -1
}
