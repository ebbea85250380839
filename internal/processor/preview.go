package processor

import (
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
)

// writePreview stores a down-scaled lossy WebP quick-look of img.
func writePreview(path string, img image.Image, size int) error {
	src := img
	bounds := img.Bounds()

	if size > 0 && bounds.Dx() > size {
		height := size * bounds.Dy() / bounds.Dx()
		if height < 1 {
			height = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, size, height))
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		src = dst
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := webp.Encode(f, src, &webp.Options{Lossless: false, Quality: 85}); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
