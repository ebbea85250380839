package render

import "image"

// ToImage converts img into a standard image for previews.
// Float32 pixels are clamped from [0,1] to gray.
func (img *Image) ToImage() image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)

	switch img.Kind {
	case RGB8:
		out := image.NewRGBA(rect)
		for i, j := 0, 0; i < len(img.Pix); i, j = i+3, j+4 {
			out.Pix[j], out.Pix[j+1], out.Pix[j+2], out.Pix[j+3] = img.Pix[i], img.Pix[i+1], img.Pix[i+2], 0xff
		}
		return out

	case Float32:
		out := image.NewGray(rect)
		for i, v := range img.Float {
			out.Pix[i] = toByte(float64(v) * 255)
		}
		return out

	default:
		out := image.NewGray(rect)
		copy(out.Pix, img.Pix)
		return out
	}
}
