package render

import (
	"image"
	"image/color"
)

// withAlpha scales c's alpha by a pass opacity in [0, 1].
func withAlpha(c color.NRGBA, alpha float32) color.NRGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	c.A = uint8(float32(c.A)*alpha + 0.5)
	return c
}

// premultiplied returns c as premultiplied components in [0, 1].
func premultiplied(c color.Color) (r, g, b, a float32) {
	cr, cg, cb, ca := c.RGBA()
	return float32(cr) / 0xffff, float32(cg) / 0xffff, float32(cb) / 0xffff, float32(ca) / 0xffff
}

// textureImage wraps texture bytes as an image without copying.
func textureImage(t texture) *image.NRGBA {
	return &image.NRGBA{Pix: t.rgba, Stride: t.w * 4, Rect: image.Rect(0, 0, t.w, t.h)}
}
