// Package overlay draws detection annotations onto display frames: ROI
// outlines, text labels, banners, and the false-color diff map. All helpers
// mutate only the destination image they are given; sources are never touched.
package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotation colors, shared by the detector visualization and the feeds.
var (
	Green  = color.RGBA{0, 255, 0, 255}
	Red    = color.RGBA{255, 0, 0, 255}
	Yellow = color.RGBA{255, 255, 0, 255}
	White  = color.RGBA{255, 255, 255, 255}
	Black  = color.RGBA{0, 0, 0, 255}
)

// Clone copies a frame into a fresh zero-origin RGBA image for annotation.
func Clone(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Rect draws a rectangle outline with the given stroke thickness. The
// rectangle is clipped to the image bounds.
func Rect(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	top := image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness)
	bottom := image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y)
	left := image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y)
	right := image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y)
	for _, edge := range []image.Rectangle{top, bottom, left, right} {
		FillRect(img, edge, c)
	}
}

// FillRect fills a rectangle, clipped to the image bounds.
func FillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(img, r.Intersect(img.Bounds()), &image.Uniform{c}, image.Point{}, draw.Src)
}

// Label renders text at the given baseline position.
func Label(img *image.RGBA, text string, x, y int, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// Banner darkens a region of the image toward black by the given opacity in
// [0,1], producing the semi-transparent background used for playback
// overlays.
func Banner(img *image.RGBA, r image.Rectangle, opacity float64) {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	keep := 1 - opacity
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		off := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Pix[off+0] = uint8(float64(img.Pix[off+0]) * keep)
			img.Pix[off+1] = uint8(float64(img.Pix[off+1]) * keep)
			img.Pix[off+2] = uint8(float64(img.Pix[off+2]) * keep)
			off += 4
		}
	}
}

// Colormap renders a grayscale difference image with a jet-style false-color
// palette for diagnostic display: low differences map to blue, high
// differences to red.
func Colormap(gray *image.Gray) *image.RGBA {
	b := gray.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		go_ := gray.PixOffset(b.Min.X, b.Min.Y+y)
		oo := out.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			c := jet(gray.Pix[go_+x])
			out.Pix[oo+0] = c.R
			out.Pix[oo+1] = c.G
			out.Pix[oo+2] = c.B
			out.Pix[oo+3] = 255
			oo += 4
		}
	}
	return out
}

func jet(v uint8) color.RGBA {
	t := float64(v) / 255
	return color.RGBA{
		R: jetChannel(t - 0.75),
		G: jetChannel(t - 0.5),
		B: jetChannel(t - 0.25),
		A: 255,
	}
}

// jetChannel maps a centered offset to one channel of the jet palette.
func jetChannel(d float64) uint8 {
	if d < 0 {
		d = -d
	}
	v := 1.5 - 4*d
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return uint8(v * 255)
}
