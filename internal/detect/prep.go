package detect

import (
	"image"
	"image/draw"

	"github.com/disintegration/gift"
)

// cropGrayBlur crops the ROI out of a frame, converts it to grayscale and
// applies the fixed Gaussian blur. This is the shared preprocessing step for
// calibration and classification.
func cropGrayBlur(frame image.Image, roi image.Rectangle) (*image.Gray, error) {
	r := roi.Intersect(frame.Bounds())
	if r.Empty() {
		return nil, ErrBadROI
	}
	g := gift.New(
		gift.Crop(r),
		gift.Grayscale(),
		gift.GaussianBlur(blurSigma),
	)
	dst := image.NewGray(g.Bounds(frame.Bounds()))
	g.Draw(dst, frame)
	return dst, nil
}

// cropRGBA copies the ROI out of a frame into a zero-origin RGBA image,
// leaving the source frame untouched.
func cropRGBA(frame image.Image, roi image.Rectangle) *image.RGBA {
	r := roi.Intersect(frame.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(out, out.Bounds(), frame, r.Min, draw.Src)
	return out
}
