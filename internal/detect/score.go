package detect

import "image"

// Score compares two pre-smoothed single-channel images of identical size and
// returns the percentage of pixels whose absolute intensity difference
// exceeds the fixed cutoff, plus the binary difference mask. Pure and
// deterministic; returns ErrShapeMismatch when the dimensions differ.
func Score(ref, cur *image.Gray) (float64, *image.Gray, error) {
	if ref == nil || cur == nil {
		return 0, nil, ErrShapeMismatch
	}
	rb, cb := ref.Bounds(), cur.Bounds()
	w, h := rb.Dx(), rb.Dy()
	if w != cb.Dx() || h != cb.Dy() {
		return 0, nil, ErrShapeMismatch
	}

	mask := image.NewGray(image.Rect(0, 0, w, h))
	changed := 0
	for y := 0; y < h; y++ {
		ro := ref.PixOffset(rb.Min.X, rb.Min.Y+y)
		co := cur.PixOffset(cb.Min.X, cb.Min.Y+y)
		mo := mask.PixOffset(0, y)
		for x := 0; x < w; x++ {
			d := int(ref.Pix[ro+x]) - int(cur.Pix[co+x])
			if d < 0 {
				d = -d
			}
			if d > diffCutoff {
				mask.Pix[mo+x] = 255
				changed++
			}
		}
	}

	total := w * h
	if total == 0 {
		return 0, mask, nil
	}
	return 100 * float64(changed) / float64(total), mask, nil
}

// absDiff returns the per-pixel absolute difference of two identically sized
// grayscale images. Used for the false-colored diagnostic map; the caller
// has already validated dimensions via Score.
func absDiff(ref, cur *image.Gray) *image.Gray {
	rb, cb := ref.Bounds(), cur.Bounds()
	w, h := rb.Dx(), rb.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		ro := ref.PixOffset(rb.Min.X, rb.Min.Y+y)
		co := cur.PixOffset(cb.Min.X, cb.Min.Y+y)
		oo := out.PixOffset(0, y)
		for x := 0; x < w; x++ {
			d := int(ref.Pix[ro+x]) - int(cur.Pix[co+x])
			if d < 0 {
				d = -d
			}
			out.Pix[oo+x] = uint8(d)
		}
	}
	return out
}
