package frame

import (
	"fmt"
	"math"
)

// FrameSizeMap returns a function to get the number of bytes a tightly packed frame
// will occupy in the given format. Sizes that don't fit in an int are reported as 0.
var FrameSizeMap = map[Format]frameSizeFunc{
	FormatI420: frameSizeOf(FormatI420),
	FormatNV12: frameSizeOf(FormatNV12),
	FormatRGBA: frameSizeOf(FormatRGBA),
	FormatBGRA: frameSizeOf(FormatBGRA),
}

type frameSizeFunc func(width, height int) uint

func frameSizeOf(f Format) frameSizeFunc {
	return func(width, height int) uint {
		size, err := f.FrameSize(width, height)
		if err != nil {
			return 0
		}
		return uint(size)
	}
}

// FrameSize returns the number of bytes a tightly packed width x height frame of
// format f occupies. It fails with ErrInvalidDimensions when the size overflows.
func (f Format) FrameSize(width, height int) (int, error) {
	if !f.Supported() {
		return 0, &UnsupportedFormatError{Format: f}
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	var total int
	for i := 0; i < f.PlaneCount(); i++ {
		pw, ph, _ := f.PlaneSize(i, width, height)
		bpp, _ := f.BytesPerPixel(i)
		size, ok := planeBytes(pw, ph, bpp)
		if !ok || total > math.MaxInt-size {
			return 0, fmt.Errorf("%w: %dx%d %s overflows", ErrInvalidDimensions, width, height, f)
		}
		total += size
	}
	return total, nil
}

// planeBytes returns width*height*bpp, false when the product overflows.
func planeBytes(width, height, bpp int) (int, bool) {
	if width == 0 || height == 0 || bpp <= 0 {
		return 0, true
	}
	if width > math.MaxInt/bpp || width*bpp > math.MaxInt/height {
		return 0, false
	}
	return width * bpp * height, true
}
