package cpu

// BT.601 integer conversions. Video range maps luma to [16, 235] and chroma to
// [16, 240]; full range uses the whole byte for both.

func clamp8(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 0xFF:
		return 0xFF
	default:
		return uint8(v)
	}
}

// ycbcrToRGB converts one BT.601 sample to RGB.
func ycbcrToRGB(y, cb, cr uint8, fullRange bool) (r, g, b uint8) {
	d := int(cb) - 128
	e := int(cr) - 128

	if fullRange {
		c := 256 * int(y)
		return clamp8((c + 359*e + 128) >> 8),
			clamp8((c - 88*d - 183*e + 128) >> 8),
			clamp8((c + 454*d + 128) >> 8)
	}

	c := 298 * (int(y) - 16)
	return clamp8((c + 409*e + 128) >> 8),
		clamp8((c - 100*d - 208*e + 128) >> 8),
		clamp8((c + 516*d + 128) >> 8)
}

// rgbToYCbCr is the inverse of ycbcrToRGB.
func rgbToYCbCr(r, g, b uint8, fullRange bool) (y, cb, cr uint8) {
	ri, gi, bi := int(r), int(g), int(b)

	if fullRange {
		return clamp8((77*ri + 150*gi + 29*bi + 128) >> 8),
			clamp8(((-43*ri - 85*gi + 128*bi + 128) >> 8) + 128),
			clamp8(((128*ri - 107*gi - 21*bi + 128) >> 8) + 128)
	}

	return clamp8(((66*ri + 129*gi + 25*bi + 128) >> 8) + 16),
		clamp8(((-38*ri - 74*gi + 112*bi + 128) >> 8) + 128),
		clamp8(((112*ri - 94*gi - 18*bi + 128) >> 8) + 128)
}
