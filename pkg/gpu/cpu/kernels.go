package cpu

import (
	"image"
)

// Bound constant of the conversion kernels selecting full range BT.601.
const argFullRange = 0

// Bound constants of the flip kernel.
const (
	argFlipHorizontal = 0
	argFlipVertical   = 1
)

// chromaAt maps a luma position to its 4:2:0 chroma sample. Odd sized frames
// have no sample for the last luma column or row, so the last one is reused.
func chromaAt(t *Texture, gid image.Point) [4]uint8 {
	x, y := gid.X/2, gid.Y/2
	if x >= t.Width() {
		x = t.Width() - 1
	}
	if y >= t.Height() {
		y = t.Height() - 1
	}
	return t.Read(x, y)
}

// ycbcrToRGBKernel: 0 luma (r8), 1 interleaved chroma (rg8), 2 destination.
func ycbcrToRGBKernel(args *Arguments, gid image.Point) {
	dst := args.Texture(2)
	if !dst.contains(gid.X, gid.Y) {
		return
	}

	luma := args.Texture(0).Read(gid.X, gid.Y)
	chroma := chromaAt(args.Texture(1), gid)
	r, g, b := ycbcrToRGB(luma[0], chroma[0], chroma[1], args.Flag(argFullRange))
	dst.Write(gid.X, gid.Y, [4]uint8{r, g, b, 0xFF})
}

// i420ToRGBKernel: 0 luma, 1 Cb, 2 Cr (all r8), 3 destination.
func i420ToRGBKernel(args *Arguments, gid image.Point) {
	dst := args.Texture(3)
	if !dst.contains(gid.X, gid.Y) {
		return
	}

	luma := args.Texture(0).Read(gid.X, gid.Y)
	cb := chromaAt(args.Texture(1), gid)
	cr := chromaAt(args.Texture(2), gid)
	r, g, b := ycbcrToRGB(luma[0], cb[0], cr[0], args.Flag(argFullRange))
	dst.Write(gid.X, gid.Y, [4]uint8{r, g, b, 0xFF})
}

// subsample averages the chroma of the 2x2 block starting at gid, clipped to the
// source.
func subsample(src *Texture, gid image.Point, fullRange bool) (cb, cr uint8) {
	var sumCb, sumCr, n int
	for y := gid.Y; y < gid.Y+2 && y < src.Height(); y++ {
		for x := gid.X; x < gid.X+2 && x < src.Width(); x++ {
			c := src.Read(x, y)
			_, b, r := rgbToYCbCr(c[0], c[1], c[2], fullRange)
			sumCb += int(b)
			sumCr += int(r)
			n++
		}
	}
	return uint8((sumCb + n/2) / n), uint8((sumCr + n/2) / n)
}

// chromaSite reports whether gid is the top left texel of a 2x2 block whose
// chroma sample lies inside t.
func chromaSite(t *Texture, gid image.Point) bool {
	return gid.X%2 == 0 && gid.Y%2 == 0 && t.contains(gid.X/2, gid.Y/2)
}

// rgbToYUVKernel: 0 source, 1 luma (r8), 2 interleaved chroma (rg8).
func rgbToYUVKernel(args *Arguments, gid image.Point) {
	src, luma, chroma := args.Texture(0), args.Texture(1), args.Texture(2)
	if !src.contains(gid.X, gid.Y) {
		return
	}
	full := args.Flag(argFullRange)

	if luma.contains(gid.X, gid.Y) {
		c := src.Read(gid.X, gid.Y)
		y, _, _ := rgbToYCbCr(c[0], c[1], c[2], full)
		luma.Write(gid.X, gid.Y, [4]uint8{y})
	}

	if chromaSite(chroma, gid) {
		cb, cr := subsample(src, gid, full)
		chroma.Write(gid.X/2, gid.Y/2, [4]uint8{cb, cr})
	}
}

// rgbToI420Kernel: 0 source, 1 luma, 2 Cb, 3 Cr (all r8).
func rgbToI420Kernel(args *Arguments, gid image.Point) {
	src, luma, cbPlane, crPlane := args.Texture(0), args.Texture(1), args.Texture(2), args.Texture(3)
	if !src.contains(gid.X, gid.Y) {
		return
	}
	full := args.Flag(argFullRange)

	if luma.contains(gid.X, gid.Y) {
		c := src.Read(gid.X, gid.Y)
		y, _, _ := rgbToYCbCr(c[0], c[1], c[2], full)
		luma.Write(gid.X, gid.Y, [4]uint8{y})
	}

	if chromaSite(cbPlane, gid) && crPlane.contains(gid.X/2, gid.Y/2) {
		cb, cr := subsample(src, gid, full)
		cbPlane.Write(gid.X/2, gid.Y/2, [4]uint8{cb})
		crPlane.Write(gid.X/2, gid.Y/2, [4]uint8{cr})
	}
}

// flipKernel: 0 source, 1 destination.
func flipKernel(args *Arguments, gid image.Point) {
	src, dst := args.Texture(0), args.Texture(1)
	if !dst.contains(gid.X, gid.Y) {
		return
	}

	x, y := gid.X, gid.Y
	if args.Flag(argFlipHorizontal) {
		x = src.Width() - 1 - gid.X
	}
	if args.Flag(argFlipVertical) {
		y = src.Height() - 1 - gid.Y
	}
	if !src.contains(x, y) {
		return
	}

	if src.Format() == dst.Format() {
		copyTexel(dst, gid.X, gid.Y, src, x, y)
		return
	}
	dst.Write(gid.X, gid.Y, src.Read(x, y))
}
