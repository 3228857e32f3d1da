package frame

import (
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Image returns an image.Image view of b. RGBA and full range I420 buffers share
// memory with the returned image. Other buffers are converted into a new image;
// video range YUV is expanded to full range since image.YCbCr is JFIF.
func (b *Buffer) Image() (image.Image, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	rect := image.Rect(0, 0, b.Width, b.Height)
	switch b.Format {
	case FormatRGBA:
		p := &b.Planes[0]
		return &image.RGBA{Pix: p.Data, Stride: p.Stride, Rect: rect}, nil

	case FormatBGRA:
		p := &b.Planes[0]
		dst := image.NewRGBA(rect)
		for y := 0; y < p.Height; y++ {
			src := p.Row(y)
			row := dst.Pix[y*dst.Stride:]
			for i := 0; i < len(src); i += 4 {
				row[i+0] = src[i+2]
				row[i+1] = src[i+1]
				row[i+2] = src[i+0]
				row[i+3] = src[i+3]
			}
		}
		return dst, nil

	case FormatI420:
		if b.Width%2 != 0 || b.Height%2 != 0 || b.Range != ColorRangeFull {
			return b.toYCbCr(rect), nil
		}
		return &image.YCbCr{
			Y:              b.Planes[0].Data,
			Cb:             b.Planes[1].Data,
			Cr:             b.Planes[2].Data,
			YStride:        b.Planes[0].Stride,
			CStride:        b.Planes[1].Stride,
			SubsampleRatio: image.YCbCrSubsampleRatio420,
			Rect:           rect,
		}, nil

	case FormatNV12:
		return b.toYCbCr(rect), nil
	}

	return nil, &UnsupportedFormatError{Format: b.Format}
}

// Lookup tables expanding BT.601 video range samples to full range.
var (
	videoLuma   = expansionTable(16, 219, 0)
	videoChroma = expansionTable(128, 224, 128)
)

func expansionTable(offset, span, center float64) *[256]uint8 {
	var table [256]uint8
	for v := range table {
		e := math.Round((float64(v)-offset)*255/span + center)
		table[v] = uint8(math.Max(0, math.Min(255, e)))
	}
	return &table
}

// toYCbCr copies a YUV buffer into a freshly allocated 4:2:0 image. The standard
// library rounds chroma planes up, so edge samples are replicated for odd sizes.
func (b *Buffer) toYCbCr(rect image.Rectangle) *image.YCbCr {
	dst := image.NewYCbCr(rect, image.YCbCrSubsampleRatio420)
	luma := &b.Planes[0]
	for y := 0; y < luma.Height; y++ {
		row := dst.Y[y*dst.YStride:]
		copy(row, luma.Row(y))
		if b.Range == ColorRangeVideo {
			for x := 0; x < luma.Width; x++ {
				row[x] = videoLuma[row[x]]
			}
		}
	}

	cw := (b.Width + 1) / 2
	ch := (b.Height + 1) / 2
	chroma := &b.Planes[1]
	for y := 0; y < ch; y++ {
		sy := clampIndex(y, chroma.Height)
		for x := 0; x < cw; x++ {
			sx := clampIndex(x, chroma.Width)
			var cb, cr uint8
			if b.Format == FormatNV12 {
				i := sy*chroma.Stride + 2*sx
				cb, cr = chroma.Data[i], chroma.Data[i+1]
			} else {
				cb = chroma.Data[sy*chroma.Stride+sx]
				cr = b.Planes[2].Data[sy*b.Planes[2].Stride+sx]
			}
			if b.Range == ColorRangeVideo {
				cb, cr = videoChroma[cb], videoChroma[cr]
			}
			dst.Cb[y*dst.CStride+x] = cb
			dst.Cr[y*dst.CStride+x] = cr
		}
	}
	return dst
}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	return i
}

// FromImage wraps img into a Buffer. *image.RGBA and even sized 4:2:0
// *image.YCbCr share memory with the result, any other image is drawn into a new
// RGBA buffer.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}

	switch src := img.(type) {
	case *image.RGBA:
		if bounds.Min == (image.Point{}) {
			return &Buffer{
				Format: FormatRGBA,
				Width:  w,
				Height: h,
				Planes: []Plane{{Data: src.Pix, Width: w, Height: h, Stride: src.Stride, BitDepth: 32}},
			}, nil
		}
	case *image.YCbCr:
		if src.SubsampleRatio == image.YCbCrSubsampleRatio420 &&
			bounds.Min == (image.Point{}) && w%2 == 0 && h%2 == 0 {
			return &Buffer{
				Format: FormatI420,
				Range:  ColorRangeFull,
				Width:  w,
				Height: h,
				Planes: []Plane{
					{Data: src.Y, Width: w, Height: h, Stride: src.YStride, BitDepth: 8},
					{Data: src.Cb, Width: w / 2, Height: h / 2, Stride: src.CStride, BitDepth: 8},
					{Data: src.Cr, Width: w / 2, Height: h / 2, Stride: src.CStride, BitDepth: 8},
				},
			}, nil
		}
	}

	buf, err := NewBuffer(FormatRGBA, w, h)
	if err != nil {
		return nil, err
	}
	dst := &image.RGBA{Pix: buf.Planes[0].Data, Stride: buf.Planes[0].Stride, Rect: image.Rect(0, 0, w, h)}
	draw.Draw(dst, dst.Rect, img, bounds.Min, draw.Src)
	return buf, nil
}
