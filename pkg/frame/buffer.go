package frame

import (
	"fmt"
	"math"
)

// Plane is a single host-addressable image plane.
type Plane struct {
	Data []byte
	// Width and Height are in pixels of this plane. For chroma planes of 4:2:0
	// formats they are half of the luma size, rounded toward zero.
	Width, Height int
	// Stride is the number of bytes between the start of two consecutive rows.
	Stride int
	// BitDepth is the number of bits used by one pixel of this plane.
	BitDepth int
}

// Row returns the visible bytes of row y.
func (p *Plane) Row(y int) []byte {
	start := y * p.Stride
	return p.Data[start : start+p.Width*p.BitDepth/8]
}

// requiredSize is the smallest Data length able to hold every visible row. It
// reports false when that length overflows an int.
func (p *Plane) requiredSize() (int, bool) {
	if p.Height == 0 {
		return 0, true
	}
	rowBytes, ok := planeBytes(p.Width, 1, p.BitDepth/8)
	if !ok {
		return 0, false
	}
	padded, ok := planeBytes(p.Stride, p.Height-1, 1)
	if !ok || padded > math.MaxInt-rowBytes {
		return 0, false
	}
	return padded + rowBytes, true
}

// Buffer is a locked, CPU addressable, possibly multi-planar image. A Buffer is
// borrowed by the processing calls that receive it and is never retained past them.
type Buffer struct {
	Format Format
	// Range only matters for YUV formats.
	Range         ColorRange
	Width, Height int
	Planes        []Plane
}

// NewBuffer allocates a tightly packed buffer of the given format and size.
func NewBuffer(format Format, width, height int) (*Buffer, error) {
	if !format.Supported() {
		return nil, &UnsupportedFormatError{Format: format}
	}
	if _, err := format.FrameSize(width, height); err != nil {
		return nil, err
	}

	buf := &Buffer{
		Format: format,
		Width:  width,
		Height: height,
		Planes: make([]Plane, format.PlaneCount()),
	}
	for i := range buf.Planes {
		pw, ph, _ := format.PlaneSize(i, width, height)
		bpp, _ := format.BytesPerPixel(i)
		buf.Planes[i] = Plane{
			Data:     make([]byte, pw*bpp*ph),
			Width:    pw,
			Height:   ph,
			Stride:   pw * bpp,
			BitDepth: bpp * 8,
		}
	}
	return buf, nil
}

// Plane returns plane i, failing with ErrPlaneIndexInvalid when the format has
// fewer planes.
func (b *Buffer) Plane(i int) (*Plane, error) {
	if !b.Format.Supported() {
		return nil, &UnsupportedFormatError{Format: b.Format}
	}
	if i < 0 || i >= b.Format.PlaneCount() || i >= len(b.Planes) {
		return nil, &PlaneIndexError{Format: b.Format, Index: i, Count: b.Format.PlaneCount()}
	}
	return &b.Planes[i], nil
}

// Validate checks that the planes are consistent with the format and that every
// plane holds enough bytes for its own metadata.
func (b *Buffer) Validate() error {
	if !b.Format.Supported() {
		return &UnsupportedFormatError{Format: b.Format}
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	if len(b.Planes) != b.Format.PlaneCount() {
		return fmt.Errorf("%w: %s expects %d plane(s), got %d",
			ErrPlaneIndexInvalid, b.Format, b.Format.PlaneCount(), len(b.Planes))
	}

	for i := range b.Planes {
		p := &b.Planes[i]
		bpp, _ := b.Format.BytesPerPixel(i)
		if p.BitDepth != bpp*8 {
			return fmt.Errorf("%w: plane %d of %s has bit depth %d, expected %d",
				ErrPixelFormatUnsupported, i, b.Format, p.BitDepth, bpp*8)
		}
		if p.Width <= 0 || p.Height <= 0 {
			return fmt.Errorf("%w: plane %d is %dx%d", ErrInvalidDimensions, i, p.Width, p.Height)
		}
		required, ok := p.requiredSize()
		if !ok {
			return fmt.Errorf("%w: plane %d of %dx%d with stride %d overflows",
				ErrInvalidDimensions, i, p.Width, p.Height, p.Stride)
		}
		if p.Stride < p.Width*bpp {
			return fmt.Errorf("%w: plane %d stride %d shorter than row (%d)",
				ErrInvalidDimensions, i, p.Stride, p.Width*bpp)
		}
		if len(p.Data) < required {
			return &InsufficientBufferError{Plane: i, RequiredSize: required, ActualSize: len(p.Data)}
		}
	}
	return nil
}

// Clone returns a tightly packed deep copy of b.
func (b *Buffer) Clone() *Buffer {
	dst := &Buffer{
		Format: b.Format,
		Range:  b.Range,
		Width:  b.Width,
		Height: b.Height,
		Planes: make([]Plane, len(b.Planes)),
	}
	for i := range b.Planes {
		src := &b.Planes[i]
		rowBytes := src.Width * src.BitDepth / 8
		p := Plane{
			Data:     make([]byte, rowBytes*src.Height),
			Width:    src.Width,
			Height:   src.Height,
			Stride:   rowBytes,
			BitDepth: src.BitDepth,
		}
		for y := 0; y < src.Height; y++ {
			copy(p.Data[y*rowBytes:], src.Row(y))
		}
		dst.Planes[i] = p
	}
	return dst
}
