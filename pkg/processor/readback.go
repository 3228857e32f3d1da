package processor

import (
	"context"
	"fmt"
	"image"

	"github.com/pion/mediakit/pkg/gpu"
)

// AlphaInfo tells where alpha is stored in a TextureInfo pixel and how color
// relates to it.
type AlphaInfo int

const (
	// AlphaNone means pixels have no alpha channel.
	AlphaNone AlphaInfo = iota
	// AlphaPremultipliedLast means alpha is the last byte of a pixel.
	AlphaPremultipliedLast
	// AlphaNoneSkipFirst means the first component of a 32 bit pixel is unused.
	// Combined with ByteOrder32Little it describes B, G, R, X bytes in memory.
	AlphaNoneSkipFirst
)

// ByteOrder is the component order of multi byte pixels.
type ByteOrder int

const (
	// ByteOrderDefault stores components in their nominal order.
	ByteOrderDefault ByteOrder = iota
	// ByteOrder32Little stores 32 bit pixels little endian.
	ByteOrder32Little
)

// TextureInfo is texture content copied to host memory, with everything needed
// to interpret it without further GPU access.
type TextureInfo struct {
	Bytes       []byte
	BytesPerRow int
	AlphaInfo   AlphaInfo
	ByteOrder   ByteOrder
	Width       int
	Height      int
	Format      gpu.PixelFormat

	// ScaleX and ScaleY are the factors applied by the pipeline that produced
	// the texture, 1 when it wasn't scaled.
	ScaleX, ScaleY float64
}

// Image wraps the bytes into an image.Image. RGBA content is shared, BGRA is
// swizzled into a new RGBA image, single channel content becomes a Gray image.
func (i *TextureInfo) Image() (image.Image, error) {
	rect := image.Rect(0, 0, i.Width, i.Height)
	switch i.Format {
	case gpu.PixelFormatRGBA8Unorm:
		return &image.RGBA{Pix: i.Bytes, Stride: i.BytesPerRow, Rect: rect}, nil

	case gpu.PixelFormatBGRA8Unorm:
		img := image.NewRGBA(rect)
		for y := 0; y < i.Height; y++ {
			src := i.Bytes[y*i.BytesPerRow : y*i.BytesPerRow+i.Width*4]
			dst := img.Pix[y*img.Stride:]
			for x := 0; x < len(src); x += 4 {
				dst[x+0] = src[x+2]
				dst[x+1] = src[x+1]
				dst[x+2] = src[x+0]
				dst[x+3] = src[x+3]
			}
		}
		return img, nil

	case gpu.PixelFormatR8Unorm:
		return &image.Gray{Pix: i.Bytes, Stride: i.BytesPerRow, Rect: rect}, nil

	default:
		return nil, fmt.Errorf("%w: no image layout for %s", ErrDataProvider, i.Format)
	}
}

func layoutOf(f gpu.PixelFormat) (AlphaInfo, ByteOrder) {
	switch f {
	case gpu.PixelFormatRGBA8Unorm:
		return AlphaPremultipliedLast, ByteOrderDefault
	case gpu.PixelFormatBGRA8Unorm:
		return AlphaNoneSkipFirst, ByteOrder32Little
	default:
		return AlphaNone, ByteOrderDefault
	}
}

// Readback copies tex into host memory. Work previously submitted through the
// processor has completed by the time Readback runs.
func (p *Processor) Readback(ctx context.Context, tex gpu.Texture) (*TextureInfo, error) {
	var info *TextureInfo
	err := p.submit(ctx, func() (err error) {
		info, err = p.readback(tex)
		return err
	})
	return info, err
}

func (p *Processor) readback(tex gpu.Texture) (*TextureInfo, error) {
	bpp := tex.Format().BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: %w: %s", ErrDataProvider, gpu.ErrPixelFormatUnsupported, tex.Format())
	}
	bytesPerRow := tex.Width() * bpp
	if tex.Width() <= 0 || tex.Height() <= 0 {
		return nil, fmt.Errorf("%w: empty texture", ErrDataProvider)
	}

	data := make([]byte, bytesPerRow*tex.Height())
	if err := tex.Bytes(data, bytesPerRow, gpu.RegionOf(tex)); err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrReadbackFailed, err)
	}

	alpha, order := layoutOf(tex.Format())
	return &TextureInfo{
		Bytes:       data,
		BytesPerRow: bytesPerRow,
		AlphaInfo:   alpha,
		ByteOrder:   order,
		Width:       tex.Width(),
		Height:      tex.Height(),
		Format:      tex.Format(),
		ScaleX:      1,
		ScaleY:      1,
	}, nil
}
