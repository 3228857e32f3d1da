package cpu

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/mediakit/pkg/gpu"
	"golang.org/x/image/draw"
)

// Texture is a host memory backed texture. Texels are stored tightly packed.
type Texture struct {
	id       uuid.UUID
	device   *Device
	desc     gpu.TextureDescriptor
	pix      []byte
	stride   int
	released int32
}

func newTexture(d *Device, desc gpu.TextureDescriptor) *Texture {
	stride := desc.Format.RowBytes(desc.Width)
	return &Texture{
		id:     uuid.New(),
		device: d,
		desc:   desc,
		pix:    make([]byte, stride*desc.Height),
		stride: stride,
	}
}

func (t *Texture) ID() uuid.UUID           { return t.id }
func (t *Texture) Width() int              { return t.desc.Width }
func (t *Texture) Height() int             { return t.desc.Height }
func (t *Texture) Format() gpu.PixelFormat { return t.desc.Format }
func (t *Texture) Usage() gpu.Usage        { return t.desc.Usage }

func (t *Texture) String() string {
	return fmt.Sprintf("%s %dx%d %s", t.desc.Format, t.desc.Width, t.desc.Height, t.id)
}

func (t *Texture) isReleased() bool {
	return atomic.LoadInt32(&t.released) != 0
}

func (t *Texture) offset(x, y int) int {
	return y*t.stride + x*t.desc.Format.BytesPerPixel()
}

func (t *Texture) contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.desc.Width && y < t.desc.Height
}

func (t *Texture) checkRegion(r gpu.Region) error {
	if r.X < 0 || r.Y < 0 || r.Width < 0 || r.Height < 0 ||
		r.X+r.Width > t.desc.Width || r.Y+r.Height > t.desc.Height {
		return fmt.Errorf("%w: %+v in %s", gpu.ErrRegionOutOfBounds, r, t)
	}
	return nil
}

// Replace uploads src into region.
func (t *Texture) Replace(region gpu.Region, src []byte, bytesPerRow int) error {
	if t.isReleased() {
		return fmt.Errorf("texture %s: %w", t.id, gpu.ErrTextureReleased)
	}
	if err := t.checkRegion(region); err != nil {
		return err
	}

	rowBytes := t.desc.Format.RowBytes(region.Width)
	if bytesPerRow < rowBytes {
		return fmt.Errorf("bytes per row (%d) less than row length (%d)", bytesPerRow, rowBytes)
	}
	if region.Height > 0 && len(src) < (region.Height-1)*bytesPerRow+rowBytes {
		return fmt.Errorf("source length (%d) less than expected (%d)", len(src), (region.Height-1)*bytesPerRow+rowBytes)
	}

	for y := 0; y < region.Height; y++ {
		dst := t.offset(region.X, region.Y+y)
		copy(t.pix[dst:dst+rowBytes], src[y*bytesPerRow:])
	}
	return nil
}

// Bytes copies region into dst.
func (t *Texture) Bytes(dst []byte, bytesPerRow int, region gpu.Region) error {
	if t.isReleased() {
		return fmt.Errorf("%w: texture %s: %w", gpu.ErrReadbackFailed, t.id, gpu.ErrTextureReleased)
	}
	if err := t.checkRegion(region); err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrReadbackFailed, err)
	}

	rowBytes := t.desc.Format.RowBytes(region.Width)
	if bytesPerRow < rowBytes {
		return fmt.Errorf("%w: bytes per row (%d) less than row length (%d)", gpu.ErrReadbackFailed, bytesPerRow, rowBytes)
	}
	if region.Height > 0 && len(dst) < (region.Height-1)*bytesPerRow+rowBytes {
		return fmt.Errorf("%w: destination length (%d) less than expected (%d)",
			gpu.ErrReadbackFailed, len(dst), (region.Height-1)*bytesPerRow+rowBytes)
	}

	for y := 0; y < region.Height; y++ {
		src := t.offset(region.X, region.Y+y)
		copy(dst[y*bytesPerRow:y*bytesPerRow+rowBytes], t.pix[src:])
	}
	return nil
}

// Release frees the texture memory. Releasing twice is a no-op.
func (t *Texture) Release() {
	if !atomic.CompareAndSwapInt32(&t.released, 0, 1) {
		return
	}
	t.pix = nil
	t.device.textureReleased(t)
}

// Read returns the texel at (x, y) as R, G, B, A regardless of storage order.
// Missing channels read as 0, missing alpha reads as 255.
func (t *Texture) Read(x, y int) [4]uint8 {
	i := t.offset(x, y)
	switch t.desc.Format {
	case gpu.PixelFormatR8Unorm:
		return [4]uint8{t.pix[i], 0, 0, 0xFF}
	case gpu.PixelFormatRG8Unorm:
		return [4]uint8{t.pix[i], t.pix[i+1], 0, 0xFF}
	case gpu.PixelFormatBGRA8Unorm:
		return [4]uint8{t.pix[i+2], t.pix[i+1], t.pix[i], t.pix[i+3]}
	default:
		return [4]uint8{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
	}
}

// Write stores c, given as R, G, B, A, at (x, y). Channels the format does not
// have are dropped.
func (t *Texture) Write(x, y int, c [4]uint8) {
	i := t.offset(x, y)
	switch t.desc.Format {
	case gpu.PixelFormatR8Unorm:
		t.pix[i] = c[0]
	case gpu.PixelFormatRG8Unorm:
		t.pix[i], t.pix[i+1] = c[0], c[1]
	case gpu.PixelFormatBGRA8Unorm:
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[2], c[1], c[0], c[3]
	default:
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c[0], c[1], c[2], c[3]
	}
}

// copyTexel moves one texel between textures of the same format without any
// channel reordering.
func copyTexel(dst *Texture, dx, dy int, src *Texture, sx, sy int) {
	bpp := src.desc.Format.BytesPerPixel()
	d := dst.offset(dx, dy)
	s := src.offset(sx, sy)
	copy(dst.pix[d:d+bpp], src.pix[s:s+bpp])
}

// image exposes the texture memory to golang.org/x/image/draw. Four channel
// formats are presented as RGBA since resampling treats channels independently.
func (t *Texture) image() (draw.Image, error) {
	rect := image.Rect(0, 0, t.desc.Width, t.desc.Height)
	switch t.desc.Format {
	case gpu.PixelFormatRGBA8Unorm, gpu.PixelFormatBGRA8Unorm:
		return &image.RGBA{Pix: t.pix, Stride: t.stride, Rect: rect}, nil
	case gpu.PixelFormatR8Unorm:
		return &image.Gray{Pix: t.pix, Stride: t.stride, Rect: rect}, nil
	default:
		return nil, fmt.Errorf("%w: %v can't be resampled", gpu.ErrPixelFormatUnsupported, t.desc.Format)
	}
}
