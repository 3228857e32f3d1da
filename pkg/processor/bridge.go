package processor

import (
	"context"
	"fmt"

	"github.com/pion/mediakit/pkg/frame"
	"github.com/pion/mediakit/pkg/gpu"
)

// textureFormat maps a plane of a frame format to the texture format holding it.
func textureFormat(f frame.Format, plane int) (gpu.PixelFormat, error) {
	bpp, err := f.BytesPerPixel(plane)
	if err != nil {
		return gpu.PixelFormatInvalid, err
	}

	switch {
	case f == frame.FormatRGBA:
		return gpu.PixelFormatRGBA8Unorm, nil
	case f == frame.FormatBGRA:
		return gpu.PixelFormatBGRA8Unorm, nil
	case bpp == 1:
		return gpu.PixelFormatR8Unorm, nil
	case bpp == 2:
		return gpu.PixelFormatRG8Unorm, nil
	default:
		return gpu.PixelFormatInvalid, &frame.UnsupportedFormatError{Format: f}
	}
}

// BufferToTextures uploads every plane of buf into its own texture. The caller
// owns the returned textures.
func (p *Processor) BufferToTextures(ctx context.Context, buf *frame.Buffer) ([]gpu.Texture, error) {
	var textures []gpu.Texture
	err := p.submit(ctx, func() (err error) {
		textures, err = p.bufferToTextures(buf)
		return err
	})
	return textures, err
}

// TextureForPlane uploads a single plane of buf. An index beyond the plane count
// of the format fails with frame.ErrPlaneIndexInvalid before anything is
// allocated.
func (p *Processor) TextureForPlane(ctx context.Context, buf *frame.Buffer, plane int) (gpu.Texture, error) {
	var texture gpu.Texture
	err := p.submit(ctx, func() (err error) {
		texture, err = p.textureForPlane(buf, plane)
		return err
	})
	return texture, err
}

// TexturesToBuffer reads textures back into a new tightly packed buffer of the
// given format, one texture per plane.
func (p *Processor) TexturesToBuffer(ctx context.Context, textures []gpu.Texture, format frame.Format) (*frame.Buffer, error) {
	var buf *frame.Buffer
	err := p.submit(ctx, func() (err error) {
		buf, err = p.texturesToBuffer(textures, format)
		return err
	})
	return buf, err
}

func (p *Processor) bufferToTextures(buf *frame.Buffer) ([]gpu.Texture, error) {
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	textures := make([]gpu.Texture, 0, len(buf.Planes))
	for i := range buf.Planes {
		t, err := p.textureForPlane(buf, i)
		if err != nil {
			releaseAll(textures)
			return nil, err
		}
		textures = append(textures, t)
	}
	return textures, nil
}

func (p *Processor) textureForPlane(buf *frame.Buffer, i int) (gpu.Texture, error) {
	plane, err := buf.Plane(i)
	if err != nil {
		return nil, err
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}
	format, err := textureFormat(buf.Format, i)
	if err != nil {
		return nil, err
	}

	t, err := p.cache.Texture(gpu.HostPlane{
		Data:        plane.Data,
		Width:       plane.Width,
		Height:      plane.Height,
		BytesPerRow: plane.Stride,
	}, format)
	if err != nil {
		return nil, fmt.Errorf("%w: plane %d: %w", gpu.ErrTextureCreationFailed, i, err)
	}
	return t, nil
}

func (p *Processor) texturesToBuffer(textures []gpu.Texture, format frame.Format) (*frame.Buffer, error) {
	if !format.Supported() {
		return nil, &frame.UnsupportedFormatError{Format: format}
	}
	if len(textures) != format.PlaneCount() {
		return nil, fmt.Errorf("%w: %s has %d plane(s), got %d texture(s)",
			ErrPlaneCountMismatch, format, format.PlaneCount(), len(textures))
	}

	width, height := textures[0].Width(), textures[0].Height()
	for i, t := range textures {
		expected, err := textureFormat(format, i)
		if err != nil {
			return nil, err
		}
		if t.Format() != expected {
			return nil, fmt.Errorf("%w: plane %d of %s needs %s, got %s",
				gpu.ErrPixelFormatUnsupported, i, format, expected, t.Format())
		}
		pw, ph, _ := format.PlaneSize(i, width, height)
		if t.Width() != pw || t.Height() != ph {
			return nil, fmt.Errorf("%w: plane %d is %dx%d, expected %dx%d",
				frame.ErrInvalidDimensions, i, t.Width(), t.Height(), pw, ph)
		}
	}

	buf, err := frame.NewBuffer(format, width, height)
	if err != nil {
		return nil, err
	}
	for i, t := range textures {
		plane := &buf.Planes[i]
		if err := t.Bytes(plane.Data, plane.Stride, gpu.RegionOf(t)); err != nil {
			return nil, fmt.Errorf("%w: plane %d: %w", gpu.ErrReadbackFailed, i, err)
		}
	}
	return buf, nil
}
