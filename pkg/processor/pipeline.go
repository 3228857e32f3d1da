package processor

import (
	"context"
	"fmt"

	"github.com/pion/mediakit/pkg/frame"
	"github.com/pion/mediakit/pkg/gpu"
	"github.com/pion/mediakit/pkg/scale"
)

// Request describes what Process does to a frame.
type Request struct {
	Mode    scale.Mode
	Desired scale.Size
	// AspectRatio overrides the aspect ratio of the source when non zero.
	AspectRatio float64
	// Bounds overrides the destination box when non empty.
	Bounds scale.Size

	FlipHorizontal bool
	FlipVertical   bool
}

// Descriptor computes the scale geometry of req for a width x height source.
func (req Request) Descriptor(width, height int) scale.Descriptor {
	ar := req.AspectRatio
	if ar == 0 {
		ar = scale.AspectRatio(float64(width), float64(height))
	}

	desc := scale.Compute(req.Mode, scale.Sz(width, height), req.Desired, ar)
	if req.Bounds.Width > 0 && req.Bounds.Height > 0 {
		desc = desc.WithBounds(req.Bounds)
	}
	return desc
}

// Process uploads buf, converts it to RGBA, scales it per req, mirrors it when
// asked and reads the result back. No texture outlives the call.
func (p *Processor) Process(ctx context.Context, buf *frame.Buffer, req Request) (*TextureInfo, error) {
	var info *TextureInfo
	err := p.submit(ctx, func() error {
		out, desc, err := p.render(buf, req)
		if err != nil {
			return err
		}
		defer out.Release()

		info, err = p.readback(out)
		if err != nil {
			return err
		}
		info.ScaleX, info.ScaleY = desc.ScaleX, desc.ScaleY
		return nil
	})
	return info, err
}

// ProcessToBuffer works like Process but hands the result back as a buffer of
// the given format. YUV output uses the color range of buf.
func (p *Processor) ProcessToBuffer(ctx context.Context, buf *frame.Buffer, req Request, format frame.Format) (*frame.Buffer, error) {
	var out *frame.Buffer
	err := p.submit(ctx, func() error {
		if !format.Supported() {
			return &frame.UnsupportedFormatError{Format: format}
		}

		rendered, _, err := p.render(buf, req)
		if err != nil {
			return err
		}
		defer rendered.Release()

		out, err = p.encodeBuffer(rendered, format, buf.Range)
		return err
	})
	return out, err
}

// render turns buf into a scaled and mirrored color texture owned by the caller.
func (p *Processor) render(buf *frame.Buffer, req Request) (gpu.Texture, scale.Descriptor, error) {
	var desc scale.Descriptor

	planes, err := p.bufferToTextures(buf)
	if err != nil {
		return nil, desc, err
	}
	defer releaseAll(planes)

	color := planes[0]
	if dir, ok := directionFrom(buf.Format); ok {
		rgba, err := p.convert(planes, dir, buf.Range)
		if err != nil {
			return nil, desc, err
		}
		defer releaseAll(rgba)
		color = rgba[0]
	}

	desc = req.Descriptor(buf.Width, buf.Height)
	scaled, err := p.resize(color, desc)
	if err != nil {
		return nil, desc, err
	}
	if !req.FlipHorizontal && !req.FlipVertical {
		return scaled, desc, nil
	}

	defer scaled.Release()
	flipped, err := p.flip(scaled, req.FlipHorizontal, req.FlipVertical)
	if err != nil {
		return nil, desc, err
	}
	return flipped, desc, nil
}

// encodeBuffer reads a color texture back as a buffer of format.
func (p *Processor) encodeBuffer(color gpu.Texture, format frame.Format, rng frame.ColorRange) (*frame.Buffer, error) {
	if dir, ok := directionTo(format); ok {
		planes, err := p.convert([]gpu.Texture{color}, dir, rng)
		if err != nil {
			return nil, err
		}
		defer releaseAll(planes)

		buf, err := p.texturesToBuffer(planes, format)
		if err != nil {
			return nil, err
		}
		buf.Range = rng
		return buf, nil
	}

	target, err := textureFormat(format, 0)
	if err != nil {
		return nil, err
	}
	if color.Format() == target {
		return p.texturesToBuffer([]gpu.Texture{color}, format)
	}

	converted, err := p.copyAs(color, target, false, false)
	if err != nil {
		return nil, fmt.Errorf("%s to %s: %w", color.Format(), target, err)
	}
	defer converted.Release()
	return p.texturesToBuffer([]gpu.Texture{converted}, format)
}
