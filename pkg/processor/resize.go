package processor

import (
	"context"
	"fmt"
	"math"

	"github.com/pion/mediakit/pkg/gpu"
	"github.com/pion/mediakit/pkg/scale"
)

// Resize resamples src into a new texture the size of desc.Bounds (desc.Output
// when Bounds is empty). The scaled source is placed with desc's translation,
// destination pixels it doesn't cover are left zeroed.
func (p *Processor) Resize(ctx context.Context, src gpu.Texture, desc scale.Descriptor) (gpu.Texture, error) {
	var out gpu.Texture
	err := p.submit(ctx, func() (err error) {
		out, err = p.resize(src, desc)
		return err
	})
	return out, err
}

func (p *Processor) resize(src gpu.Texture, desc scale.Descriptor) (gpu.Texture, error) {
	if src.Format() == gpu.PixelFormatRG8Unorm {
		return nil, fmt.Errorf("%w: can't resample %s", gpu.ErrPixelFormatUnsupported, src.Format())
	}

	bounds := desc.Bounds
	if bounds.Width <= 0 || bounds.Height <= 0 {
		bounds = desc.Output
	}
	width, height := int(math.Round(bounds.Width)), int(math.Round(bounds.Height))

	dst, err := p.newTexture(src.Format(), width, height)
	if err != nil {
		return nil, err
	}

	if width == src.Width() && height == src.Height() &&
		desc.ScaleX == 1 && desc.ScaleY == 1 && desc.TranslateX == 0 && desc.TranslateY == 0 {
		err = p.copyTexture(src, dst, false, false)
	} else {
		err = p.encodeScale(src, dst, desc)
	}
	if err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

func (p *Processor) encodeScale(src, dst gpu.Texture, desc scale.Descriptor) error {
	cb, err := p.queue.CommandBuffer()
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrCommandQueueSetup, err)
	}
	if err := p.scaler.Encode(cb, src, dst, gpu.ScaleTransform{
		ScaleX:     desc.ScaleX,
		ScaleY:     desc.ScaleY,
		TranslateX: desc.TranslateX,
		TranslateY: desc.TranslateY,
	}); err != nil {
		return err
	}

	p.log.Debugf("scale %s %dx%d -> %dx%d (%.3f, %.3f)",
		desc.Mode, src.Width(), src.Height(), dst.Width(), dst.Height(), desc.ScaleX, desc.ScaleY)
	cb.Commit()
	if err := cb.WaitUntilCompleted(); err != nil {
		p.log.Errorf("scale failed: %v", err)
		return err
	}
	return nil
}
