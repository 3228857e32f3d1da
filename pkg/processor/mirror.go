package processor

import (
	"context"

	"github.com/pion/mediakit/pkg/gpu"
)

// Flip returns a mirrored copy of src. Flipping is a pure reordering of texels,
// src is left untouched and the caller owns both textures.
func (p *Processor) Flip(ctx context.Context, src gpu.Texture, horizontal, vertical bool) (gpu.Texture, error) {
	var out gpu.Texture
	err := p.submit(ctx, func() (err error) {
		out, err = p.flip(src, horizontal, vertical)
		return err
	})
	return out, err
}

func (p *Processor) flip(src gpu.Texture, horizontal, vertical bool) (gpu.Texture, error) {
	return p.copyAs(src, src.Format(), horizontal, vertical)
}

// copyAs copies src into a new texture of format, mirroring it on request.
func (p *Processor) copyAs(src gpu.Texture, format gpu.PixelFormat, horizontal, vertical bool) (gpu.Texture, error) {
	dst, err := p.newTexture(format, src.Width(), src.Height())
	if err != nil {
		return nil, err
	}
	if err := p.copyTexture(src, dst, horizontal, vertical); err != nil {
		dst.Release()
		return nil, err
	}
	return dst, nil
}

func (p *Processor) copyTexture(src, dst gpu.Texture, horizontal, vertical bool) error {
	return p.dispatch(kernelFlip, gpu.Size{Width: dst.Width(), Height: dst.Height()},
		[]gpu.Texture{src, dst},
		map[int][]byte{0: boolConstant(horizontal), 1: boolConstant(vertical)})
}
