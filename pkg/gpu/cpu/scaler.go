package cpu

import (
	"fmt"
	"math"

	"github.com/pion/mediakit/pkg/gpu"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// lanczos3 is the windowed sinc filter with three lobes.
var lanczos3 = &draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		if t < 0 {
			t = -t
		}
		if t < 1e-9 {
			return 1
		}
		if t >= 3 {
			return 0
		}
		x := math.Pi * t
		return 3 * math.Sin(x) * math.Sin(x/3) / (x * x)
	},
}

func transformerFor(filter gpu.Filter) (draw.Transformer, error) {
	switch filter {
	case gpu.FilterLanczos:
		return lanczos3, nil
	case gpu.FilterCatmullRom:
		return draw.CatmullRom, nil
	case gpu.FilterBilinear:
		return draw.BiLinear, nil
	case gpu.FilterNearest:
		return draw.NearestNeighbor, nil
	default:
		return nil, fmt.Errorf("unknown filter %v", filter)
	}
}

type imageScaler struct {
	device      *Device
	filter      gpu.Filter
	transformer draw.Transformer
}

// Encode records a resample of src into dst. Destination texels outside the
// transformed source rectangle are left untouched.
func (s *imageScaler) Encode(cb gpu.CommandBuffer, src, dst gpu.Texture, transform gpu.ScaleTransform) error {
	buffer, ok := cb.(*commandBuffer)
	if !ok {
		return fmt.Errorf("%w: command buffer was not created by a cpu device", gpu.ErrEncoderSetup)
	}
	srcTex, ok := src.(*Texture)
	if !ok {
		return fmt.Errorf("%w: source was not created by a cpu device", gpu.ErrEncoderSetup)
	}
	dstTex, ok := dst.(*Texture)
	if !ok {
		return fmt.Errorf("%w: destination was not created by a cpu device", gpu.ErrEncoderSetup)
	}
	if srcTex.Format() != dstTex.Format() {
		return fmt.Errorf("%w: source %v and destination %v differ", gpu.ErrPixelFormatUnsupported, srcTex.Format(), dstTex.Format())
	}
	if err := checkUsage(srcTex, gpu.UsageShaderRead); err != nil {
		return fmt.Errorf("%w: source: %w", gpu.ErrEncoderSetup, err)
	}
	if err := checkUsage(dstTex, gpu.UsageShaderWrite); err != nil {
		return fmt.Errorf("%w: destination: %w", gpu.ErrEncoderSetup, err)
	}
	if transform.ScaleX <= 0 || transform.ScaleY <= 0 ||
		math.IsInf(transform.ScaleX, 0) || math.IsInf(transform.ScaleY, 0) {
		return fmt.Errorf("%w: invalid scale %gx%g", gpu.ErrEncoderSetup, transform.ScaleX, transform.ScaleY)
	}

	m := f64.Aff3{
		transform.ScaleX, 0, transform.TranslateX,
		0, transform.ScaleY, transform.TranslateY,
	}
	err := buffer.record(func() error {
		for _, t := range []*Texture{srcTex, dstTex} {
			if t.isReleased() {
				return fmt.Errorf("texture %s: %w", t.id, gpu.ErrTextureReleased)
			}
		}
		srcImg, err := srcTex.image()
		if err != nil {
			return err
		}
		dstImg, err := dstTex.image()
		if err != nil {
			return err
		}

		s.transformer.Transform(dstImg, m, srcImg, srcImg.Bounds(), draw.Src, nil)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, err)
	}

	logger.Tracef("encoded %s scale %s -> %s", s.filter, srcTex, dstTex)
	return nil
}
