package processor

import (
	"context"
	"fmt"

	"github.com/pion/mediakit/pkg/frame"
	"github.com/pion/mediakit/pkg/gpu"
)

// Direction is a color space conversion.
type Direction int

const (
	// YUVBiplanarToRGBA converts luma (r8) and interleaved chroma (rg8) textures
	// into one rgba8 texture.
	YUVBiplanarToRGBA Direction = iota
	// I420ToRGBA converts luma, Cb and Cr r8 textures into one rgba8 texture.
	I420ToRGBA
	// RGBAToYUVBiplanar converts an rgba8 or bgra8 texture into luma and
	// interleaved chroma textures.
	RGBAToYUVBiplanar
	// RGBAToI420 converts an rgba8 or bgra8 texture into luma, Cb and Cr textures.
	RGBAToI420
)

func (d Direction) String() string {
	switch d {
	case YUVBiplanarToRGBA:
		return "yuvBiplanarToRGBA"
	case I420ToRGBA:
		return "i420ToRGBA"
	case RGBAToYUVBiplanar:
		return "rgbaToYUVBiplanar"
	case RGBAToI420:
		return "rgbaToI420"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

type conversion struct {
	kernel string
	// inputs lists the accepted formats of every input texture.
	inputs [][]gpu.PixelFormat
	// outputs lists the output formats; all but the first are chroma planes.
	outputs []gpu.PixelFormat
}

var (
	lumaIn  = []gpu.PixelFormat{gpu.PixelFormatR8Unorm}
	cbcrIn  = []gpu.PixelFormat{gpu.PixelFormatRG8Unorm}
	colorIn = []gpu.PixelFormat{gpu.PixelFormatRGBA8Unorm, gpu.PixelFormatBGRA8Unorm}
)

var conversions = map[Direction]conversion{
	YUVBiplanarToRGBA: {
		kernel:  kernelYCbCrToRGB,
		inputs:  [][]gpu.PixelFormat{lumaIn, cbcrIn},
		outputs: []gpu.PixelFormat{gpu.PixelFormatRGBA8Unorm},
	},
	I420ToRGBA: {
		kernel:  kernelI420ToRGB,
		inputs:  [][]gpu.PixelFormat{lumaIn, lumaIn, lumaIn},
		outputs: []gpu.PixelFormat{gpu.PixelFormatRGBA8Unorm},
	},
	RGBAToYUVBiplanar: {
		kernel:  kernelRGBToYUV,
		inputs:  [][]gpu.PixelFormat{colorIn},
		outputs: []gpu.PixelFormat{gpu.PixelFormatR8Unorm, gpu.PixelFormatRG8Unorm},
	},
	RGBAToI420: {
		kernel:  kernelRGBToI420,
		inputs:  [][]gpu.PixelFormat{colorIn},
		outputs: []gpu.PixelFormat{gpu.PixelFormatR8Unorm, gpu.PixelFormatR8Unorm, gpu.PixelFormatR8Unorm},
	},
}

// directionFrom returns the conversion turning a buffer of format f into rgba.
func directionFrom(f frame.Format) (Direction, bool) {
	switch f {
	case frame.FormatNV12:
		return YUVBiplanarToRGBA, true
	case frame.FormatI420:
		return I420ToRGBA, true
	default:
		return 0, false
	}
}

// directionTo returns the conversion turning rgba into a buffer of format f.
func directionTo(f frame.Format) (Direction, bool) {
	switch f {
	case frame.FormatNV12:
		return RGBAToYUVBiplanar, true
	case frame.FormatI420:
		return RGBAToI420, true
	default:
		return 0, false
	}
}

// Convert runs a BT.601 color space conversion over src. The YUV side of the
// conversion is quantized with rng. The caller owns both src and the returned
// textures.
func (p *Processor) Convert(ctx context.Context, src []gpu.Texture, dir Direction, rng frame.ColorRange) ([]gpu.Texture, error) {
	var out []gpu.Texture
	err := p.submit(ctx, func() (err error) {
		out, err = p.convert(src, dir, rng)
		return err
	})
	return out, err
}

func (p *Processor) convert(src []gpu.Texture, dir Direction, rng frame.ColorRange) ([]gpu.Texture, error) {
	conv, ok := conversions[dir]
	if !ok {
		return nil, fmt.Errorf("unknown conversion %v", dir)
	}
	if len(src) != len(conv.inputs) {
		return nil, fmt.Errorf("%w: %s takes %d texture(s), got %d", ErrPlaneCountMismatch, dir, len(conv.inputs), len(src))
	}
	for i, t := range src {
		if !acceptsFormat(conv.inputs[i], t.Format()) {
			return nil, fmt.Errorf("%w: %s input %d can't be %s", gpu.ErrPixelFormatUnsupported, dir, i, t.Format())
		}
	}

	// Luma, or the packed color texture, sets the grid.
	width, height := src[0].Width(), src[0].Height()

	out := make([]gpu.Texture, 0, len(conv.outputs))
	for i, format := range conv.outputs {
		w, h := width, height
		if i > 0 {
			w, h = width/2, height/2
		}
		t, err := p.newTexture(format, w, h)
		if err != nil {
			releaseAll(out)
			return nil, err
		}
		out = append(out, t)
	}

	textures := append(append([]gpu.Texture{}, src...), out...)
	constants := map[int][]byte{0: boolConstant(rng == frame.ColorRangeFull)}
	if err := p.dispatch(conv.kernel, gpu.Size{Width: width, Height: height}, textures, constants); err != nil {
		releaseAll(out)
		return nil, err
	}
	return out, nil
}

func acceptsFormat(accepted []gpu.PixelFormat, f gpu.PixelFormat) bool {
	for _, a := range accepted {
		if a == f {
			return true
		}
	}
	return false
}
