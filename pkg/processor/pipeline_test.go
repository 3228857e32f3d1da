package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/pion/mediakit/pkg/frame"
	"github.com/pion/mediakit/pkg/gpu"
	"github.com/pion/mediakit/pkg/gpu/cpu"
	"github.com/pion/mediakit/pkg/io/video"
	"github.com/pion/mediakit/pkg/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatRGBA(t *testing.T, w, h int, c [4]byte) *frame.Buffer {
	t.Helper()
	buf, err := frame.NewBuffer(frame.FormatRGBA, w, h)
	require.NoError(t, err)
	for i := 0; i < len(buf.Planes[0].Data); i += 4 {
		copy(buf.Planes[0].Data[i:], c[:])
	}
	return buf
}

func TestResize(t *testing.T) {
	p, d := newTestProcessor(t, nil)
	ctx := context.Background()

	src := flatRGBA(t, 192, 108, [4]byte{200, 100, 50, 255})
	textures, err := p.BufferToTextures(ctx, src)
	require.NoError(t, err)
	defer releaseAll(textures)

	desc := scale.Compute(scale.ModeAspectFill, scale.Sz(192, 108), scale.Sz(64, 64), scale.AspectRatio(192, 108))
	require.InDelta(t, 64, desc.Output.Width, 1e-9)
	require.InDelta(t, 36, desc.Output.Height, 1e-9)
	require.InDelta(t, 14, desc.TranslateY, 1e-9)

	out, err := p.Resize(ctx, textures[0], desc)
	require.NoError(t, err)
	defer out.Release()
	assert.Equal(t, 64, out.Width())
	assert.Equal(t, 64, out.Height())

	info, err := p.Readback(ctx, out)
	require.NoError(t, err)
	texel := func(x, y int) []byte {
		i := y*info.BytesPerRow + x*4
		return info.Bytes[i : i+4]
	}

	// Letterbox rows stay untouched.
	assert.Equal(t, []byte{0, 0, 0, 0}, texel(0, 0))
	assert.Equal(t, []byte{0, 0, 0, 0}, texel(63, 13))
	assert.Equal(t, []byte{0, 0, 0, 0}, texel(10, 50))
	for _, y := range []int{14, 30, 49} {
		for _, x := range []int{0, 31, 63} {
			c := texel(x, y)
			assert.InDelta(t, 200, c[0], 1, "%d,%d", x, y)
			assert.InDelta(t, 100, c[1], 1, "%d,%d", x, y)
			assert.InDelta(t, 50, c[2], 1, "%d,%d", x, y)
			assert.InDelta(t, 255, c[3], 1, "%d,%d", x, y)
		}
	}
	assert.Equal(t, 0, d.Compilations(cpu.KernelFlip))
}

func TestResizeFailure(t *testing.T) {
	p, d := newTestProcessor(t, []cpu.Option{cpu.WithMaxTextureSize(32)})
	ctx := context.Background()

	textures, err := p.BufferToTextures(ctx, flatRGBA(t, 16, 16, [4]byte{1, 2, 3, 4}))
	require.NoError(t, err)
	defer releaseAll(textures)

	desc := scale.Compute(scale.ModeAspectFitHorizontal, scale.Sz(16, 16), scale.Sz(64, 64), 1)
	_, err = p.Resize(ctx, textures[0], desc)
	assert.ErrorIs(t, err, gpu.ErrTextureCreationFailed)
	assert.Equal(t, 1, d.LiveTextures())

	chroma, err := d.NewTexture(gpu.TextureDescriptor{Format: gpu.PixelFormatRG8Unorm, Width: 2, Height: 2})
	require.NoError(t, err)
	defer chroma.Release()
	_, err = p.Resize(ctx, chroma, desc)
	assert.ErrorIs(t, err, gpu.ErrPixelFormatUnsupported)
}

func TestProcess(t *testing.T) {
	p, d := newTestProcessor(t, nil)
	src := flatYUV(t, frame.FormatNV12, 192, 108, 100, 110, 150)

	info, err := p.Process(context.Background(), src, Request{
		Mode:    scale.ModeAspectFill,
		Desired: scale.Sz(64, 64),
	})
	require.NoError(t, err)

	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 64, info.Height)
	assert.Equal(t, 64*4, info.BytesPerRow)
	assert.Equal(t, AlphaPremultipliedLast, info.AlphaInfo)
	assert.InDelta(t, 1.0/3, info.ScaleX, 1e-9)
	assert.InDelta(t, 1.0/3, info.ScaleY, 1e-9)

	i := 32*info.BytesPerRow + 32*4
	assert.InDelta(t, 255, info.Bytes[i+3], 1)
	assert.Equal(t, 0, d.LiveTextures())
}

func TestProcessMirror(t *testing.T) {
	p, _ := newTestProcessor(t, nil)
	src := patternBuffer(t, frame.FormatRGBA, 4, 2)

	info, err := p.Process(context.Background(), src, Request{FlipHorizontal: true, FlipVertical: true})
	require.NoError(t, err)

	data := src.Planes[0].Data
	assert.Equal(t, data[len(data)-4:], info.Bytes[:4])
	assert.Equal(t, data[:4], info.Bytes[len(info.Bytes)-4:])
	assert.Equal(t, 1.0, info.ScaleX)
}

func TestProcessToBuffer(t *testing.T) {
	t.Run("Passthrough", func(t *testing.T) {
		p, _ := newTestProcessor(t, nil)
		src := patternBuffer(t, frame.FormatRGBA, 9, 5)

		out, err := p.ProcessToBuffer(context.Background(), src, Request{}, frame.FormatRGBA)
		require.NoError(t, err)
		assert.Equal(t, src, out)
	})

	t.Run("Swizzle", func(t *testing.T) {
		p, d := newTestProcessor(t, nil)
		src := flatRGBA(t, 3, 3, [4]byte{1, 2, 3, 255})

		out, err := p.ProcessToBuffer(context.Background(), src, Request{}, frame.FormatBGRA)
		require.NoError(t, err)
		assert.Equal(t, frame.FormatBGRA, out.Format)
		assert.Equal(t, []byte{3, 2, 1, 255}, out.Planes[0].Data[:4])
		assert.Equal(t, 0, d.LiveTextures())
	})

	t.Run("YUV", func(t *testing.T) {
		p, d := newTestProcessor(t, nil)
		src := flatYUV(t, frame.FormatNV12, 12, 8, 100, 110, 150)
		src.Range = frame.ColorRangeFull

		out, err := p.ProcessToBuffer(context.Background(), src, Request{}, frame.FormatI420)
		require.NoError(t, err)
		require.NoError(t, out.Validate())
		assert.Equal(t, frame.FormatI420, out.Format)
		assert.Equal(t, frame.ColorRangeFull, out.Range)

		for _, v := range out.Planes[0].Data {
			assert.InDelta(t, 100, v, 2)
		}
		for _, v := range out.Planes[1].Data {
			assert.InDelta(t, 110, v, 2)
		}
		for _, v := range out.Planes[2].Data {
			assert.InDelta(t, 150, v, 2)
		}
		assert.Equal(t, 0, d.LiveTextures())
	})

	t.Run("Unsupported", func(t *testing.T) {
		p, d := newTestProcessor(t, nil)
		_, err := p.ProcessToBuffer(context.Background(), patternBuffer(t, frame.FormatRGBA, 2, 2), Request{}, "YUY2")
		assert.ErrorIs(t, err, frame.ErrPixelFormatUnsupported)
		assert.Equal(t, 0, d.TexturesCreated())
	})
}

func TestTransform(t *testing.T) {
	p, _ := newTestProcessor(t, nil)

	src := flatYUV(t, frame.FormatNV12, 16, 8, 100, 110, 150)
	var released bool
	errEOF := errors.New("eof")
	frames := 1

	r := video.Merge(Transform(context.Background(), p, Request{
		Mode:    scale.ModeAspectFitHorizontal,
		Desired: scale.Sz(8, 8),
	}))(video.ReaderFunc(func() (*frame.Buffer, func(), error) {
		if frames == 0 {
			return nil, func() {}, errEOF
		}
		frames--
		return src, func() { released = true }, nil
	}))

	out, release, err := r.Read()
	require.NoError(t, err)
	release()
	assert.True(t, released)
	assert.Equal(t, frame.FormatNV12, out.Format)
	assert.Equal(t, 8, out.Width)
	assert.Equal(t, 8, out.Height)

	_, _, err = r.Read()
	assert.ErrorIs(t, err, errEOF)
}

func TestTransformCancelled(t *testing.T) {
	p, d := newTestProcessor(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := patternBuffer(t, frame.FormatRGBA, 4, 4)
	var released bool
	r := Transform(ctx, p, Request{})(video.ReaderFunc(func() (*frame.Buffer, func(), error) {
		return src, func() { released = true }, nil
	}))

	out, release, err := r.Read()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, out)
	release()
	assert.True(t, released)
	assert.Equal(t, 0, d.TexturesCreated())
}

func TestRequestDescriptor(t *testing.T) {
	req := Request{Mode: scale.ModeAspectFill, Desired: scale.Sz(640, 640)}
	desc := req.Descriptor(1920, 1080)
	assert.InDelta(t, 640, desc.Output.Width, 1e-9)
	assert.InDelta(t, 360, desc.Output.Height, 1e-9)

	req.AspectRatio = 2
	desc = req.Descriptor(1920, 1080)
	assert.Equal(t, scale.Sz(640, 320), desc.Output)

	req.Bounds = scale.Sz(640, 320)
	desc = req.Descriptor(1920, 1080)
	assert.Equal(t, scale.Sz(640, 320), desc.Bounds)
	assert.InDelta(t, 0, desc.TranslateY, 1e-9)
}
