package cpu

import (
	"strings"
	"testing"

	"github.com/pion/mediakit/pkg/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T, opts ...Option) *Device {
	t.Helper()
	d, err := NewDevice(opts...)
	require.NoError(t, err)
	return d
}

func newFilledTexture(t *testing.T, d *Device, format gpu.PixelFormat, w, h int, texel ...byte) *Texture {
	t.Helper()
	tex, err := d.newTexture(gpu.TextureDescriptor{Format: format, Width: w, Height: h, Usage: gpu.UsageShaderReadWrite})
	require.NoError(t, err)
	for i := 0; i < len(tex.pix); i += len(texel) {
		copy(tex.pix[i:], texel)
	}
	return tex
}

type binding struct {
	textures []gpu.Texture
	bytes    map[int][]byte
}

func runKernel(t *testing.T, d *Device, name string, grid, groupSize gpu.Size, b binding) error {
	t.Helper()

	lib, err := d.DefaultLibrary()
	require.NoError(t, err)
	fn, err := lib.Function(name)
	require.NoError(t, err)
	pipeline, err := d.NewComputePipeline(fn)
	require.NoError(t, err)

	queue, err := d.NewCommandQueue()
	require.NoError(t, err)
	cb, err := queue.CommandBuffer()
	require.NoError(t, err)
	enc, err := cb.ComputeEncoder()
	require.NoError(t, err)

	enc.SetPipeline(pipeline)
	for i, tex := range b.textures {
		enc.SetTexture(tex, i)
	}
	for i, v := range b.bytes {
		enc.SetBytes(v, i)
	}
	enc.Dispatch(gpu.ThreadgroupsFor(grid, groupSize), groupSize)
	enc.EndEncoding()
	cb.Commit()
	return cb.WaitUntilCompleted()
}

func TestNewTexture(t *testing.T) {
	d := newTestDevice(t, WithMaxTextureSize(64))

	cases := map[string]struct {
		desc gpu.TextureDescriptor
		err  error
	}{
		"RGBA":          {desc: gpu.TextureDescriptor{Format: gpu.PixelFormatRGBA8Unorm, Width: 4, Height: 2}},
		"R8":            {desc: gpu.TextureDescriptor{Format: gpu.PixelFormatR8Unorm, Width: 1, Height: 1}},
		"InvalidFormat": {desc: gpu.TextureDescriptor{Width: 4, Height: 2}, err: gpu.ErrPixelFormatUnsupported},
		"ZeroWidth":     {desc: gpu.TextureDescriptor{Format: gpu.PixelFormatRGBA8Unorm, Height: 2}, err: gpu.ErrTextureCreationFailed},
		"TooLarge":      {desc: gpu.TextureDescriptor{Format: gpu.PixelFormatRGBA8Unorm, Width: 65, Height: 2}, err: gpu.ErrTextureCreationFailed},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			tex, err := d.NewTexture(c.desc)
			if c.err != nil {
				assert.ErrorIs(t, err, c.err)
				return
			}
			require.NoError(t, err)
			defer tex.Release()
			assert.Equal(t, c.desc.Width, tex.Width())
			assert.Equal(t, c.desc.Height, tex.Height())
			assert.Equal(t, c.desc.Format, tex.Format())
		})
	}
}

func TestTextureReplaceBytes(t *testing.T) {
	d := newTestDevice(t)
	tex, err := d.NewTexture(gpu.TextureDescriptor{Format: gpu.PixelFormatRG8Unorm, Width: 3, Height: 2})
	require.NoError(t, err)

	// Padded rows: 6 bytes of texels, 2 of padding.
	src := []byte{
		1, 2, 3, 4, 5, 6, 0xEE, 0xEE,
		7, 8, 9, 10, 11, 12, 0xEE, 0xEE,
	}
	require.NoError(t, tex.Replace(gpu.RegionOf(tex), src, 8))

	dst := make([]byte, 12)
	require.NoError(t, tex.Bytes(dst, 6, gpu.RegionOf(tex)))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, dst)

	sub := make([]byte, 2)
	require.NoError(t, tex.Bytes(sub, 2, gpu.Region{X: 2, Y: 1, Width: 1, Height: 1}))
	assert.Equal(t, []byte{11, 12}, sub)

	assert.ErrorIs(t, tex.Bytes(dst, 6, gpu.Region{X: 1, Width: 3, Height: 1}), gpu.ErrRegionOutOfBounds)
	assert.Error(t, tex.Replace(gpu.RegionOf(tex), src[:10], 8))

	tex.Release()
	tex.Release()
	assert.Equal(t, 0, d.LiveTextures())
	assert.ErrorIs(t, tex.Bytes(dst, 6, gpu.RegionOf(tex)), gpu.ErrTextureReleased)
}

func TestTextureReadWriteOrder(t *testing.T) {
	d := newTestDevice(t)
	bgra := newFilledTexture(t, d, gpu.PixelFormatBGRA8Unorm, 1, 1, 3, 2, 1, 4)
	assert.Equal(t, [4]uint8{1, 2, 3, 4}, bgra.Read(0, 0))

	bgra.Write(0, 0, [4]uint8{10, 20, 30, 40})
	assert.Equal(t, []byte{30, 20, 10, 40}, bgra.pix)

	r8 := newFilledTexture(t, d, gpu.PixelFormatR8Unorm, 1, 1, 9)
	assert.Equal(t, [4]uint8{9, 0, 0, 255}, r8.Read(0, 0))
}

func TestTextureCacheFlush(t *testing.T) {
	d := newTestDevice(t)
	cache, err := d.NewTextureCache()
	require.NoError(t, err)

	plane := gpu.HostPlane{Data: []byte{1, 2, 3, 4}, Width: 2, Height: 2, BytesPerRow: 2}
	a, err := cache.Texture(plane, gpu.PixelFormatR8Unorm)
	require.NoError(t, err)
	_, err = cache.Texture(plane, gpu.PixelFormatR8Unorm)
	require.NoError(t, err)
	assert.Equal(t, 2, d.LiveTextures())

	a.Release()
	cache.Flush()
	assert.Equal(t, 0, d.LiveTextures())

	_, err = cache.Texture(gpu.HostPlane{Data: plane.Data, Width: 4, Height: 1, BytesPerRow: 2}, gpu.PixelFormatR8Unorm)
	assert.ErrorIs(t, err, gpu.ErrTextureCreationFailed)
}

func TestLiveTextureTracking(t *testing.T) {
	d := newTestDevice(t)
	a := newFilledTexture(t, d, gpu.PixelFormatR8Unorm, 2, 2, 0)
	b := newFilledTexture(t, d, gpu.PixelFormatRGBA8Unorm, 1, 1, 0, 0, 0, 0)
	assert.NotEqual(t, a.ID(), b.ID())

	got, ok := d.LiveTexture(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	report := d.LeakReport()
	require.Len(t, report, 2)
	assert.Contains(t, strings.Join(report, "\n"), a.ID().String())
	assert.Contains(t, strings.Join(report, "\n"), b.ID().String())

	a.Release()
	_, ok = d.LiveTexture(a.ID())
	assert.False(t, ok)
	assert.Equal(t, []string{b.String()}, d.LeakReport())

	// Errors name the texture they are about.
	err := a.Replace(gpu.RegionOf(a), []byte{1, 2, 3, 4}, 2)
	assert.ErrorIs(t, err, gpu.ErrTextureReleased)
	assert.Contains(t, err.Error(), a.ID().String())
	err = b.Bytes(make([]byte, 4), 4, gpu.Region{Width: 2, Height: 1})
	assert.ErrorIs(t, err, gpu.ErrRegionOutOfBounds)
	assert.Contains(t, err.Error(), b.ID().String())

	b.Release()
	assert.Empty(t, d.LeakReport())
}

func TestTextureCacheTracksByID(t *testing.T) {
	d := newTestDevice(t)
	cache, err := d.NewTextureCache()
	require.NoError(t, err)
	tc := cache.(*textureCache)

	plane := gpu.HostPlane{Data: []byte{1, 2, 3, 4}, Width: 2, Height: 2, BytesPerRow: 2}
	a, err := cache.Texture(plane, gpu.PixelFormatR8Unorm)
	require.NoError(t, err)
	assert.Contains(t, tc.textures, a.ID())

	a.Release()
	b, err := cache.Texture(plane, gpu.PixelFormatR8Unorm)
	require.NoError(t, err)
	// Released textures are dropped on the next upload.
	assert.NotContains(t, tc.textures, a.ID())
	assert.Contains(t, tc.textures, b.ID())
	assert.Len(t, tc.textures, 1)

	cache.Flush()
	assert.Empty(t, tc.textures)
	assert.Equal(t, 0, d.LiveTextures())
}

func TestCompilePipeline(t *testing.T) {
	lib := DefaultLibrary()
	lib.Register("broken", nil, 0, 0)
	d := newTestDevice(t, WithLibrary(lib))

	l, err := d.DefaultLibrary()
	require.NoError(t, err)
	assert.Contains(t, l.FunctionNames(), KernelFlip)

	_, err = l.Function("missing")
	assert.ErrorIs(t, err, gpu.ErrShaderFunctionNotFound)

	fn, err := l.Function("broken")
	require.NoError(t, err)
	_, err = d.NewComputePipeline(fn)
	assert.ErrorIs(t, err, gpu.ErrKernelCompilationFailed)

	fn, err = l.Function(KernelFlip)
	require.NoError(t, err)
	p, err := d.NewComputePipeline(fn)
	require.NoError(t, err)
	assert.Equal(t, KernelFlip, p.Name())
	assert.Equal(t, 1, d.Compilations(KernelFlip))
	assert.Equal(t, 1, d.Compilations("broken"))
}
