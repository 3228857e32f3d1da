package frame

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	cases := map[string]struct {
		format        Format
		width, height int
		planes        []Plane
	}{
		"I420": {
			format: FormatI420, width: 4, height: 2,
			planes: []Plane{
				{Width: 4, Height: 2, Stride: 4, BitDepth: 8},
				{Width: 2, Height: 1, Stride: 2, BitDepth: 8},
				{Width: 2, Height: 1, Stride: 2, BitDepth: 8},
			},
		},
		"NV12": {
			format: FormatNV12, width: 4, height: 2,
			planes: []Plane{
				{Width: 4, Height: 2, Stride: 4, BitDepth: 8},
				{Width: 2, Height: 1, Stride: 4, BitDepth: 16},
			},
		},
		"NV12Odd": {
			format: FormatNV12, width: 5, height: 3,
			planes: []Plane{
				{Width: 5, Height: 3, Stride: 5, BitDepth: 8},
				{Width: 2, Height: 1, Stride: 4, BitDepth: 16},
			},
		},
		"BGRA": {
			format: FormatBGRA, width: 2, height: 2,
			planes: []Plane{{Width: 2, Height: 2, Stride: 8, BitDepth: 32}},
		},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			size := int(FrameSizeMap[c.format](c.width, c.height))
			raw := make([]byte, size)
			for i := range raw {
				raw[i] = byte(i)
			}

			decoder, err := NewDecoder(c.format)
			require.NoError(t, err)
			buf, err := decoder.Decode(raw, c.width, c.height)
			require.NoError(t, err)
			require.NoError(t, buf.Validate())

			assert.Equal(t, c.format, buf.Format)
			require.Len(t, buf.Planes, len(c.planes))
			offset := 0
			for i, expected := range c.planes {
				got := buf.Planes[i]
				assert.Equal(t, expected.Width, got.Width, "plane %d", i)
				assert.Equal(t, expected.Height, got.Height, "plane %d", i)
				assert.Equal(t, expected.Stride, got.Stride, "plane %d", i)
				assert.Equal(t, expected.BitDepth, got.BitDepth, "plane %d", i)
				assert.Equal(t, byte(offset), got.Data[0], "plane %d", i)
				offset += len(got.Data)
			}
			assert.Equal(t, size, offset)

			_, err = decoder.Decode(raw[:size-1], c.width, c.height)
			assert.ErrorIs(t, err, ErrBufferTooSmall)
			_, err = decoder.Decode(raw, 0, c.height)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestDecodeOverflow(t *testing.T) {
	cases := map[string]struct {
		format        Format
		width, height int
	}{
		"I420":       {format: FormatI420, width: 1 << 32, height: 1 << 32},
		"NV12":       {format: FormatNV12, width: 1 << 32, height: 1 << 32},
		"RGBA":       {format: FormatRGBA, width: 1 << 32, height: 1 << 32},
		"BGRAWide":   {format: FormatBGRA, width: math.MaxInt / 2, height: 1},
		"I420Chroma": {format: FormatI420, width: math.MaxInt / 5 * 2, height: 2},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			decoder, err := NewDecoder(c.format)
			require.NoError(t, err)

			buf, err := decoder.Decode(make([]byte, 16), c.width, c.height)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
			assert.Nil(t, buf)
			assert.Zero(t, FrameSizeMap[c.format](c.width, c.height))
		})
	}
}

func TestNewDecoderUnsupported(t *testing.T) {
	_, err := NewDecoder("YUY2")
	assert.ErrorIs(t, err, ErrPixelFormatUnsupported)

	var formatErr *UnsupportedFormatError
	assert.ErrorAs(t, err, &formatErr)
	assert.Equal(t, Format("YUY2"), formatErr.Format)
}

func BenchmarkDecodeNV12(b *testing.B) {
	sizes := []struct {
		width, height int
	}{
		{640, 480},
		{1920, 1080},
	}
	decoder, err := NewDecoder(FormatNV12)
	if err != nil {
		b.Fatal(err)
	}
	for _, sz := range sizes {
		sz := sz
		b.Run(fmt.Sprintf("%dx%d", sz.width, sz.height), func(b *testing.B) {
			input := make([]byte, FrameSizeMap[FormatNV12](sz.width, sz.height))
			for i := 0; i < b.N; i++ {
				_, err := decoder.Decode(input, sz.width, sz.height)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
