package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAspectRatio(t *testing.T) {
	cases := map[string]struct {
		w, h     float64
		expected float64
	}{
		"Landscape": {w: 1920, h: 1080, expected: 1920.0 / 1080.0},
		"Portrait":  {w: 1080, h: 1920, expected: 1920.0 / 1080.0},
		"Square":    {w: 640, h: 640, expected: 1},
		"Zero":      {w: 0, h: 480, expected: 0},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, c.expected, AspectRatio(c.w, c.h), 1e-9)
		})
	}
}

func TestComputeAspectFill(t *testing.T) {
	d := Compute(ModeAspectFill, Sz(1920, 1080), Sz(640, 640), 2.0)

	assert.Equal(t, Sz(640, 320), d.Output)
	assert.InDelta(t, 0.333, d.ScaleX, 0.001)
	assert.InDelta(t, 0.296, d.ScaleY, 0.001)
	assert.Equal(t, Sz(640, 640), d.Bounds)
	assert.InDelta(t, 0, d.TranslateX, 1e-9)
	assert.InDelta(t, 160, d.TranslateY, 1e-9)
}

func TestComputeAspectFillPortrait(t *testing.T) {
	d := Compute(ModeAspectFill, Sz(1080, 1920), Sz(640, 640), 2.0)

	assert.Equal(t, Sz(320, 640), d.Output)
	assert.InDelta(t, 320.0/1080.0, d.ScaleX, 1e-9)
	assert.InDelta(t, 640.0/1920.0, d.ScaleY, 1e-9)
}

func TestComputeNone(t *testing.T) {
	d := Compute(ModeNone, Sz(1280, 720), Sz(640, 480), AspectRatio(1280, 720))

	assert.Equal(t, Sz(1280, 720), d.Output)
	assert.Equal(t, 1.0, d.ScaleX)
	assert.Equal(t, 1.0, d.ScaleY)
	assert.Equal(t, Sz(1280, 720), d.Bounds)
	assert.Equal(t, 0.0, d.TranslateX)
	assert.Equal(t, 0.0, d.TranslateY)
	assert.False(t, d.Crops())
}

func TestComputeAspectFit(t *testing.T) {
	cases := map[string]struct {
		mode     Mode
		source   Size
		desired  Size
		expected Size
	}{
		"VerticalPortrait": {
			mode: ModeAspectFitVertical, source: Sz(1080, 1920), desired: Sz(640, 480),
			expected: Size{Width: 480 / (1920.0 / 1080.0), Height: 480},
		},
		"VerticalLandscapeSwapsAxis": {
			mode: ModeAspectFitVertical, source: Sz(1920, 1080), desired: Sz(640, 480),
			expected: Size{Width: 480 * (1920.0 / 1080.0), Height: 480},
		},
		"HorizontalLandscape": {
			mode: ModeAspectFitHorizontal, source: Sz(1920, 1080), desired: Sz(640, 480),
			expected: Size{Width: 640, Height: 640 / (1920.0 / 1080.0)},
		},
		"HorizontalPortraitSwapsAxis": {
			mode: ModeAspectFitHorizontal, source: Sz(1080, 1920), desired: Sz(640, 480),
			expected: Size{Width: 640, Height: 640 * (1920.0 / 1080.0)},
		},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			ar := AspectRatio(c.source.Width, c.source.Height)
			d := Compute(c.mode, c.source, c.desired, ar)
			assert.InDelta(t, c.expected.Width, d.Output.Width, 1e-6)
			assert.InDelta(t, c.expected.Height, d.Output.Height, 1e-6)
			assert.InDelta(t, d.Output.Width/c.source.Width, d.ScaleX, 1e-9)
			assert.InDelta(t, d.Output.Height/c.source.Height, d.ScaleY, 1e-9)
		})
	}
}

func TestComputeZeroAspectRatio(t *testing.T) {
	d := Compute(ModeAspectFill, Sz(1920, 1080), Sz(640, 480), 0)
	assert.Equal(t, Sz(640, 480), d.Output)
}

func TestDescriptorCrops(t *testing.T) {
	d := Compute(ModeAspectFill, Sz(1920, 1080), Sz(640, 640), 2.0).WithBounds(Sz(320, 320))
	assert.True(t, d.Crops())
	assert.InDelta(t, -160, d.TranslateX, 1e-9)
}

func TestFitPreset(t *testing.T) {
	cases := map[string]struct {
		source   Size
		preset   Preset
		expected Size
	}{
		"LandscapeDownscale": {source: Sz(1920, 1080), preset: Preset640x480, expected: Sz(640, 480)},
		"PortraitKeepsOrientation": {
			source: Sz(1080, 1920), preset: Preset640x480, expected: Sz(480, 640),
		},
		"SmallerThanPreset": {source: Sz(320, 240), preset: Preset1920x1080, expected: Sz(320, 240)},
	}
	for name, c := range cases {
		c := c
		t.Run(name, func(t *testing.T) {
			presetSize, ok := c.preset.Size()
			assert.True(t, ok)
			assert.Equal(t, c.expected, FitPreset(c.source, presetSize))
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	_, ok := Preset("8k").Size()
	assert.False(t, ok)
}
