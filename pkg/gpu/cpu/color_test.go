package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYCbCrToRGB(t *testing.T) {
	cases := map[string]struct {
		y, cb, cr uint8
		full      bool
		expected  [3]uint8
	}{
		"VideoBlack": {y: 16, cb: 128, cr: 128, expected: [3]uint8{0, 0, 0}},
		"VideoWhite": {y: 235, cb: 128, cr: 128, expected: [3]uint8{255, 255, 255}},
		"VideoClamp": {y: 0, cb: 128, cr: 128, expected: [3]uint8{0, 0, 0}},
		"FullBlack":  {y: 0, cb: 128, cr: 128, full: true, expected: [3]uint8{0, 0, 0}},
		"FullWhite":  {y: 255, cb: 128, cr: 128, full: true, expected: [3]uint8{255, 255, 255}},
		"FullColor":  {y: 100, cb: 110, cr: 150, full: true, expected: [3]uint8{131, 90, 68}},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, g, b := ycbcrToRGB(c.y, c.cb, c.cr, c.full)
			assert.Equal(t, c.expected, [3]uint8{r, g, b})
		})
	}
}

func TestYCbCrRoundTrip(t *testing.T) {
	cases := map[string]struct {
		y, cb, cr uint8
		full      bool
	}{
		"VideoGray":  {y: 128, cb: 128, cr: 128},
		"VideoColor": {y: 100, cb: 110, cr: 150},
		"FullColor":  {y: 100, cb: 110, cr: 150, full: true},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			r, g, b := ycbcrToRGB(c.y, c.cb, c.cr, c.full)
			y, cb, cr := rgbToYCbCr(r, g, b, c.full)
			assert.InDelta(t, c.y, y, 1)
			assert.InDelta(t, c.cb, cb, 1)
			assert.InDelta(t, c.cr, cr, 1)
		})
	}
}
