package frame

type Format string

const (
	// Packed RGB formats

	// FormatRGBA is 8 bits per channel, R, G, B, A byte order.
	FormatRGBA Format = "RGBA"
	// FormatBGRA is 8 bits per channel, B, G, R, A byte order.
	FormatBGRA Format = "BGRA"

	// YUV Formats

	// FormatNV12 https://www.fourcc.org/pixel-format/yuv-nv12/
	// A full resolution luma plane followed by a half resolution interleaved CbCr plane.
	FormatNV12 Format = "NV12"
	// FormatI420 https://www.fourcc.org/pixel-format/yuv-i420/
	FormatI420 Format = "I420"
)

// ColorRange tells how luma and chroma values are quantized in a YUV buffer.
type ColorRange int

const (
	// ColorRangeVideo uses 16-235 for luma and 16-240 for chroma (BT.601 "studio swing").
	ColorRangeVideo ColorRange = iota
	// ColorRangeFull uses the whole 0-255 range for every component.
	ColorRangeFull
)

func (r ColorRange) String() string {
	switch r {
	case ColorRangeVideo:
		return "video"
	case ColorRangeFull:
		return "full"
	default:
		return "unknown"
	}
}

// planeLayout describes a single plane of a format relative to the luma size.
type planeLayout struct {
	bytesPerPixel int
	// chroma planes are half resolution, rounded toward zero
	subsampled bool
}

var formatLayouts = map[Format][]planeLayout{
	FormatRGBA: {{bytesPerPixel: 4}},
	FormatBGRA: {{bytesPerPixel: 4}},
	FormatNV12: {{bytesPerPixel: 1}, {bytesPerPixel: 2, subsampled: true}},
	FormatI420: {{bytesPerPixel: 1}, {bytesPerPixel: 1, subsampled: true}, {bytesPerPixel: 1, subsampled: true}},
}

// Supported reports whether f belongs to the closed set of formats this module handles.
func (f Format) Supported() bool {
	_, ok := formatLayouts[f]
	return ok
}

// PlaneCount returns the number of planes of f, or 0 when f is unsupported.
func (f Format) PlaneCount() int {
	return len(formatLayouts[f])
}

// IsYUV reports whether f stores luma and chroma separately.
func (f Format) IsYUV() bool {
	return f == FormatNV12 || f == FormatI420
}

// PlaneSize returns the dimensions in pixels of the given plane for a width x height image.
func (f Format) PlaneSize(plane, width, height int) (int, int, error) {
	layout, err := f.layout(plane)
	if err != nil {
		return 0, 0, err
	}
	if layout.subsampled {
		return width / 2, height / 2, nil
	}
	return width, height, nil
}

// BytesPerPixel returns the size of one pixel of the given plane.
func (f Format) BytesPerPixel(plane int) (int, error) {
	layout, err := f.layout(plane)
	if err != nil {
		return 0, err
	}
	return layout.bytesPerPixel, nil
}

func (f Format) layout(plane int) (planeLayout, error) {
	layouts, ok := formatLayouts[f]
	if !ok {
		return planeLayout{}, &UnsupportedFormatError{Format: f}
	}
	if plane < 0 || plane >= len(layouts) {
		return planeLayout{}, &PlaneIndexError{Format: f, Index: plane, Count: len(layouts)}
	}
	return layouts[plane], nil
}
