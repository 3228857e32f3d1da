package gpu

import "fmt"

// PixelFormat is the storage format of a texture.
type PixelFormat uint8

const (
	PixelFormatInvalid PixelFormat = iota
	// PixelFormatR8Unorm is a single 8 bit channel, used for luma and planar chroma.
	PixelFormatR8Unorm
	// PixelFormatRG8Unorm is two 8 bit channels, used for interleaved CbCr.
	PixelFormatRG8Unorm
	PixelFormatRGBA8Unorm
	PixelFormatBGRA8Unorm
)

var pixelFormatNames = map[PixelFormat]string{
	PixelFormatR8Unorm:    "r8Unorm",
	PixelFormatRG8Unorm:   "rg8Unorm",
	PixelFormatRGBA8Unorm: "rgba8Unorm",
	PixelFormatBGRA8Unorm: "bgra8Unorm",
}

func (f PixelFormat) String() string {
	if name, ok := pixelFormatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("PixelFormat(%d)", uint8(f))
}

// Valid reports whether f is a known format.
func (f PixelFormat) Valid() bool {
	_, ok := pixelFormatNames[f]
	return ok
}

// BytesPerPixel returns the size of one texel, 0 for unknown formats.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case PixelFormatR8Unorm:
		return 1
	case PixelFormatRG8Unorm:
		return 2
	case PixelFormatRGBA8Unorm, PixelFormatBGRA8Unorm:
		return 4
	default:
		return 0
	}
}

// RowBytes returns the tightly packed row length for width texels.
func (f PixelFormat) RowBytes(width int) int {
	return f.BytesPerPixel() * width
}

// Size is a 2D extent in texels, threads or threadgroups.
type Size struct {
	Width, Height int
}

// Region is a rectangle of texels.
type Region struct {
	X, Y          int
	Width, Height int
}

// RegionOf returns the region covering the whole of t.
func RegionOf(t Texture) Region {
	return Region{Width: t.Width(), Height: t.Height()}
}

// ThreadgroupsFor returns how many groups of groupSize cover a grid of the given
// size, rounding up so partial groups at the edges are dispatched too.
func ThreadgroupsFor(grid, groupSize Size) Size {
	return Size{
		Width:  (grid.Width + groupSize.Width - 1) / groupSize.Width,
		Height: (grid.Height + groupSize.Height - 1) / groupSize.Height,
	}
}

// ScaleTransform maps source coordinates to destination coordinates:
// dst = src*scale + translate.
type ScaleTransform struct {
	ScaleX, ScaleY         float64
	TranslateX, TranslateY float64
}

// Filter is a resampling filter.
type Filter int

const (
	// FilterLanczos is a 3 lobe Lanczos filter.
	FilterLanczos Filter = iota
	FilterCatmullRom
	FilterBilinear
	FilterNearest
)

func (f Filter) String() string {
	switch f {
	case FilterLanczos:
		return "lanczos"
	case FilterCatmullRom:
		return "catmullRom"
	case FilterBilinear:
		return "bilinear"
	case FilterNearest:
		return "nearest"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}
