// Package scale computes the geometry used to resize, center and crop video frames.
// Nothing in this package touches pixels.
package scale

import "fmt"

// Size is a width and height in pixels. Fractional sizes are allowed while
// computing, callers round when they allocate.
type Size struct {
	Width, Height float64
}

// Sz is a shorthand for Size{Width: w, Height: h} with integer inputs.
func Sz(w, h int) Size {
	return Size{Width: float64(w), Height: float64(h)}
}

// Landscape reports whether s is wider than tall.
func (s Size) Landscape() bool {
	return s.Width > s.Height
}

// Portrait reports whether s is taller than wide.
func (s Size) Portrait() bool {
	return s.Height > s.Width
}

// Swapped returns s rotated by 90 degrees.
func (s Size) Swapped() Size {
	return Size{Width: s.Height, Height: s.Width}
}

// Pixels rounds s down to whole pixels.
func (s Size) Pixels() (int, int) {
	return int(s.Width), int(s.Height)
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Mode is a scaling policy.
type Mode int

const (
	// ModeNone keeps the source size.
	ModeNone Mode = iota
	// ModeAspectFitVertical pins the desired height.
	ModeAspectFitVertical
	// ModeAspectFitHorizontal pins the desired width.
	ModeAspectFitHorizontal
	// ModeAspectFill pins the desired dimension matching the longer source axis and
	// crops whatever overflows the desired box.
	ModeAspectFill
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAspectFitVertical:
		return "aspectFitVertical"
	case ModeAspectFitHorizontal:
		return "aspectFitHorizontal"
	case ModeAspectFill:
		return "aspectFill"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// AspectRatio returns max(w,h)/min(w,h). The result is always >= 1, orientation
// is tracked separately by the caller. A zero dimension yields 0.
func AspectRatio(width, height float64) float64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	if width > height {
		return width / height
	}
	return height / width
}

// Descriptor is the result of a scale computation. It is recomputed for every
// frame and never cached.
type Descriptor struct {
	Mode        Mode
	Source      Size
	Desired     Size
	AspectRatio float64

	// Output is the size the source is scaled to.
	Output Size
	// Bounds is the destination box the scaled source is centered in.
	Bounds Size

	ScaleX, ScaleY         float64
	TranslateX, TranslateY float64
}

// Compute derives the output size, scale factors and centering offsets for mode.
// An aspectRatio of 0 falls back to the desired size on the derived axis.
func Compute(mode Mode, source, desired Size, aspectRatio float64) Descriptor {
	var out Size

	switch mode {
	case ModeAspectFitVertical:
		out.Height = desired.Height
		out.Width = desired.Width
		if aspectRatio != 0 {
			out.Width = desired.Height / aspectRatio
		}
		if source.Landscape() {
			out.Width = out.Height * aspectRatio
		}

	case ModeAspectFitHorizontal:
		out.Width = desired.Width
		out.Height = desired.Height
		if aspectRatio != 0 {
			out.Height = desired.Width / aspectRatio
		}
		if source.Portrait() {
			out.Height = out.Width * aspectRatio
		}

	case ModeAspectFill:
		if source.Landscape() {
			out.Width = desired.Width
			out.Height = desired.Height
			if aspectRatio != 0 {
				out.Height = desired.Width / aspectRatio
			}
		} else {
			out.Height = desired.Height
			out.Width = desired.Width
			if aspectRatio != 0 {
				out.Width = desired.Height / aspectRatio
			}
		}

	default:
		out = source
	}

	d := Descriptor{
		Mode:        mode,
		Source:      source,
		Desired:     desired,
		AspectRatio: aspectRatio,
		Output:      out,
		ScaleX:      1,
		ScaleY:      1,
	}
	if source.Width > 0 {
		d.ScaleX = out.Width / source.Width
	}
	if source.Height > 0 {
		d.ScaleY = out.Height / source.Height
	}

	bounds := desired
	if mode == ModeNone {
		bounds = source
	}
	return d.WithBounds(bounds)
}

// WithBounds returns a copy of d centered in a destination box of the given size.
// A negative translation means the scaled source overflows the box and is cropped.
func (d Descriptor) WithBounds(bounds Size) Descriptor {
	d.Bounds = bounds
	d.TranslateX = (bounds.Width - d.Source.Width*d.ScaleX) / 2
	d.TranslateY = (bounds.Height - d.Source.Height*d.ScaleY) / 2
	return d
}

// Crops reports whether part of the scaled source falls outside Bounds.
func (d Descriptor) Crops() bool {
	return d.TranslateX < 0 || d.TranslateY < 0
}
