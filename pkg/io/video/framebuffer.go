package video

import (
	"github.com/pion/mediakit/pkg/frame"
)

// FrameBuffer holds a private, tightly packed copy of a frame.
type FrameBuffer struct {
	buffer []uint8
	tmp    *frame.Buffer
}

// NewFrameBuffer creates a new FrameBuffer instance and initialize internal buffer
// with initialSize
func NewFrameBuffer(initialSize int) *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]uint8, initialSize),
	}
}

func (buff *FrameBuffer) grow(neededSize int) {
	if len(buff.buffer) >= neededSize {
		return
	}
	if cap(buff.buffer) >= neededSize {
		buff.buffer = buff.buffer[:neededSize]
		return
	}
	buff.buffer = make([]uint8, neededSize)
}

// Load loads the current owned frame
func (buff *FrameBuffer) Load() *frame.Buffer {
	return buff.tmp
}

// StoreCopy makes a copy of src and store its copy. StoreCopy will reuse as much memory as it can
// from the previous copies. For example, if StoreCopy is given a frame that has the same resolution
// and format from the previous call, StoreCopy will not allocate extra memory and only copy the content
// from src to the previous buffer. Row padding of src is dropped.
func (buff *FrameBuffer) StoreCopy(src *frame.Buffer) {
	var neededSize int
	for i := range src.Planes {
		p := &src.Planes[i]
		neededSize += p.Width * p.BitDepth / 8 * p.Height
	}
	buff.grow(neededSize)

	clone := buff.tmp
	if clone == nil || len(clone.Planes) != len(src.Planes) {
		clone = &frame.Buffer{Planes: make([]frame.Plane, len(src.Planes))}
	}
	clone.Format, clone.Range = src.Format, src.Range
	clone.Width, clone.Height = src.Width, src.Height

	var currentLen int
	for i := range src.Planes {
		p := &src.Planes[i]
		rowBytes := p.Width * p.BitDepth / 8
		size := rowBytes * p.Height

		data := buff.buffer[currentLen : currentLen+size : currentLen+size]
		for y := 0; y < p.Height; y++ {
			copy(data[y*rowBytes:], p.Row(y))
		}
		currentLen += size

		clone.Planes[i] = frame.Plane{
			Data:     data,
			Width:    p.Width,
			Height:   p.Height,
			Stride:   rowBytes,
			BitDepth: p.BitDepth,
		}
	}

	buff.tmp = clone
}
