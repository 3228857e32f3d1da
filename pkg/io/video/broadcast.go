package video

import (
	"github.com/pion/mediakit/pkg/frame"
	"github.com/pion/mediakit/pkg/io"
)

// Broadcaster is a specialized video broadcaster.
type Broadcaster struct {
	ioBroadcaster *io.Broadcaster[*frame.Buffer]
}

// NewBroadcaster creates a new broadcaster. A nil config uses the defaults of
// io.NewBroadcaster.
func NewBroadcaster(source Reader, config *io.BroadcasterConfig) (*Broadcaster, error) {
	b, err := io.NewBroadcaster[*frame.Buffer](source, config)
	if err != nil {
		return nil, err
	}
	return &Broadcaster{b}, nil
}

// NewReader creates a new reader. Each reader will retrieve the same frames from the source.
// When copyFrame is set every reader gets its own copy of each frame, otherwise
// readers share the buffers produced by the source and must not modify them.
func (broadcaster *Broadcaster) NewReader(copyFrame bool) Reader {
	copyFn := func(src *frame.Buffer) *frame.Buffer { return src }

	if copyFrame {
		buffer := NewFrameBuffer(0)
		copyFn = func(src *frame.Buffer) *frame.Buffer {
			if src == nil {
				return nil
			}
			buffer.StoreCopy(src)
			return buffer.Load()
		}
	}

	return broadcaster.ioBroadcaster.NewReader(copyFn)
}

// ReplaceSource replaces the underlying source. This operation is thread safe.
func (broadcaster *Broadcaster) ReplaceSource(source Reader) error {
	return broadcaster.ioBroadcaster.ReplaceSource(source)
}

// Source retrieves the underlying source. This operation is thread safe.
func (broadcaster *Broadcaster) Source() Reader {
	return broadcaster.ioBroadcaster.Source()
}
