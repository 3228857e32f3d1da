package video

import (
	"github.com/pion/mediakit/pkg/frame"
)

// Reader is a stream of frames. The returned release func must be called once the
// caller no longer uses the buffer.
type Reader interface {
	Read() (buf *frame.Buffer, release func(), err error)
}

type ReaderFunc func() (buf *frame.Buffer, release func(), err error)

func (rf ReaderFunc) Read() (buf *frame.Buffer, release func(), err error) {
	buf, release, err = rf()
	return
}

// TransformFunc produces a new Reader that will produces a transformed video
type TransformFunc func(r Reader) Reader

// Merge merges transforms and produces a new TransformFunc that will execute
// transforms in order
func Merge(transforms ...TransformFunc) TransformFunc {
	return func(r Reader) Reader {
		for _, transform := range transforms {
			if transform == nil {
				continue
			}

			r = transform(r)
		}

		return r
	}
}
