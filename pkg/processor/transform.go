package processor

import (
	"context"

	"github.com/pion/mediakit/pkg/frame"
	"github.com/pion/mediakit/pkg/io/video"
)

// Transform returns a video.TransformFunc running every frame of a stream
// through p with req. Output frames keep the format of their input. Once ctx is
// done, reads fail with its error.
func Transform(ctx context.Context, p *Processor, req Request) video.TransformFunc {
	return func(r video.Reader) video.Reader {
		return video.ReaderFunc(func() (*frame.Buffer, func(), error) {
			buf, release, err := r.Read()
			if err != nil {
				return nil, func() {}, err
			}

			out, err := p.ProcessToBuffer(ctx, buf, req, buf.Format)
			release()
			if err != nil {
				return nil, func() {}, err
			}
			return out, func() {}, nil
		})
	}
}
