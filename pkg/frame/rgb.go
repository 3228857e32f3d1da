package frame

import (
	"fmt"
)

func decodePacked(f Format) func() decoderFunc {
	return func() decoderFunc {
		return func(frame []byte, width, height int) (*Buffer, error) {
			size, err := f.FrameSize(width, height)
			if err != nil {
				return nil, err
			}
			if size > len(frame) {
				return nil, fmt.Errorf("%w: frame length (%d) less than expected (%d)", ErrBufferTooSmall, len(frame), size)
			}

			return &Buffer{
				Format: f,
				Width:  width,
				Height: height,
				Planes: []Plane{
					{Data: frame[:size:size], Width: width, Height: height, Stride: 4 * width, BitDepth: 32},
				},
			}, nil
		}
	}
}
