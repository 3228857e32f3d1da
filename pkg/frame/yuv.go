package frame

import (
	"fmt"
)

func decodeI420() decoderFunc {
	return func(frame []byte, width, height int) (*Buffer, error) {
		cri, err := FormatI420.FrameSize(width, height)
		if err != nil {
			return nil, err
		}

		cw, ch := width/2, height/2
		yi := width * height
		cbi := yi + cw*ch

		if cri > len(frame) {
			return nil, fmt.Errorf("%w: frame length (%d) less than expected (%d)", ErrBufferTooSmall, len(frame), cri)
		}

		return &Buffer{
			Format: FormatI420,
			Width:  width,
			Height: height,
			Planes: []Plane{
				{Data: frame[:yi:yi], Width: width, Height: height, Stride: width, BitDepth: 8},
				{Data: frame[yi:cbi:cbi], Width: cw, Height: ch, Stride: cw, BitDepth: 8},
				{Data: frame[cbi:cri:cri], Width: cw, Height: ch, Stride: cw, BitDepth: 8},
			},
		}, nil
	}
}

func decodeNV12() decoderFunc {
	return func(frame []byte, width, height int) (*Buffer, error) {
		ci, err := FormatNV12.FrameSize(width, height)
		if err != nil {
			return nil, err
		}

		cw, ch := width/2, height/2
		yi := width * height

		if ci > len(frame) {
			return nil, fmt.Errorf("%w: frame length (%d) less than expected (%d)", ErrBufferTooSmall, len(frame), ci)
		}

		return &Buffer{
			Format: FormatNV12,
			Width:  width,
			Height: height,
			Planes: []Plane{
				{Data: frame[:yi:yi], Width: width, Height: height, Stride: width, BitDepth: 8},
				{Data: frame[yi:ci:ci], Width: cw, Height: ch, Stride: 2 * cw, BitDepth: 16},
			},
		}, nil
	}
}
