package frame

// Decoder slices a packed raw frame into a Buffer.
type Decoder interface {
	Decode(frame []byte, width, height int) (*Buffer, error)
}

// decoderFunc is a proxy type for Decoder
type decoderFunc func(frame []byte, width, height int) (*Buffer, error)

func (f decoderFunc) Decode(frame []byte, width, height int) (*Buffer, error) {
	return f(frame, width, height)
}
