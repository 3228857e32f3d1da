package frame

// NewDecoder returns a Decoder for raw frames that are tightly packed in format f,
// planes stored back to back.
func NewDecoder(f Format) (Decoder, error) {
	var buildDecoder func() decoderFunc

	switch f {
	case FormatI420:
		buildDecoder = decodeI420
	case FormatNV12:
		buildDecoder = decodeNV12
	case FormatRGBA:
		buildDecoder = decodePacked(FormatRGBA)
	case FormatBGRA:
		buildDecoder = decodePacked(FormatBGRA)
	default:
		return nil, &UnsupportedFormatError{Format: f}
	}

	return buildDecoder(), nil
}
