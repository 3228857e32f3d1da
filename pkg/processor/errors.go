package processor

import "errors"

var (
	// ErrDataProvider is returned when a readback result can't be wrapped into
	// host memory.
	ErrDataProvider = errors.New("failed to create data provider")
	// ErrClosed is returned by every operation issued after Close.
	ErrClosed = errors.New("processor closed")
	// ErrPlaneCountMismatch is returned when the number of textures doesn't match
	// the plane count of the requested format.
	ErrPlaneCountMismatch = errors.New("texture count doesn't match plane count")
)
