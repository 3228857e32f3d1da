package frame

import (
	"errors"
	"fmt"
)

var (
	ErrPixelFormatUnsupported = errors.New("pixel format unsupported")
	ErrPlaneIndexInvalid      = errors.New("plane index invalid")
	ErrBufferTooSmall         = errors.New("buffer too small")
	ErrInvalidDimensions      = errors.New("invalid dimensions")
)

// UnsupportedFormatError tells the caller that a format is outside the supported set.
type UnsupportedFormatError struct {
	Format Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("%s is not supported", e.Format)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrPixelFormatUnsupported
}

// PlaneIndexError tells the caller that a plane index exceeds the plane count of a format.
type PlaneIndexError struct {
	Format Format
	Index  int
	Count  int
}

func (e *PlaneIndexError) Error() string {
	return fmt.Sprintf("plane index %d out of range, %s has %d plane(s)", e.Index, e.Format, e.Count)
}

func (e *PlaneIndexError) Is(target error) bool {
	return target == ErrPlaneIndexInvalid
}

// InsufficientBufferError tells the caller that the plane data provided is not big
// enough to hold the described image.
type InsufficientBufferError struct {
	Plane        int
	RequiredSize int
	ActualSize   int
}

func (e *InsufficientBufferError) Error() string {
	return fmt.Sprintf("plane %d length (%d) less than expected (%d)", e.Plane, e.ActualSize, e.RequiredSize)
}

func (e *InsufficientBufferError) Is(target error) bool {
	return target == ErrBufferTooSmall
}
