// Package io holds stream plumbing shared by media readers.
package io

// Reader is a pull based stream of T. release must be called once the caller is
// done with the returned value.
type Reader[T any] interface {
	Read() (data T, release func(), err error)
}

// ReaderFunc is a proxy type to make easier for users to implement Reader
type ReaderFunc[T any] func() (data T, release func(), err error)

func (f ReaderFunc[T]) Read() (T, func(), error) {
	return f()
}
