package io

import (
	"errors"
	"sync/atomic"
	"time"
)

const (
	maskReading                = 1 << 63
	defaultBroadcasterRingSize = 32
	// Sources faster than 30 fps see some jitter with this poll interval.
	defaultBroadcasterRingPollDuration = time.Millisecond * 33
)

var errEmptySource = errors.New("source can't be nil")

type broadcasterData[T any] struct {
	data  T
	count uint32
	err   error
}

type broadcasterRing[T any] struct {
	// reading (1 bit) + reserved (31 bits) + data count (32 bits)
	// state must stay the first field so 64 bit atomics are aligned on 32 bit
	// platforms.
	state        uint64
	buffer       []atomic.Pointer[broadcasterData[T]]
	pollDuration time.Duration
}

func newBroadcasterRing[T any](size uint, pollDuration time.Duration) *broadcasterRing[T] {
	return &broadcasterRing[T]{
		buffer:       make([]atomic.Pointer[broadcasterData[T]], size),
		pollDuration: pollDuration,
	}
}

func (ring *broadcasterRing[T]) index(count uint32) int {
	return int(count) % len(ring.buffer)
}

// acquire grants the right to pull entry count from the source. Only one reader
// wins, the others wait in get for the value it publishes.
func (ring *broadcasterRing[T]) acquire(count uint32) func(*broadcasterData[T]) {
	state := uint64(count)
	if !atomic.CompareAndSwapUint64(&ring.state, state, state|maskReading) {
		return nil
	}

	return func(data *broadcasterData[T]) {
		ring.buffer[ring.index(count)].Store(data)
		atomic.StoreUint64(&ring.state, uint64(count+1))
	}
}

// get returns entry count, or the oldest newer entry still in the ring when
// count was already overwritten.
func (ring *broadcasterRing[T]) get(count uint32) *broadcasterData[T] {
	for {
		reading := uint64(count) | maskReading
		for atomic.LoadUint64(&ring.state) == reading {
			time.Sleep(ring.pollDuration)
		}

		data := ring.buffer[ring.index(count)].Load()
		if data != nil && data.count == count {
			return data
		}
		count++
	}
}

// lastCount is the count of the latest published entry.
func (ring *broadcasterRing[T]) lastCount() uint32 {
	return uint32(atomic.LoadUint64(&ring.state)) - 1
}

// Broadcaster fans a single pull based source out to any number of readers.
// Readers can come and go at any time without notifying the broadcaster.
type Broadcaster[T any] struct {
	source atomic.Pointer[Reader[T]]
	buffer *broadcasterRing[T]
}

// BroadcasterConfig is a config to control broadcaster behaviour
type BroadcasterConfig struct {
	// BufferSize configures the underlying ring buffer size that's being used
	// to avoid data lost for late readers. The default value is 32.
	BufferSize uint
	// PollDuration configures the sleep duration in waiting for new data to come.
	// The default value is 33 ms.
	PollDuration time.Duration
}

// NewBroadcaster creates a new broadcaster. Source is expected to drop frames
// when any of the readers is slower than the source.
func NewBroadcaster[T any](source Reader[T], config *BroadcasterConfig) (*Broadcaster[T], error) {
	pollDuration := defaultBroadcasterRingPollDuration
	var bufferSize uint = defaultBroadcasterRingSize
	if config != nil {
		if config.PollDuration != 0 {
			pollDuration = config.PollDuration
		}
		if config.BufferSize != 0 {
			bufferSize = config.BufferSize
		}
	}

	b := &Broadcaster[T]{buffer: newBroadcasterRing[T](bufferSize, pollDuration)}
	if err := b.ReplaceSource(source); err != nil {
		return nil, err
	}
	return b, nil
}

// NewReader creates a new reader. Each reader will retrieve the same data from the source.
// copyFn is used to copy the data from the source to individual readers. Broadcaster uses a small ring
// buffer, this means that slow readers might miss some data if they're really late and the data is no longer
// in the ring buffer.
//
// Values stay referenced by the ring, so the release funcs of the source are
// not called and readers get a no-op release.
func (b *Broadcaster[T]) NewReader(copyFn func(T) T) Reader[T] {
	currentCount := b.buffer.lastCount()

	return ReaderFunc[T](func() (data T, release func(), err error) {
		currentCount++
		if push := b.buffer.acquire(currentCount); push != nil {
			data, _, err = b.Source().Read()
			push(&broadcasterData[T]{
				data:  data,
				err:   err,
				count: currentCount,
			})
		} else {
			ringData := b.buffer.get(currentCount)
			data, err, currentCount = ringData.data, ringData.err, ringData.count
		}

		return copyFn(data), func() {}, err
	})
}

// ReplaceSource replaces the underlying source. This operation is thread safe.
func (b *Broadcaster[T]) ReplaceSource(source Reader[T]) error {
	if source == nil {
		return errEmptySource
	}

	b.source.Store(&source)
	return nil
}

// Source retrieves the underlying source. This operation is thread safe.
func (b *Broadcaster[T]) Source() Reader[T] {
	return *b.source.Load()
}
