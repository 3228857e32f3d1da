package cpu

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/pion/mediakit/pkg/gpu"
	"golang.org/x/sync/errgroup"
)

var (
	errNotCommitted     = errors.New("command buffer not committed")
	errAlreadyCommitted = errors.New("command buffer already committed")
	errEncoderOpen      = errors.New("previous encoder not ended")
	errEncoderEnded     = errors.New("encoder already ended")
	errTextureUsage     = errors.New("texture usage doesn't allow access")
)

type commandQueue struct {
	device *Device

	mu   sync.Mutex
	tail chan struct{}
}

func (q *commandQueue) CommandBuffer() (gpu.CommandBuffer, error) {
	return &commandBuffer{queue: q, done: make(chan struct{})}, nil
}

// enqueue returns the completion channel of the previously committed buffer and
// makes done the new tail.
func (q *commandQueue) enqueue(done chan struct{}) <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	prev := q.tail
	q.tail = done
	return prev
}

type command func() error

type commandBuffer struct {
	queue *commandQueue

	mu        sync.Mutex
	commands  []command
	encoder   *computeEncoder
	committed bool
	// encodeErr is the first error found while encoding. It fails the buffer
	// at execution time, like a GPU validation error would.
	encodeErr error

	done    chan struct{}
	execErr error
}

func (cb *commandBuffer) ComputeEncoder() (gpu.ComputeEncoder, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.committed {
		return nil, fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, errAlreadyCommitted)
	}
	if cb.encoder != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, errEncoderOpen)
	}

	cb.encoder = &computeEncoder{
		buffer:   cb,
		textures: make(map[int]*Texture),
		bytes:    make(map[int][]byte),
	}
	return cb.encoder, nil
}

func (cb *commandBuffer) record(c command) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.committed {
		return errAlreadyCommitted
	}
	cb.commands = append(cb.commands, c)
	return nil
}

func (cb *commandBuffer) fail(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.encodeErr == nil {
		cb.encodeErr = fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, err)
	}
}

func (cb *commandBuffer) endEncoding(e *computeEncoder) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.encoder == e {
		cb.encoder = nil
	}
}

// Commit submits the buffer. It runs once every buffer committed before it on
// the same queue completed.
func (cb *commandBuffer) Commit() {
	cb.mu.Lock()
	if cb.committed {
		cb.mu.Unlock()
		return
	}
	cb.committed = true
	if cb.encoder != nil && cb.encodeErr == nil {
		cb.encodeErr = fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, errEncoderOpen)
	}
	commands, encodeErr := cb.commands, cb.encodeErr
	cb.mu.Unlock()

	prev := cb.queue.enqueue(cb.done)
	go func() {
		defer close(cb.done)
		if prev != nil {
			<-prev
		}

		if encodeErr != nil {
			cb.execErr = encodeErr
			return
		}
		for _, c := range commands {
			if err := c(); err != nil {
				cb.execErr = err
				return
			}
		}
	}()
}

func (cb *commandBuffer) WaitUntilCompleted() error {
	cb.mu.Lock()
	committed := cb.committed
	cb.mu.Unlock()

	if !committed {
		return fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, errNotCommitted)
	}
	<-cb.done
	return cb.execErr
}

type computeEncoder struct {
	buffer   *commandBuffer
	pipeline *computePipeline
	textures map[int]*Texture
	bytes    map[int][]byte
	ended    bool
}

func (e *computeEncoder) SetPipeline(p gpu.ComputePipeline) {
	if e.ended {
		e.buffer.fail(errEncoderEnded)
		return
	}
	cp, ok := p.(*computePipeline)
	if !ok || cp == nil {
		e.buffer.fail(fmt.Errorf("pipeline %v was not compiled by a cpu device", p))
		return
	}
	e.pipeline = cp
}

func (e *computeEncoder) SetTexture(t gpu.Texture, index int) {
	if e.ended {
		e.buffer.fail(errEncoderEnded)
		return
	}
	tex, ok := t.(*Texture)
	if !ok || tex == nil {
		e.buffer.fail(fmt.Errorf("texture %d was not created by a cpu device", index))
		return
	}
	e.textures[index] = tex
}

// SetBytes binds a copy of b.
func (e *computeEncoder) SetBytes(b []byte, index int) {
	if e.ended {
		e.buffer.fail(errEncoderEnded)
		return
	}
	e.bytes[index] = append([]byte(nil), b...)
}

func (e *computeEncoder) Dispatch(groups, groupSize gpu.Size) {
	if e.ended {
		e.buffer.fail(errEncoderEnded)
		return
	}
	if e.pipeline == nil {
		e.buffer.fail(errors.New("dispatch without pipeline"))
		return
	}
	if groupSize.Width <= 0 || groupSize.Height <= 0 || groups.Width < 0 || groups.Height < 0 {
		e.buffer.fail(fmt.Errorf("invalid dispatch %+v x %+v", groups, groupSize))
		return
	}

	fn := e.pipeline.function
	args := &Arguments{
		textures: make(map[int]*Texture, len(e.textures)),
		bytes:    make(map[int][]byte, len(e.bytes)),
	}
	for i, t := range e.textures {
		args.textures[i] = t
	}
	for i, b := range e.bytes {
		args.bytes[i] = b
	}
	for i := 0; i < fn.textures(); i++ {
		tex := args.textures[i]
		if tex == nil {
			e.buffer.fail(fmt.Errorf("%s: texture %d not bound", fn.name, i))
			return
		}
		if err := checkUsage(tex, fn.usage(i)); err != nil {
			e.buffer.fail(fmt.Errorf("%s: texture %d: %w", fn.name, i, err))
			return
		}
	}

	device := e.buffer.queue.device
	if err := e.buffer.record(func() error {
		return device.dispatch(fn, args, groups, groupSize)
	}); err != nil {
		e.buffer.fail(err)
	}
}

// checkUsage fails when t wasn't created for the access a pass needs.
func checkUsage(t *Texture, need gpu.Usage) error {
	if !t.Usage().Has(need) {
		return fmt.Errorf("%w: %s has usage %d, needs %d", errTextureUsage, t, t.Usage(), need)
	}
	return nil
}

func (e *computeEncoder) EndEncoding() {
	if e.ended {
		return
	}
	e.ended = true
	e.buffer.endEncoding(e)
}

// dispatch runs every thread of the grid. Rows of threadgroups are spread over
// at most d.parallelism goroutines.
func (d *Device) dispatch(fn *Function, args *Arguments, groups, groupSize gpu.Size) error {
	for i := 0; i < fn.textures(); i++ {
		if t := args.textures[i]; t.isReleased() {
			return fmt.Errorf("%s: texture %d (%s): %w", fn.name, i, t.id, gpu.ErrTextureReleased)
		}
	}

	var eg errgroup.Group
	eg.SetLimit(d.parallelism)
	for gy := 0; gy < groups.Height; gy++ {
		eg.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%s: threadgroup row %d: %v", fn.name, gy, r)
				}
			}()

			for gx := 0; gx < groups.Width; gx++ {
				for ty := 0; ty < groupSize.Height; ty++ {
					for tx := 0; tx < groupSize.Width; tx++ {
						fn.kernel(args, image.Pt(gx*groupSize.Width+tx, gy*groupSize.Height+ty))
					}
				}
			}
			return nil
		})
	}
	return eg.Wait()
}
