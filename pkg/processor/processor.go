// Package processor converts, scales, mirrors and reads back video frames on a
// gpu.Device.
//
// Every operation is executed by a single worker goroutine owning the command
// queue and the compiled kernels, so concurrent callers are served one at a time
// in FIFO order. An operation returns once the GPU finished its work: textures
// handed back are always fully written.
package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pion/logging"
	mklogging "github.com/pion/mediakit/internal/logging"
	"github.com/pion/mediakit/pkg/gpu"
)

// Kernel names the processor expects in the device library.
const (
	kernelYCbCrToRGB = "ycbcrToRgb"
	kernelI420ToRGB  = "i420ToRgb"
	kernelRGBToYUV   = "rgbToYuv"
	kernelRGBToI420  = "rgbToI420"
	kernelFlip       = "flip"
)

var requiredKernels = []string{
	kernelYCbCrToRGB,
	kernelI420ToRGB,
	kernelRGBToYUV,
	kernelRGBToI420,
	kernelFlip,
}

// liveTextureReporter is implemented by devices able to list their unreleased
// textures.
type liveTextureReporter interface {
	LeakReport() []string
}

type job struct {
	run  func() error
	done chan error
}

// Processor is the frame processing component. Create it with New and release
// it with Close.
type Processor struct {
	device    gpu.Device
	library   gpu.Library
	queue     gpu.CommandQueue
	cache     gpu.TextureCache
	scaler    gpu.ImageScaler
	log       logging.LeveledLogger
	groupSize gpu.Size

	// kernels is only touched by the worker, or by New before it starts.
	kernels map[string]gpu.ComputePipeline
	// broken holds the error of a failed kernel compilation. Once set, every
	// operation fails with it.
	broken atomic.Pointer[error]

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

// New creates a processor on device. It fails when the device is nil, when the
// device library misses one of the bundled kernels, or when any GPU object the
// processor keeps for its lifetime can't be created.
func New(device gpu.Device, opts ...Option) (*Processor, error) {
	if device == nil {
		return nil, gpu.ErrDeviceUnavailable
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}

	factory := c.loggerFactory
	if factory == nil {
		factory = mklogging.Factory()
	}
	log := factory.NewLogger("mediakit/processor")

	library, err := device.DefaultLibrary()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrShaderFunctionNotFound, err)
	}
	for _, name := range requiredKernels {
		if _, err := library.Function(name); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", gpu.ErrShaderFunctionNotFound, name, err)
		}
	}

	queue, err := device.NewCommandQueue()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrCommandQueueSetup, err)
	}
	cache, err := device.NewTextureCache()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrTextureCacheCreationFailed, err)
	}
	scaler, err := device.NewImageScaler(c.filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, err)
	}

	p := &Processor{
		device:    device,
		library:   library,
		queue:     queue,
		cache:     cache,
		scaler:    scaler,
		log:       log,
		groupSize: c.groupSize,
		kernels:   make(map[string]gpu.ComputePipeline),
		jobs:      make(chan job, c.queueDepth),
	}

	if c.precompile {
		for _, name := range requiredKernels {
			if _, err := p.kernel(name); err != nil {
				cache.Flush()
				return nil, err
			}
		}
	}

	p.wg.Add(1)
	go p.work()

	log.Infof("processor started on %s, threadgroup %dx%d, filter %s",
		device.Name(), c.groupSize.Width, c.groupSize.Height, c.filter)
	return p, nil
}

func (p *Processor) work() {
	defer p.wg.Done()
	for j := range p.jobs {
		if err := p.brokenErr(); err != nil {
			j.done <- err
			continue
		}
		j.done <- j.run()
	}
}

// submit queues run on the worker and waits for its result. ctx only bounds the
// time spent waiting for a queue slot: once the worker picked the job up it runs
// to completion.
func (p *Processor) submit(ctx context.Context, run func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.brokenErr(); err != nil {
		return err
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return ErrClosed
	}

	j := job{run: run, done: make(chan error, 1)}
	select {
	case p.jobs <- j:
		p.mu.RUnlock()
	case <-ctx.Done():
		p.mu.RUnlock()
		return ctx.Err()
	}

	return <-j.done
}

// Close waits for queued operations to finish and releases the textures still
// held by the texture cache. Operations issued afterwards fail with ErrClosed.
func (p *Processor) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cache.Flush()
	if r, ok := p.device.(liveTextureReporter); ok {
		for _, t := range r.LeakReport() {
			p.log.Debugf("texture still alive after close: %s", t)
		}
	}
	p.log.Info("processor closed")
	return nil
}

func (p *Processor) brokenErr() error {
	if err := p.broken.Load(); err != nil {
		return *err
	}
	return nil
}

// kernel returns the compiled pipeline for name, compiling it on first use. The
// kernels are bundled with the device, so a compilation failure leaves the
// processor unusable.
func (p *Processor) kernel(name string) (gpu.ComputePipeline, error) {
	if k, ok := p.kernels[name]; ok {
		return k, nil
	}

	fn, err := p.library.Function(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gpu.ErrShaderFunctionNotFound, name, err)
	}
	k, err := p.device.NewComputePipeline(fn)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", gpu.ErrKernelCompilationFailed, name, err)
		p.broken.CompareAndSwap(nil, &err)
		p.log.Errorf("processor disabled: %v", err)
		return nil, err
	}

	p.kernels[name] = k
	p.log.Debugf("compiled kernel %s", name)
	return k, nil
}

// dispatch runs kernel name once over grid and waits for completion.
func (p *Processor) dispatch(name string, grid gpu.Size, textures []gpu.Texture, constants map[int][]byte) error {
	k, err := p.kernel(name)
	if err != nil {
		return err
	}

	cb, err := p.queue.CommandBuffer()
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrCommandQueueSetup, err)
	}
	enc, err := cb.ComputeEncoder()
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrEncoderSetup, err)
	}

	enc.SetPipeline(k)
	for i, t := range textures {
		enc.SetTexture(t, i)
	}
	for i, b := range constants {
		enc.SetBytes(b, i)
	}
	groups := gpu.ThreadgroupsFor(grid, p.groupSize)
	enc.Dispatch(groups, p.groupSize)
	enc.EndEncoding()

	p.log.Tracef("dispatch %s: %dx%d groups of %dx%d", name, groups.Width, groups.Height, p.groupSize.Width, p.groupSize.Height)
	cb.Commit()
	if err := cb.WaitUntilCompleted(); err != nil {
		p.log.Errorf("%s failed: %v", name, err)
		return err
	}
	return nil
}

// newTexture allocates a read/write texture.
func (p *Processor) newTexture(format gpu.PixelFormat, width, height int) (gpu.Texture, error) {
	t, err := p.device.NewTexture(gpu.TextureDescriptor{
		Format: format,
		Width:  width,
		Height: height,
		Usage:  gpu.UsageShaderReadWrite,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrTextureCreationFailed, err)
	}
	p.log.Tracef("allocated %s texture %dx%d", format, width, height)
	return t, nil
}

func releaseAll(textures []gpu.Texture) {
	for _, t := range textures {
		if t != nil {
			t.Release()
		}
	}
}

func boolConstant(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}
