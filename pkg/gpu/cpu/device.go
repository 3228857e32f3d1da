// Package cpu is a portable gpu.Device that runs compute kernels and image
// resampling on host threads. Textures live in host memory, command buffers run
// asynchronously in submission order and kernels are dispatched threadgroup by
// threadgroup exactly like on a GPU, including partial groups at the edges.
package cpu

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pion/mediakit/internal/logging"
	"github.com/pion/mediakit/pkg/gpu"
)

var logger = logging.NewLogger("mediakit/gpu/cpu")

const (
	defaultName = "cpu"
	// defaultMaxTextureSize mirrors the 2D texture limit of common desktop GPUs.
	defaultMaxTextureSize = 16384
)

// Option configures a Device.
type Option func(*Device)

// WithName sets the name reported by Device.Name.
func WithName(name string) Option {
	return func(d *Device) {
		d.name = name
	}
}

// WithParallelism bounds the number of threadgroup rows executed concurrently.
// Values below 1 are ignored.
func WithParallelism(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.parallelism = n
		}
	}
}

// WithMaxTextureSize bounds texture width and height.
func WithMaxTextureSize(n int) Option {
	return func(d *Device) {
		d.maxTextureSize = n
	}
}

// WithLibrary replaces the bundled kernel library.
func WithLibrary(lib *Library) Option {
	return func(d *Device) {
		d.library = lib
	}
}

// Device implements gpu.Device on the host CPU.
type Device struct {
	name           string
	parallelism    int
	maxTextureSize int
	library        *Library

	mu           sync.Mutex
	compilations map[string]int
	// live holds every texture created and not yet released.
	live map[uuid.UUID]*Texture

	createdTextures int64
}

// NewDevice creates a CPU device with the bundled kernel library.
func NewDevice(opts ...Option) (*Device, error) {
	d := &Device{
		name:           defaultName,
		parallelism:    runtime.GOMAXPROCS(0),
		maxTextureSize: defaultMaxTextureSize,
		compilations:   make(map[string]int),
		live:           make(map[uuid.UUID]*Texture),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.library == nil {
		d.library = DefaultLibrary()
	}

	logger.Debugf("created device %q, parallelism %d", d.name, d.parallelism)
	return d, nil
}

// Name returns the device name.
func (d *Device) Name() string {
	return d.name
}

// NewTexture allocates a zeroed texture.
func (d *Device) NewTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	return d.newTexture(desc)
}

func (d *Device) newTexture(desc gpu.TextureDescriptor) (*Texture, error) {
	if !desc.Format.Valid() {
		return nil, fmt.Errorf("%w: %w: %v", gpu.ErrTextureCreationFailed, gpu.ErrPixelFormatUnsupported, desc.Format)
	}
	if desc.Width <= 0 || desc.Height <= 0 ||
		desc.Width > d.maxTextureSize || desc.Height > d.maxTextureSize {
		return nil, fmt.Errorf("%w: invalid size %dx%d (max %d)",
			gpu.ErrTextureCreationFailed, desc.Width, desc.Height, d.maxTextureSize)
	}

	t := newTexture(d, desc)
	d.mu.Lock()
	d.live[t.id] = t
	d.mu.Unlock()
	atomic.AddInt64(&d.createdTextures, 1)
	return t, nil
}

// NewTextureCache returns a cache that uploads host planes into textures.
func (d *Device) NewTextureCache() (gpu.TextureCache, error) {
	return &textureCache{device: d}, nil
}

// NewCommandQueue returns a queue executing its command buffers in commit order.
func (d *Device) NewCommandQueue() (gpu.CommandQueue, error) {
	return &commandQueue{device: d}, nil
}

// DefaultLibrary returns the kernel library of the device.
func (d *Device) DefaultLibrary() (gpu.Library, error) {
	if d.library == nil {
		return nil, gpu.ErrShaderFunctionNotFound
	}
	return d.library, nil
}

// NewComputePipeline compiles fn. Every successful or failed attempt is counted.
func (d *Device) NewComputePipeline(fn gpu.Function) (gpu.ComputePipeline, error) {
	f, ok := fn.(*Function)
	if !ok || f == nil {
		return nil, fmt.Errorf("%w: function does not belong to a cpu library", gpu.ErrKernelCompilationFailed)
	}

	d.mu.Lock()
	d.compilations[f.name]++
	d.mu.Unlock()

	if f.kernel == nil {
		return nil, fmt.Errorf("%w: %s has no body", gpu.ErrKernelCompilationFailed, f.name)
	}

	logger.Debugf("compiled kernel %s", f.name)
	return &computePipeline{function: f}, nil
}

// NewImageScaler returns a resampler for filter.
func (d *Device) NewImageScaler(filter gpu.Filter) (gpu.ImageScaler, error) {
	transformer, err := transformerFor(filter)
	if err != nil {
		return nil, err
	}
	return &imageScaler{device: d, filter: filter, transformer: transformer}, nil
}

// Compilations returns how many times the kernel called name was compiled.
func (d *Device) Compilations(name string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.compilations[name]
}

// LiveTextures returns the number of textures created and not yet released.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.live)
}

// TexturesCreated returns the number of textures created since the device was made.
func (d *Device) TexturesCreated() int {
	return int(atomic.LoadInt64(&d.createdTextures))
}

// LiveTexture looks up a texture that was created and not yet released.
func (d *Device) LiveTexture(id uuid.UUID) (*Texture, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.live[id]
	return t, ok
}

// LeakReport describes every texture still alive, ordered by ID. It is meant
// for diagnostics once all work should have released its textures.
func (d *Device) LeakReport() []string {
	d.mu.Lock()
	ids := make([]uuid.UUID, 0, len(d.live))
	for id := range d.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	report := make([]string, len(ids))
	for i, id := range ids {
		report[i] = d.live[id].String()
	}
	d.mu.Unlock()
	return report
}

func (d *Device) textureReleased(t *Texture) {
	d.mu.Lock()
	delete(d.live, t.id)
	d.mu.Unlock()
}
