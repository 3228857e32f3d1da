package cpu

import (
	"fmt"
	"image"
	"sort"
	"sync"

	"github.com/pion/mediakit/pkg/gpu"
)

// Kernel names of the bundled library.
const (
	KernelYCbCrToRGB = "ycbcrToRgb"
	KernelI420ToRGB  = "i420ToRgb"
	KernelRGBToYUV   = "rgbToYuv"
	KernelRGBToI420  = "rgbToI420"
	KernelFlip       = "flip"
)

// KernelFunc is the body of a compute kernel, invoked once per thread with its
// position in the grid. Threads of partial edge groups are invoked too, so a
// kernel must check its writes against the destination size.
type KernelFunc func(args *Arguments, gid image.Point)

// Function is a kernel entry point of a Library.
// The first inputs textures are read, the following outputs textures are
// written.
type Function struct {
	name    string
	kernel  KernelFunc
	inputs  int
	outputs int
}

// Name returns the kernel name.
func (f *Function) Name() string {
	return f.name
}

func (f *Function) textures() int {
	return f.inputs + f.outputs
}

// usage returns what the kernel does with the texture bound at index.
func (f *Function) usage(index int) gpu.Usage {
	if index < f.inputs {
		return gpu.UsageShaderRead
	}
	return gpu.UsageShaderWrite
}

// Library is a named set of kernels.
type Library struct {
	mu        sync.RWMutex
	functions map[string]*Function
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{functions: make(map[string]*Function)}
}

// DefaultLibrary returns a library holding the bundled color conversion and flip
// kernels.
func DefaultLibrary() *Library {
	lib := NewLibrary()
	lib.Register(KernelYCbCrToRGB, ycbcrToRGBKernel, 2, 1)
	lib.Register(KernelI420ToRGB, i420ToRGBKernel, 3, 1)
	lib.Register(KernelRGBToYUV, rgbToYUVKernel, 1, 2)
	lib.Register(KernelRGBToI420, rgbToI420Kernel, 1, 3)
	lib.Register(KernelFlip, flipKernel, 1, 1)
	return lib
}

// Register adds or replaces a kernel reading inputs textures and writing the
// outputs textures bound after them. A nil kernel registers a function that
// fails to compile.
func (l *Library) Register(name string, kernel KernelFunc, inputs, outputs int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.functions[name] = &Function{name: name, kernel: kernel, inputs: inputs, outputs: outputs}
}

// Remove drops a kernel.
func (l *Library) Remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.functions, name)
}

// Function looks up a kernel by name.
func (l *Library) Function(name string) (gpu.Function, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	f, ok := l.functions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", gpu.ErrShaderFunctionNotFound, name)
	}
	return f, nil
}

// FunctionNames returns the sorted kernel names.
func (l *Library) FunctionNames() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.functions))
	for name := range l.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type computePipeline struct {
	function *Function
}

func (p *computePipeline) Name() string {
	return p.function.name
}

// Arguments are the resources bound to a dispatch.
type Arguments struct {
	textures map[int]*Texture
	bytes    map[int][]byte
}

// Texture returns the texture bound at index, nil if none.
func (a *Arguments) Texture(index int) *Texture {
	return a.textures[index]
}

// Bytes returns the constant data bound at index, nil if none.
func (a *Arguments) Bytes(index int) []byte {
	return a.bytes[index]
}

// Flag reads a boolean constant, false when unbound.
func (a *Arguments) Flag(index int) bool {
	b := a.bytes[index]
	return len(b) > 0 && b[0] != 0
}
