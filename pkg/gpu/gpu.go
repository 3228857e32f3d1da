// Package gpu describes the GPU capabilities the processing pipeline depends on:
// devices, textures, compiled compute kernels, command submission and image
// resampling. Backends implement these interfaces; package cpu provides a
// portable one.
package gpu

import (
	"github.com/google/uuid"
)

// Usage flags of a texture.
type Usage uint8

const (
	UsageShaderRead Usage = 1 << iota
	UsageShaderWrite

	UsageShaderReadWrite = UsageShaderRead | UsageShaderWrite
)

// Has reports whether every flag of o is set in u.
func (u Usage) Has(o Usage) bool {
	return u&o == o
}

// TextureDescriptor describes a 2D texture to allocate.
type TextureDescriptor struct {
	Format PixelFormat
	Width  int
	Height int
	Usage  Usage
}

// Texture is a GPU resident 2D surface. Its dimensions are fixed at creation.
type Texture interface {
	ID() uuid.UUID
	Width() int
	Height() int
	Format() PixelFormat
	Usage() Usage
	// Replace uploads src, laid out with bytesPerRow, into region.
	Replace(region Region, src []byte, bytesPerRow int) error
	// Bytes copies region into dst, laid out with bytesPerRow.
	Bytes(dst []byte, bytesPerRow int, region Region) error
	// Release frees the texture. Further use is an error.
	Release()
}

// HostPlane is host memory handed to a TextureCache.
type HostPlane struct {
	Data          []byte
	Width, Height int
	BytesPerRow   int
}

// TextureCache creates textures backed by host planes. Flush releases every texture
// the cache created that has not been released yet.
type TextureCache interface {
	Texture(plane HostPlane, format PixelFormat) (Texture, error)
	Flush()
}

// Function is a named entry point of a Library.
type Function interface {
	Name() string
}

// Library is the bundled set of compute programs of a device.
type Library interface {
	Function(name string) (Function, error)
	FunctionNames() []string
}

// ComputePipeline is a compiled compute kernel.
type ComputePipeline interface {
	Name() string
}

// ComputeEncoder records a compute pass into a command buffer.
type ComputeEncoder interface {
	SetPipeline(p ComputePipeline)
	SetTexture(t Texture, index int)
	SetBytes(b []byte, index int)
	// Dispatch runs groups threadgroups of groupSize threads each.
	Dispatch(groups, groupSize Size)
	EndEncoding()
}

// CommandBuffer collects encoded work. Commit submits it, after which it runs to
// completion and cannot be cancelled.
type CommandBuffer interface {
	ComputeEncoder() (ComputeEncoder, error)
	Commit()
	// WaitUntilCompleted blocks until the committed work finished and returns the
	// first execution error.
	WaitUntilCompleted() error
}

// CommandQueue hands out command buffers executed in submission order.
type CommandQueue interface {
	CommandBuffer() (CommandBuffer, error)
}

// ImageScaler resamples a source texture into a destination texture.
type ImageScaler interface {
	Encode(cb CommandBuffer, src, dst Texture, transform ScaleTransform) error
}

// Device is a GPU backend.
type Device interface {
	Name() string
	NewTexture(desc TextureDescriptor) (Texture, error)
	NewTextureCache() (TextureCache, error)
	NewCommandQueue() (CommandQueue, error)
	// DefaultLibrary returns the bundled kernels of the device.
	DefaultLibrary() (Library, error)
	NewComputePipeline(fn Function) (ComputePipeline, error)
	NewImageScaler(filter Filter) (ImageScaler, error)
}
