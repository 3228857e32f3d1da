package gpu

import "errors"

var (
	ErrDeviceUnavailable          = errors.New("gpu device unavailable")
	ErrShaderFunctionNotFound     = errors.New("shader function not found")
	ErrKernelCompilationFailed    = errors.New("kernel compilation failed")
	ErrTextureCacheCreationFailed = errors.New("failed to create texture cache")
	ErrTextureCreationFailed      = errors.New("failed to create texture")
	ErrEncoderSetup               = errors.New("error setting up encoder")
	ErrCommandQueueSetup          = errors.New("error setting up command queue")
	ErrReadbackFailed             = errors.New("readback failed")
	ErrPixelFormatUnsupported     = errors.New("texture pixel format unsupported")
	ErrTextureReleased            = errors.New("texture already released")
	ErrRegionOutOfBounds          = errors.New("region out of texture bounds")
)
