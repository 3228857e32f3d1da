package processor

import (
	"github.com/pion/logging"
	"github.com/pion/mediakit/pkg/gpu"
)

const (
	defaultThreadgroupWidth  = 8
	defaultThreadgroupHeight = 8
	defaultQueueDepth        = 16
)

type config struct {
	loggerFactory logging.LoggerFactory
	groupSize     gpu.Size
	filter        gpu.Filter
	queueDepth    int
	precompile    bool
}

func defaultConfig() config {
	return config{
		groupSize:  gpu.Size{Width: defaultThreadgroupWidth, Height: defaultThreadgroupHeight},
		filter:     gpu.FilterLanczos,
		queueDepth: defaultQueueDepth,
	}
}

// Option configures a Processor.
type Option func(*config)

// WithLoggerFactory sets the factory the processor creates its logger from.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(c *config) {
		c.loggerFactory = f
	}
}

// WithThreadgroupSize sets the compute group size of every dispatch. Non positive
// values keep the default of 8x8.
func WithThreadgroupSize(width, height int) Option {
	return func(c *config) {
		if width > 0 && height > 0 {
			c.groupSize = gpu.Size{Width: width, Height: height}
		}
	}
}

// WithScaleFilter sets the resampling filter used by Resize.
func WithScaleFilter(f gpu.Filter) Option {
	return func(c *config) {
		c.filter = f
	}
}

// WithQueueDepth sets how many operations may wait for the worker before callers
// block.
func WithQueueDepth(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.queueDepth = n
		}
	}
}

// WithPrecompiledKernels compiles every kernel during New instead of on first use.
func WithPrecompiledKernels() Option {
	return func(c *config) {
		c.precompile = true
	}
}
