package cpu

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/mediakit/pkg/gpu"
)

// textureCache uploads host planes into device textures. There is no shared
// memory between host and device here, so every plane is copied.
type textureCache struct {
	device *Device

	mu       sync.Mutex
	textures map[uuid.UUID]*Texture
}

func (c *textureCache) Texture(plane gpu.HostPlane, format gpu.PixelFormat) (gpu.Texture, error) {
	if plane.BytesPerRow < format.RowBytes(plane.Width) {
		return nil, fmt.Errorf("%w: bytes per row (%d) less than row length (%d)",
			gpu.ErrTextureCreationFailed, plane.BytesPerRow, format.RowBytes(plane.Width))
	}

	t, err := c.device.newTexture(gpu.TextureDescriptor{
		Format: format,
		Width:  plane.Width,
		Height: plane.Height,
		Usage:  gpu.UsageShaderRead,
	})
	if err != nil {
		return nil, err
	}

	if err := t.Replace(gpu.RegionOf(t), plane.Data, plane.BytesPerRow); err != nil {
		t.Release()
		return nil, fmt.Errorf("%w: %w", gpu.ErrTextureCreationFailed, err)
	}

	c.mu.Lock()
	if c.textures == nil {
		c.textures = make(map[uuid.UUID]*Texture)
	}
	for id, tracked := range c.textures {
		if tracked.isReleased() {
			delete(c.textures, id)
		}
	}
	c.textures[t.id] = t
	c.mu.Unlock()
	return t, nil
}

func (c *textureCache) Flush() {
	c.mu.Lock()
	textures := c.textures
	c.textures = nil
	c.mu.Unlock()

	for _, t := range textures {
		t.Release()
	}
}
