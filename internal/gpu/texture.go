package gpu

import (
	"image"

	"github.com/google/uuid"
)

// TextureFormat enumerates the pixel layouts the render core knows how
// to upload. Decoding the source pixels is the host's job: this package
// only needs the shape of an image.Image to copy rows into a buffer.
type TextureFormat int

const (
	TextureFormatRGBA8 TextureFormat = iota
	TextureFormatRGBA16F
	TextureFormatDepth32F
	TextureFormatR8
)

// textureResource is the T stored in the ResourcePool for a texture id.
type textureResource struct {
	Label  string
	Format TextureFormat
	Width  int
	Height int

	// Source, if non-nil, is the decoded image this texture was created
	// from. The render core never decodes image bytes itself; it only
	// ever consumes the shape of image.Image, leaving codec selection
	// (PNG, DDS, ...) to the host via golang.org/x/image or stdlib image
	// decoders registered by the caller.
	Source image.Image
}

// TextureHandle is the value-type reference callers hold to a texture.
// GetTexture bumps the slot's refcount through Get; copying a handle does
// not, and ResourcePool.Release destroys the texture regardless of the
// refcount.
type TextureHandle struct {
	ID     ResourceID
	Format TextureFormat
	Width  int
	Height int
}

// CreateTexture registers a texture resource. If name is empty, a
// unique debug label is generated so every resource still carries one,
// per spec's "optional debug label".
func CreateTexture(p *ResourcePool, name string, format TextureFormat, width, height int, src image.Image) ResourceID {
	if name == "" {
		name = "texture-" + uuid.NewString()
	}
	return Create(p, name, textureResource{
		Label:  name,
		Format: format,
		Width:  width,
		Height: height,
		Source: src,
	})
}

// GetTexture resolves id to a TextureHandle.
func GetTexture(p *ResourcePool, id ResourceID) TextureHandle {
	res := Get[textureResource](p, id)
	return TextureHandle{ID: id, Format: res.Format, Width: res.Width, Height: res.Height}
}
