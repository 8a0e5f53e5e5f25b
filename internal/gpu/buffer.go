package gpu

import "github.com/google/uuid"

// BufferUsage classifies what a buffer resource is bound for, mirroring
// the distinction the command buffer's UseProgram/Draw* opcodes rely on
// (vertex data vs. index data vs. uniform blocks).
type BufferUsage int

const (
	BufferUsageVertex BufferUsage = iota
	BufferUsageIndex
	BufferUsageUniform
)

// IndexType is only meaningful for BufferUsageIndex buffers.
type IndexType int

const (
	IndexTypeNone IndexType = iota
	IndexTypeUint16
	IndexTypeUint32
)

type bufferResource struct {
	Label     string
	Usage     BufferUsage
	IndexType IndexType
	Size      int
}

// BufferHandle is the value-type smart reference returned for a buffer
// resource, analogous to TextureHandle.
type BufferHandle struct {
	ID        ResourceID
	Usage     BufferUsage
	IndexType IndexType
	Size      int
}

// CreateBuffer registers a buffer resource of the given usage and byte
// size. indexType is ignored unless usage is BufferUsageIndex.
func CreateBuffer(p *ResourcePool, name string, usage BufferUsage, size int, indexType IndexType) ResourceID {
	if name == "" {
		name = "buffer-" + uuid.NewString()
	}
	return Create(p, name, bufferResource{Label: name, Usage: usage, IndexType: indexType, Size: size})
}

// GetBuffer resolves id to a BufferHandle.
func GetBuffer(p *ResourcePool, id ResourceID) BufferHandle {
	res := Get[bufferResource](p, id)
	return BufferHandle{ID: id, Usage: res.Usage, IndexType: res.IndexType, Size: res.Size}
}
