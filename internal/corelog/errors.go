package corelog

import "errors"

// Error taxonomy from the render core's error-handling design:
//   - ErrProgrammer and ErrResourceNotFound mark programmer errors,
//     wrapped in via fmt.Errorf("%w: ...", ...): gpu.Get/Release and
//     Fence.Deref panic with them, while CommandBuffer.Execute and
//     Store.DestroyEntity return them as errors.
//   - ErrCacheMiss is not returned anywhere in this module: the render
//     caches create a fresh entry on a miss instead of reporting one.
//   - ErrConfiguration is returned to the host. ErrFenceTimeout is not
//     returned anywhere in this module; Fence.Wait reports a timeout by
//     returning false.
var (
	ErrProgrammer       = errors.New("programmer error")
	ErrCacheMiss        = errors.New("no cached resource available")
	ErrFenceTimeout     = errors.New("fence wait exceeded deadline")
	ErrResourceNotFound = errors.New("resource not found in pool")
	ErrConfiguration    = errors.New("unsupported configuration")
)
