package renderer

// ResourceRecycleFunc releases a backend handle. It runs on the render
// thread, usually from the Recycler.
type ResourceRecycleFunc func(gc *GraphicsContext)

// Resource is a GPU object owned by one backend delegate.
type Resource interface {
	// ID is the backend handle, or 0 when nothing is allocated.
	ID() uint64
	// Upload allocates the handle if needed and pushes pending content. It is
	// a no-op when nothing changed since the last call.
	Upload(gc *GraphicsContext)
	// Recycle hands the current handle to the returned closure and resets ID
	// to 0. Calling it again before another Upload returns a no-op.
	Recycle() ResourceRecycleFunc
}

func noopRecycle(*GraphicsContext) {}

// NoopRecycle is returned by delegates that hold no handle.
var NoopRecycle ResourceRecycleFunc = noopRecycle
