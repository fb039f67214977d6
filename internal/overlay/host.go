package overlay

// SurfaceHost places the overlay on screen. Mount and Unmount are idempotent:
// mounting an already-mounted surface and unmounting an absent one are no-ops,
// which lets the lifecycle controller's begin/end procedures stay idempotent.
//
// Hosts are invoked from the UI dispatcher goroutine only.
type SurfaceHost interface {
	// Mount makes the overlay visible with the given layout.
	Mount(d Descriptor)
	// Update applies a changed layout to a mounted overlay.
	Update(d Descriptor)
	// Unmount removes the overlay from screen.
	Unmount()
	// TopInset reports the vertical pixel offset reserved by system status
	// elements at the top of the screen.
	TopInset() int
}

// Renderer is the mutable drawing target the display sink feeds. A host that
// draws text implements both SurfaceHost and Renderer.
type Renderer interface {
	// RenderText replaces the overlay text.
	RenderText(s string)
	// RenderPosition moves the overlay to the given vertical offset.
	RenderPosition(offsetY int)
}

// NopHost is a SurfaceHost and Renderer that does nothing. Used in headless
// mode, where sampling runs without an on-screen surface.
type NopHost struct{}

func (NopHost) Mount(Descriptor)   {}
func (NopHost) Update(Descriptor)  {}
func (NopHost) Unmount()           {}
func (NopHost) TopInset() int      { return 0 }
func (NopHost) RenderText(string)  {}
func (NopHost) RenderPosition(int) {}
