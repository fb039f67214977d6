// Package overlay provides the on-screen surface the sampled value is drawn
// on: the layout descriptor, the single-threaded UI dispatcher, the display
// sink, and the surface host abstraction with its Ebiten implementation.
package overlay

import "image/color"

// Descriptor is the layout intent for the overlay surface. It is owned
// exclusively by the lifecycle controller and mutated only on inset changes,
// never concurrently. The surface sizes itself to its content and anchors at
// the top-left corner of the screen.
type Descriptor struct {
	// OffsetY is the vertical offset in pixels, normally the current top
	// inset, keeping the overlay clear of system status elements.
	OffsetY int

	// Floating keeps the surface above all other windows.
	Floating bool

	// ClickThrough makes the surface non-interactive: pointer events pass
	// through to whatever is underneath.
	ClickThrough bool

	// Translucent renders the surface background fully transparent.
	Translucent bool

	// FontSize is the text size in points.
	FontSize float64

	// TextColor is the overlay text color.
	TextColor color.RGBA
}
