//go:build !linux

package overlay

// applyOverlayHints is a no-op on platforms without X11 EWMH support.
func applyOverlayHints(above, skipTaskbar, skipPager bool) error {
	return nil
}

// topInset returns 0 where the window system exposes no work-area query.
func topInset() int {
	return 0
}

// CloseHints is a no-op on platforms without X11 EWMH support.
func CloseHints() {}
