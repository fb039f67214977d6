package overlay

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	etext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gomonobold"
)

// ErrSurfaceClosed is returned by the game loop when the surface is shut down
// via Close.
var ErrSurfaceClosed = errors.New("overlay surface closed")

// surfacePadding is the pixel margin around the rendered text.
const surfacePadding = 6.0

// defaultFontSize is used when the descriptor carries no font size.
const defaultFontSize = 16.0

// EbitenSurface is the production SurfaceHost: an undecorated, floating,
// click-through window with a transparent background, sized to its text
// content and anchored at the top-left of the screen.
//
// Ebiten cannot destroy and recreate its window, so the window is created
// lazily on the first Mount and kept for the surface's lifetime; Unmount maps
// to drawing nothing, which with a transparent background and pointer
// passthrough leaves no visible or interactive trace.
type EbitenSurface struct {
	title      string
	fontSource *etext.GoTextFaceSource

	ctx    context.Context
	cancel context.CancelFunc

	runOnce   sync.Once
	hintsOnce sync.Once
	onRunErr  func(error)

	mu      sync.RWMutex
	mounted bool
	text    string
	desc    Descriptor
}

// surfaceGame adapts an EbitenSurface to the ebiten.Game interface.
type surfaceGame struct {
	s *EbitenSurface
}

// NewEbitenSurface creates a surface host titled title. The window itself is
// not created until the first Mount.
func NewEbitenSurface(title string) *EbitenSurface {
	fontSource, err := etext.NewGoTextFaceSource(bytes.NewReader(gomonobold.TTF))
	if err != nil {
		// The font is embedded in the binary; this cannot fail at runtime.
		panic("failed to load embedded font: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &EbitenSurface{
		title:      title,
		fontSource: fontSource,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// SetRunErrorHandler installs a callback for a failed window loop. Must be
// called before the first Mount.
func (s *EbitenSurface) SetRunErrorHandler(fn func(error)) {
	s.onRunErr = fn
}

// Mount makes the overlay visible with the given layout. The first call
// starts the window loop; subsequent calls while mounted are no-ops.
func (s *EbitenSurface) Mount(d Descriptor) {
	s.mu.Lock()
	s.desc = d
	if s.mounted {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	s.mu.Unlock()

	ebiten.SetWindowPosition(0, d.OffsetY)

	s.runOnce.Do(func() {
		go s.runWindowLoop(d)
	})
}

// Update applies a changed layout to a mounted overlay. Unmounted surfaces
// only record the descriptor.
func (s *EbitenSurface) Update(d Descriptor) {
	s.mu.Lock()
	s.desc = d
	mounted := s.mounted
	s.mu.Unlock()

	if mounted {
		ebiten.SetWindowPosition(0, d.OffsetY)
	}
}

// Unmount removes the overlay from view. Safe to call when not mounted.
func (s *EbitenSurface) Unmount() {
	s.mu.Lock()
	s.mounted = false
	s.mu.Unlock()
}

// TopInset reports the vertical offset reserved by system status elements,
// queried from the window system. Returns 0 where that is not available.
func (s *EbitenSurface) TopInset() int {
	return topInset()
}

// RenderText replaces the overlay text and resizes the window to fit it.
// Invoked from the UI dispatcher via the display sink.
func (s *EbitenSurface) RenderText(text string) {
	s.mu.Lock()
	s.text = text
	size := s.desc.FontSize
	s.mu.Unlock()

	w, h := s.measure(text, size)
	ebiten.SetWindowSize(w, h)
}

// RenderPosition moves the overlay to the given vertical offset.
func (s *EbitenSurface) RenderPosition(offsetY int) {
	s.mu.Lock()
	s.desc.OffsetY = offsetY
	mounted := s.mounted
	s.mu.Unlock()

	if mounted {
		ebiten.SetWindowPosition(0, offsetY)
	}
}

// Close terminates the window loop. Safe to call multiple times and before
// the first Mount.
func (s *EbitenSurface) Close() {
	s.cancel()
}

// runWindowLoop configures and runs the Ebiten window. It blocks until Close
// or a window-system failure.
func (s *EbitenSurface) runWindowLoop(d Descriptor) {
	ebiten.SetWindowDecorated(false)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	ebiten.SetWindowFloating(d.Floating)
	ebiten.SetWindowMousePassthrough(d.ClickThrough)
	ebiten.SetWindowTitle(s.title)
	ebiten.SetWindowPosition(0, d.OffsetY)

	w, h := s.measure(" ", d.FontSize)
	ebiten.SetWindowSize(w, h)

	opts := &ebiten.RunGameOptions{
		ScreenTransparent: d.Translucent,
		SkipTaskbar:       true,
		X11ClassName:      "fpsmeter",
		X11InstanceName:   "fpsmeter",
	}

	err := ebiten.RunGameWithOptions(&surfaceGame{s: s}, opts)
	if err != nil && err != ErrSurfaceClosed && s.onRunErr != nil {
		s.onRunErr(err)
	}
}

// measure returns the window size fitting text at the given font size.
func (s *EbitenSurface) measure(text string, size float64) (int, int) {
	if size <= 0 {
		size = defaultFontSize
	}
	face := &etext.GoTextFace{Source: s.fontSource, Size: size}
	w, h := etext.Measure(text, face, 0)

	width := int(w + 2*surfacePadding)
	height := int(h + 2*surfacePadding)
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return width, height
}

// Update implements ebiten.Game. It only checks for shutdown and applies
// window-manager hints once the window exists.
func (g *surfaceGame) Update() error {
	select {
	case <-g.s.ctx.Done():
		return ErrSurfaceClosed
	default:
	}

	g.s.hintsOnce.Do(func() {
		g.s.mu.RLock()
		floating := g.s.desc.Floating
		g.s.mu.RUnlock()
		// Best effort: non-X11 environments silently skip these.
		_ = applyOverlayHints(floating, true, true)
	})

	return nil
}

// Draw implements ebiten.Game. An unmounted surface draws nothing, which with
// a transparent screen leaves the overlay invisible.
func (g *surfaceGame) Draw(screen *ebiten.Image) {
	g.s.mu.RLock()
	mounted := g.s.mounted
	textStr := g.s.text
	size := g.s.desc.FontSize
	clr := g.s.desc.TextColor
	g.s.mu.RUnlock()

	if !mounted || textStr == "" {
		return
	}
	if size <= 0 {
		size = defaultFontSize
	}
	if clr == (color.RGBA{}) {
		clr = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}

	face := &etext.GoTextFace{Source: g.s.fontSource, Size: size}
	op := &etext.DrawOptions{}
	op.GeoM.Translate(surfacePadding, surfacePadding)
	op.ColorScale.ScaleWithColor(clr)
	etext.Draw(screen, textStr, face, op)
}

// Layout implements ebiten.Game: the logical screen is sized to the text.
func (g *surfaceGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.s.mu.RLock()
	textStr := g.s.text
	size := g.s.desc.FontSize
	g.s.mu.RUnlock()

	if textStr == "" {
		textStr = " "
	}
	return g.s.measure(textStr, size)
}
