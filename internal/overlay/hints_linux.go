//go:build linux

package overlay

import (
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// hintApplier sets X11 EWMH hints on the overlay window and answers work-area
// queries. It caches the X11 connection and interned atoms.
type hintApplier struct {
	mu       sync.Mutex
	conn     *xgb.Conn
	atoms    map[string]xproto.Atom
	initDone bool
}

var globalHintApplier = &hintApplier{
	atoms: make(map[string]xproto.Atom),
}

// applyOverlayHints sets _NET_WM_STATE_ABOVE, _NET_WM_STATE_SKIP_TASKBAR and
// _NET_WM_STATE_SKIP_PAGER on the overlay window. It must run after the
// window exists. On non-X11 environments it silently does nothing.
func applyOverlayHints(above, skipTaskbar, skipPager bool) error {
	return globalHintApplier.apply(above, skipTaskbar, skipPager)
}

// topInset reports the top edge of the EWMH work area, i.e. the pixels
// reserved by panels and status bars at the top of the screen. Returns 0 when
// the work area cannot be queried.
func topInset() int {
	return globalHintApplier.workAreaTop()
}

func (h *hintApplier) apply(above, skipTaskbar, skipPager bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureInit(); err != nil {
		return nil // no X11, nothing to hint
	}

	window, err := h.activeWindow()
	if err != nil || window == xproto.WindowNone {
		return nil
	}

	var want []string
	if above {
		want = append(want, "_NET_WM_STATE_ABOVE")
	}
	if skipTaskbar {
		want = append(want, "_NET_WM_STATE_SKIP_TASKBAR")
	}
	if skipPager {
		want = append(want, "_NET_WM_STATE_SKIP_PAGER")
	}
	if len(want) == 0 {
		return nil
	}

	stateAtom, err := h.atom("_NET_WM_STATE")
	if err != nil {
		return nil
	}
	atomAtom, err := h.atom("ATOM")
	if err != nil {
		return nil
	}

	current, err := h.windowState(window, stateAtom, atomAtom)
	if err != nil {
		current = nil
	}

	set := make(map[xproto.Atom]bool, len(current)+len(want))
	for _, a := range current {
		set[a] = true
	}
	for _, name := range want {
		if a, err := h.atom(name); err == nil {
			set[a] = true
		}
	}

	final := make([]xproto.Atom, 0, len(set))
	for a := range set {
		final = append(final, a)
	}

	data := make([]byte, len(final)*4)
	for i, a := range final {
		xgb.Put32(data[i*4:], uint32(a))
	}
	xproto.ChangeProperty(h.conn, xproto.PropModeReplace, window,
		stateAtom, atomAtom, 32, uint32(len(final)), data)

	return nil
}

// workAreaTop reads the y origin of _NET_WORKAREA on the root window.
func (h *hintApplier) workAreaTop() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.ensureInit(); err != nil {
		return 0
	}

	setup := xproto.Setup(h.conn)
	if len(setup.Roots) == 0 {
		return 0
	}
	root := setup.Roots[0].Root

	workAtom, err := h.atom("_NET_WORKAREA")
	if err != nil {
		return 0
	}

	// _NET_WORKAREA is an array of CARDINAL x,y,width,height per desktop;
	// the y of the first desktop is the top inset.
	reply, err := xproto.GetProperty(h.conn, false, root, workAtom,
		xproto.AtomCardinal, 0, 4).Reply()
	if err != nil || reply == nil || len(reply.Value) < 8 {
		return 0
	}
	return int(xgb.Get32(reply.Value[4:]))
}

func (h *hintApplier) ensureInit() error {
	if h.initDone {
		return nil
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return err
	}
	h.conn = conn
	h.initDone = true
	return nil
}

func (h *hintApplier) atom(name string) (xproto.Atom, error) {
	if atom, ok := h.atoms[name]; ok {
		return atom, nil
	}
	reply, err := xproto.InternAtom(h.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, err
	}
	h.atoms[name] = reply.Atom
	return reply.Atom, nil
}

// activeWindow returns the focused window, which right after window creation
// is the overlay itself.
func (h *hintApplier) activeWindow() (xproto.Window, error) {
	setup := xproto.Setup(h.conn)
	if len(setup.Roots) == 0 {
		return xproto.WindowNone, nil
	}
	root := setup.Roots[0].Root

	activeAtom, err := h.atom("_NET_ACTIVE_WINDOW")
	if err == nil {
		reply, err := xproto.GetProperty(h.conn, false, root, activeAtom,
			xproto.AtomWindow, 0, 1).Reply()
		if err == nil && reply != nil && len(reply.Value) >= 4 {
			return xproto.Window(xgb.Get32(reply.Value)), nil
		}
	}

	focusReply, err := xproto.GetInputFocus(h.conn).Reply()
	if err != nil {
		return xproto.WindowNone, err
	}
	return focusReply.Focus, nil
}

func (h *hintApplier) windowState(window xproto.Window, stateAtom, atomAtom xproto.Atom) ([]xproto.Atom, error) {
	reply, err := xproto.GetProperty(h.conn, false, window, stateAtom,
		atomAtom, 0, 256).Reply()
	if err != nil || reply == nil {
		return nil, err
	}

	atoms := make([]xproto.Atom, 0, len(reply.Value)/4)
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		atoms = append(atoms, xproto.Atom(xgb.Get32(reply.Value[i:])))
	}
	return atoms, nil
}

// CloseHints releases the cached X11 connection.
func CloseHints() {
	globalHintApplier.mu.Lock()
	defer globalHintApplier.mu.Unlock()

	if globalHintApplier.conn != nil {
		globalHintApplier.conn.Close()
		globalHintApplier.conn = nil
	}
	globalHintApplier.initDone = false
	globalHintApplier.atoms = make(map[string]xproto.Atom)
}
