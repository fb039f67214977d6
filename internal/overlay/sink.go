package overlay

import (
	"fmt"
	"sync"
)

// DefaultTemplate formats the sampled value when no template is configured.
const DefaultTemplate = "FPS: %d"

// Sink is the display sink: it formats sampled values and marshals every
// surface mutation onto the UI dispatcher, so callers may invoke it from any
// goroutine.
type Sink struct {
	dispatcher *Dispatcher
	renderer   Renderer

	mu       sync.RWMutex
	template string
	updates  func() // optional per-update hook, used for metrics
}

// NewSink creates a sink that renders through renderer on the given
// dispatcher. An empty template falls back to DefaultTemplate.
func NewSink(dispatcher *Dispatcher, renderer Renderer, template string) *Sink {
	if template == "" {
		template = DefaultTemplate
	}
	return &Sink{
		dispatcher: dispatcher,
		renderer:   renderer,
		template:   template,
	}
}

// SetUpdateHook installs a hook invoked on the UI goroutine after each
// rendered mutation. Must be set before the sink is used.
func (s *Sink) SetUpdateHook(hook func()) {
	s.updates = hook
}

// SetTemplate swaps the text template, e.g. on a config hot reload. The next
// published value renders with the new template.
func (s *Sink) SetTemplate(template string) {
	if template == "" {
		template = DefaultTemplate
	}
	s.mu.Lock()
	s.template = template
	s.mu.Unlock()
}

// SetText formats value with the current template and renders it on the UI
// goroutine.
func (s *Sink) SetText(value int) {
	s.mu.RLock()
	text := fmt.Sprintf(s.template, value)
	s.mu.RUnlock()

	s.dispatcher.Dispatch(func() {
		s.renderer.RenderText(text)
		if s.updates != nil {
			s.updates()
		}
	})
}

// SetPosition moves the overlay to the given vertical offset on the UI
// goroutine.
func (s *Sink) SetPosition(offsetY int) {
	s.dispatcher.Dispatch(func() {
		s.renderer.RenderPosition(offsetY)
		if s.updates != nil {
			s.updates()
		}
	})
}
