package overlay

import (
	"sync"
	"testing"
)

// recordingRenderer captures rendered text and positions.
type recordingRenderer struct {
	mu        sync.Mutex
	texts     []string
	positions []int
}

func (r *recordingRenderer) RenderText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

func (r *recordingRenderer) RenderPosition(offsetY int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, offsetY)
}

func (r *recordingRenderer) lastText() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return "", false
	}
	return r.texts[len(r.texts)-1], true
}

func TestSinkFormatsWithTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		value    int
		want     string
	}{
		{
			name:     "default template",
			template: "",
			value:    60,
			want:     "FPS: 60",
		},
		{
			name:     "custom template",
			template: "%d fps",
			value:    144,
			want:     "144 fps",
		},
		{
			name:     "sentinel value",
			template: "",
			value:    0,
			want:     "FPS: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher()
			defer d.Close()
			r := &recordingRenderer{}
			sink := NewSink(d, r, tt.template)

			sink.SetText(tt.value)
			d.Sync()

			got, ok := r.lastText()
			if !ok {
				t.Fatal("nothing rendered")
			}
			if got != tt.want {
				t.Errorf("rendered %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSinkSetTemplateAppliesToNextValue(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()
	r := &recordingRenderer{}
	sink := NewSink(d, r, "")

	sink.SetText(30)
	sink.SetTemplate("frames/s: %d")
	sink.SetText(31)
	d.Sync()

	r.mu.Lock()
	defer r.mu.Unlock()
	want := []string{"FPS: 30", "frames/s: 31"}
	if len(r.texts) != len(want) {
		t.Fatalf("rendered %v, want %v", r.texts, want)
	}
	for i := range want {
		if r.texts[i] != want[i] {
			t.Errorf("texts[%d] = %q, want %q", i, r.texts[i], want[i])
		}
	}
}

func TestSinkSetTemplateEmptyRestoresDefault(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()
	r := &recordingRenderer{}
	sink := NewSink(d, r, "custom %d")

	sink.SetTemplate("")
	sink.SetText(5)
	d.Sync()

	got, _ := r.lastText()
	if got != "FPS: 5" {
		t.Errorf("rendered %q, want %q", got, "FPS: 5")
	}
}

func TestSinkSetPosition(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()
	r := &recordingRenderer{}
	sink := NewSink(d, r, "")

	sink.SetPosition(64)
	d.Sync()

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.positions) != 1 || r.positions[0] != 64 {
		t.Errorf("positions = %v, want [64]", r.positions)
	}
}

func TestSinkUpdateHook(t *testing.T) {
	d := NewDispatcher()
	defer d.Close()
	r := &recordingRenderer{}
	sink := NewSink(d, r, "")

	updates := 0
	sink.SetUpdateHook(func() { updates++ })

	sink.SetText(1)
	sink.SetText(2)
	sink.SetPosition(10)
	d.Sync()

	done := make(chan int, 1)
	d.Dispatch(func() { done <- updates })
	if got := <-done; got != 3 {
		t.Errorf("update hook fired %d times, want 3", got)
	}
}
