package midiin

import (
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/midi/sdk/contracts"

	"github.com/micaww/light-vst/internal/tuya"
)

// ─── Value mapping ─────────────────────────────────────────────────

func TestMidiToHue(t *testing.T) {
	tests := []struct {
		name  string
		value byte
		want  uint16
	}{
		{"minimum", 0, 0},
		{"one", 1, 2},
		{"centre", 64, 181},
		{"maximum", 127, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MidiToHue(tt.value); got != tt.want {
				t.Errorf("MidiToHue(%d) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestMidiToHueAlwaysInRange(t *testing.T) {
	for v := range 128 {
		hue := MidiToHue(byte(v))
		if hue > tuya.HueMax {
			t.Fatalf("MidiToHue(%d) = %d, exceeds %d", v, hue, tuya.HueMax)
		}
	}
}

func TestMidiToHueMonotonic(t *testing.T) {
	prev := MidiToHue(0)
	for v := 1; v < 128; v++ {
		hue := MidiToHue(byte(v))
		if hue < prev {
			t.Fatalf("MidiToHue(%d) = %d < MidiToHue(%d) = %d", v, hue, v-1, prev)
		}
		prev = hue
	}
}

// ─── Listener ──────────────────────────────────────────────────────

// fakeClient is a scriptable ClientMIDI.
type fakeClient struct {
	mu       sync.Mutex
	devices  []contracts.DeviceInfo
	selected int
	capture  chan contracts.MIDI
	stopped  bool
}

func (f *fakeClient) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeClient) ListDevices() ([]contracts.DeviceInfo, error) {
	return f.devices, nil
}

func (f *fakeClient) SelectDevice(id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = id
	return nil
}

func (f *fakeClient) StartCapture(ch chan contracts.MIDI) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.capture = ch
}

func (f *fakeClient) emit(event contracts.MIDI) {
	f.mu.Lock()
	ch := f.capture
	f.mu.Unlock()
	ch <- event
}

// fakeSink records enqueued commands.
type fakeSink struct {
	mu   sync.Mutex
	cmds []tuya.ColorCommand
	full bool
}

func (f *fakeSink) Enqueue(source string, cmd tuya.ColorCommand) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.full {
		return false
	}
	f.cmds = append(f.cmds, cmd)
	return true
}

func (f *fakeSink) commands() []tuya.ColorCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]tuya.ColorCommand, len(f.cmds))
	copy(out, f.cmds)
	return out
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestListenerForwardsModWheel(t *testing.T) {
	client := &fakeClient{}
	sink := &fakeSink{}
	l := NewListener(client, sink, nil)
	l.Start()
	defer l.Stop()

	client.emit(contracts.MIDI{Command: 0xB0, Note: 0x01, Velocity: 127})

	waitFor(t, func() bool { return len(sink.commands()) == 1 }, "mod-wheel event never forwarded")

	cmd := sink.commands()[0]
	want := tuya.ColorCommand{Hue: 360, Saturation: 1000, Brightness: 1000, Immediate: true}
	if cmd != want {
		t.Errorf("forwarded command = %+v, want %+v", cmd, want)
	}
}

func TestListenerIgnoresOtherMessages(t *testing.T) {
	client := &fakeClient{}
	sink := &fakeSink{}
	l := NewListener(client, sink, nil)
	l.Start()
	defer l.Stop()

	ignored := []contracts.MIDI{
		{Command: 0x90, Note: 60, Velocity: 100},  // note on
		{Command: 0x80, Note: 60, Velocity: 0},    // note off
		{Command: 0xB0, Note: 0x07, Velocity: 90}, // CC but volume, not mod wheel
		{Command: 0xB1, Note: 0x01, Velocity: 90}, // mod wheel on channel 2
	}
	for _, event := range ignored {
		client.emit(event)
	}
	client.emit(contracts.MIDI{Command: 0xB0, Note: 0x01, Velocity: 0})

	waitFor(t, func() bool { return len(sink.commands()) == 1 }, "sentinel event never forwarded")

	if got := sink.commands(); len(got) != 1 || got[0].Hue != 0 {
		t.Errorf("forwarded %d commands (%+v), want only the sentinel", len(got), got)
	}
}

func TestListenerSurvivesFullSink(t *testing.T) {
	client := &fakeClient{}
	sink := &fakeSink{full: true}
	l := NewListener(client, sink, nil)
	l.Start()

	client.emit(contracts.MIDI{Command: 0xB0, Note: 0x01, Velocity: 64})

	// Stop must join cleanly even though every enqueue was rejected.
	l.Stop()

	if !client.stopped {
		t.Error("client not stopped on listener Stop")
	}
}

func TestListenerStopIdempotent(t *testing.T) {
	client := &fakeClient{}
	l := NewListener(client, &fakeSink{}, nil)
	l.Start()

	l.Stop()
	l.Stop()
}
