package midiin

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/leandrodaf/midi/sdk/contracts"
	"github.com/leandrodaf/midi/sdk/midi"

	"github.com/micaww/light-vst/internal/bridge"
	"github.com/micaww/light-vst/internal/tuya"
)

// MIDI message constants.
const (
	// statusControlChange is the status byte for a control change on
	// channel 1. The channel nibble is part of the match; messages on
	// other channels are ignored.
	statusControlChange = 0xB0

	// controllerModWheel is controller number 1, the modulation wheel.
	controllerModWheel = 0x01

	// midiValueMax is the largest 7-bit controller value.
	midiValueMax = 127

	// eventBufferSize buffers capture events ahead of the worker.
	eventBufferSize = 100
)

// ErrNoDevices is returned when no MIDI input devices are present.
var ErrNoDevices = errors.New("midiin: no MIDI input devices found")

// ErrDeviceNotFound is returned when the configured device name does not
// match any present device.
var ErrDeviceNotFound = errors.New("midiin: configured device not found")

// MidiToHue maps a 7-bit controller value onto the hue circle.
//
// The mapping is linear with integer truncation: 0 maps to 0, 127 maps
// to 360, 64 maps to 181.
func MidiToHue(value byte) uint16 {
	return uint16(value) * tuya.HueMax / midiValueMax
}

// Enqueuer accepts colour commands without blocking. Satisfied by
// *bridge.Bridge.
type Enqueuer interface {
	Enqueue(source string, cmd tuya.ColorCommand) bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Config selects the MIDI input device.
type Config struct {
	// DeviceName selects a device by case-insensitive substring match.
	// Empty selects the first device.
	DeviceName string
}

// Listener captures MIDI events and feeds mod-wheel movement to the
// bridge as immediate colour commands.
type Listener struct {
	client contracts.ClientMIDI
	sink   Enqueuer
	logger Logger

	events chan contracts.MIDI

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// Open creates a MIDI client, selects the configured device and returns
// a listener ready to Start.
func Open(cfg Config, sink Enqueuer, logger Logger) (*Listener, error) {
	client, err := midi.NewMIDIClient()
	if err != nil {
		return nil, fmt.Errorf("midiin: create client: %w", err)
	}

	if err := selectDevice(client, cfg.DeviceName); err != nil {
		_ = client.Stop()
		return nil, err
	}

	return NewListener(client, sink, logger), nil
}

// NewListener wraps an already configured MIDI client.
func NewListener(client contracts.ClientMIDI, sink Enqueuer, logger Logger) *Listener {
	return &Listener{
		client: client,
		sink:   sink,
		logger: logger,
		events: make(chan contracts.MIDI, eventBufferSize),
		done:   make(chan struct{}),
	}
}

// selectDevice picks the device matching name, or the first device when
// name is empty.
func selectDevice(client contracts.ClientMIDI, name string) error {
	devices, err := client.ListDevices()
	if err != nil {
		return fmt.Errorf("midiin: list devices: %w", err)
	}
	if len(devices) == 0 {
		return ErrNoDevices
	}

	if name == "" {
		return client.SelectDevice(0)
	}

	needle := strings.ToLower(name)
	for i, dev := range devices {
		if strings.Contains(strings.ToLower(dev.Name), needle) {
			return client.SelectDevice(i)
		}
	}
	return fmt.Errorf("%w: %q", ErrDeviceNotFound, name)
}

// Start begins capture and launches the event worker.
func (l *Listener) Start() {
	l.client.StartCapture(l.events)
	l.wg.Add(1)
	go l.worker()
	l.logInfo("MIDI capture started")
}

// worker drains capture events and forwards mod-wheel changes.
func (l *Listener) worker() {
	defer l.wg.Done()

	for {
		select {
		case <-l.done:
			return
		case event := <-l.events:
			l.handle(event)
		}
	}
}

// handle forwards one event if it is a channel-1 mod-wheel change.
func (l *Listener) handle(event contracts.MIDI) {
	if event.Command != statusControlChange || event.Note != controllerModWheel {
		return
	}

	cmd := tuya.ColorCommand{
		Hue:        MidiToHue(event.Velocity),
		Saturation: tuya.SaturationMax,
		Brightness: tuya.BrightnessMax,
		Immediate:  true,
	}

	if !l.sink.Enqueue(bridge.SourceMIDI, cmd) {
		l.logDebug("bridge full, mod-wheel value dropped", "value", event.Velocity)
		return
	}
	l.logDebug("mod-wheel colour queued", "value", event.Velocity, "hue", cmd.Hue)
}

// Stop halts capture and waits for the worker to exit. Idempotent.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		l.wg.Wait()
		if err := l.client.Stop(); err != nil {
			l.logWarn("MIDI client stop failed", "error", err)
		}
		l.logInfo("MIDI capture stopped")
	})
}

func (l *Listener) logDebug(msg string, kv ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, kv...)
	}
}

func (l *Listener) logInfo(msg string, kv ...any) {
	if l.logger != nil {
		l.logger.Info(msg, kv...)
	}
}

func (l *Listener) logWarn(msg string, kv ...any) {
	if l.logger != nil {
		l.logger.Warn(msg, kv...)
	}
}
