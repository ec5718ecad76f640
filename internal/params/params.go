// Package params exposes host-automatable colour parameters.
//
// Hue, saturation and brightness are normalised floats in [0,1], the way
// plugin hosts automate values; Dispatch converts them to device scale
// and offers the result to the bridge. Setters and Dispatch are safe to
// call from a real-time thread: they only touch atomics and a
// non-blocking enqueue, never I/O or locks.
package params

import (
	"math"
	"sync/atomic"

	"github.com/micaww/light-vst/internal/bridge"
	"github.com/micaww/light-vst/internal/tuya"
)

// Parameter identifiers, stable for host automation mapping.
const (
	IDHue        = "hue"
	IDSaturation = "saturation"
	IDBrightness = "brightness"
	IDImmediate  = "immediate"
)

// FloatParam is a normalised [0,1] parameter with atomic access.
type FloatParam struct {
	name string
	unit string
	bits atomic.Uint64

	// display converts the normalised value for humans, e.g. 0.5 -> 180
	// for hue in degrees.
	display float64
}

// NewFloatParam creates a parameter with the given display scale.
func NewFloatParam(name, unit string, displayScale float64) *FloatParam {
	return &FloatParam{name: name, unit: unit, display: displayScale}
}

// Name returns the human-readable parameter name.
func (p *FloatParam) Name() string { return p.name }

// Unit returns the display unit suffix.
func (p *FloatParam) Unit() string { return p.unit }

// Set stores a normalised value, clamped to [0,1]. Unlike the device
// codec, host automation is clamped rather than rejected: hosts routinely
// overshoot by a rounding error and there is no caller to return an
// error to on the audio thread.
func (p *FloatParam) Set(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	p.bits.Store(math.Float64bits(v))
}

// Value returns the current normalised value.
func (p *FloatParam) Value() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Display returns the value scaled for display, e.g. degrees or percent.
func (p *FloatParam) Display() float64 {
	return p.Value() * p.display
}

// BoolParam is a boolean parameter with atomic access.
type BoolParam struct {
	name string
	v    atomic.Bool
}

// NewBoolParam creates a boolean parameter with an initial value.
func NewBoolParam(name string, initial bool) *BoolParam {
	p := &BoolParam{name: name}
	p.v.Store(initial)
	return p
}

// Name returns the human-readable parameter name.
func (p *BoolParam) Name() string { return p.name }

// Set stores the value.
func (p *BoolParam) Set(v bool) { p.v.Store(v) }

// Value returns the current value.
func (p *BoolParam) Value() bool { return p.v.Load() }

// Enqueuer accepts colour commands without blocking. Satisfied by
// *bridge.Bridge.
type Enqueuer interface {
	Enqueue(source string, cmd tuya.ColorCommand) bool
}

// Registry holds the full automatable parameter set.
type Registry struct {
	Hue        *FloatParam
	Saturation *FloatParam
	Brightness *FloatParam
	Immediate  *BoolParam

	enqueuer Enqueuer

	// Last dispatched colour in device scale. Dispatch runs on one
	// thread (the host's processing callback), so plain fields suffice.
	lastHue, lastSat, lastBri uint16
	dispatched                bool
}

// NewRegistry creates the parameter set wired to the given enqueuer.
func NewRegistry(enqueuer Enqueuer) *Registry {
	return &Registry{
		Hue:        NewFloatParam("Hue", "°", tuya.HueMax),
		Saturation: NewFloatParam("Saturation", "%", 100),
		Brightness: NewFloatParam("Brightness", "%", 100),
		Immediate:  NewBoolParam("Immediate", true),
		enqueuer:   enqueuer,
	}
}

// Snapshot converts the current parameter values to device scale.
func (r *Registry) Snapshot() tuya.ColorCommand {
	return tuya.ColorCommand{
		Hue:        uint16(r.Hue.Value() * tuya.HueMax),
		Saturation: uint16(r.Saturation.Value() * tuya.SaturationMax),
		Brightness: uint16(r.Brightness.Value() * tuya.BrightnessMax),
		Immediate:  r.Immediate.Value(),
	}
}

// Dispatch offers the current colour to the bridge if it changed since
// the last dispatch. Called from the host's processing callback, so it
// must never block; a full bridge queue drops the update.
//
// Returns true if a command was enqueued.
func (r *Registry) Dispatch() bool {
	cmd := r.Snapshot()

	if r.dispatched &&
		cmd.Hue == r.lastHue &&
		cmd.Saturation == r.lastSat &&
		cmd.Brightness == r.lastBri {
		return false
	}

	r.lastHue = cmd.Hue
	r.lastSat = cmd.Saturation
	r.lastBri = cmd.Brightness
	r.dispatched = true

	return r.enqueuer.Enqueue(bridge.SourceParam, cmd)
}
