// Package midiin turns MIDI mod-wheel movement into colour commands.
//
// Only control-change messages for controller 1 (the mod wheel) on
// channel 1 are acted on; every other message is ignored. The 7-bit
// controller value maps linearly onto the hue circle, with saturation
// and brightness pinned to full so the wheel sweeps through pure hues.
//
// The listener never blocks the MIDI callback path: events land on a
// buffered channel and commands are offered to the bridge, which drops
// rather than waits when it is saturated.
package midiin
