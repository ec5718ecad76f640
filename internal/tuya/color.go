package tuya

import (
	"fmt"
	"strconv"
)

// Colour value ranges used by the device protocol.
const (
	// HueMax is the maximum hue in degrees.
	HueMax = 360

	// SaturationMax is the maximum saturation (device scale, not percent).
	SaturationMax = 1000

	// BrightnessMax is the maximum brightness (device scale, not percent).
	BrightnessMax = 1000

	// EncodedColorLen is the exact length of an encoded colour string:
	// 1 flag digit + 3x4 hex digits (H, S, V) + 8 reserved zeros.
	EncodedColorLen = 21

	// hexDigitsPerComponent is the zero-padded width of each HSV component.
	hexDigitsPerComponent = 4

	// reservedSuffix is the trailing reserved field required by the device
	// firmware. Always zeros.
	reservedSuffix = "00000000"
)

// ColorCommand is a single requested colour change.
//
// It is a value object: producers create one per change and hand it to the
// command bridge. Immediate selects whether the bulb applies the colour
// instantly or runs its firmware-side fade transition.
type ColorCommand struct {
	// Hue in degrees, 0-360.
	Hue uint16

	// Saturation on the device scale, 0-1000.
	Saturation uint16

	// Brightness on the device scale, 0-1000.
	Brightness uint16

	// Immediate skips the device-side colour transition when true.
	Immediate bool
}

// Validate checks all components against their documented ranges.
//
// Out-of-range values are a contract violation by the producer and are
// rejected outright; nothing is clamped or wrapped.
func (c ColorCommand) Validate() error {
	if c.Hue > HueMax {
		return fmt.Errorf("%w: hue %d exceeds %d", ErrInvalidColor, c.Hue, HueMax)
	}
	if c.Saturation > SaturationMax {
		return fmt.Errorf("%w: saturation %d exceeds %d", ErrInvalidColor, c.Saturation, SaturationMax)
	}
	if c.Brightness > BrightnessMax {
		return fmt.Errorf("%w: brightness %d exceeds %d", ErrInvalidColor, c.Brightness, BrightnessMax)
	}
	return nil
}

// SameColor reports whether two commands describe the same HSV triple.
//
// The Immediate flag is deliberately ignored: a command that only changes
// the transition mode never warrants a device write.
func (c ColorCommand) SameColor(o ColorCommand) bool {
	return c.Hue == o.Hue && c.Saturation == o.Saturation && c.Brightness == o.Brightness
}

// EncodeColor encodes an HSV colour command into the dp "28" string.
//
// The format is a single flag digit ('0' = apply immediately, skipping the
// firmware fade; '1' = allow the transition), followed by hue, saturation
// and brightness each as 4 lowercase hex digits, followed by 8 literal
// zeros (a reserved field the firmware requires). The digit-to-behaviour
// mapping is pinned to observed hardware behaviour, not derived from the
// flag's name.
//
// Returns:
//   - string: Exactly EncodedColorLen characters
//   - error: ErrInvalidColor if any component is out of range
func EncodeColor(c ColorCommand) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}

	flag := byte('1')
	if c.Immediate {
		flag = '0'
	}

	return fmt.Sprintf("%c%04x%04x%04x%s", flag, c.Hue, c.Saturation, c.Brightness, reservedSuffix), nil
}

// DecodeColor decodes a dp "28" colour string back into a ColorCommand;
// the inverse of EncodeColor.
//
// Returns:
//   - ColorCommand: Decoded colour with the Immediate flag
//   - error: ErrInvalidColor if the string is malformed or out of range
func DecodeColor(s string) (ColorCommand, error) {
	if len(s) != EncodedColorLen {
		return ColorCommand{}, fmt.Errorf("%w: encoded colour must be %d chars, got %d",
			ErrInvalidColor, EncodedColorLen, len(s))
	}

	var cmd ColorCommand
	switch s[0] {
	case '0':
		cmd.Immediate = true
	case '1':
		cmd.Immediate = false
	default:
		return ColorCommand{}, fmt.Errorf("%w: unknown flag digit %q", ErrInvalidColor, s[0])
	}

	components := [3]*uint16{&cmd.Hue, &cmd.Saturation, &cmd.Brightness}
	for i, dst := range components {
		start := 1 + i*hexDigitsPerComponent
		v, err := strconv.ParseUint(s[start:start+hexDigitsPerComponent], 16, 16)
		if err != nil {
			return ColorCommand{}, fmt.Errorf("%w: bad hex component %q", ErrInvalidColor, s[start:start+hexDigitsPerComponent])
		}
		*dst = uint16(v)
	}

	if err := cmd.Validate(); err != nil {
		return ColorCommand{}, err
	}

	return cmd, nil
}
