package tuya

import (
	"encoding/json"
	"strconv"
	"time"
)

// Data point identifiers used by the bulb.
const (
	// dpPower is the power switch data point.
	dpPower = "20"

	// dpColor is the HSV colour data point.
	dpColor = "28"
)

// Payload is the JSON structure sent to the device inside a CONTROL frame.
//
// The device expects gwId to mirror devId for directly-addressed bulbs.
// uid and dpId are omitted entirely (not sent as null or empty).
type Payload struct {
	DevID string         `json:"devId"`
	GwID  string         `json:"gwId"`
	UID   string         `json:"uid,omitempty"`
	T     string         `json:"t"`
	DPID  *int           `json:"dpId,omitempty"`
	DPS   map[string]any `json:"dps"`
}

// NewColorPayload builds the wire payload for a colour change.
//
// The payload always includes dp "20" = true so a bulb that was switched
// off turns on with the requested colour, and dp "28" carrying the encoded
// colour string. The timestamp is taken fresh from now; payloads are built
// per send attempt and never reused.
func NewColorPayload(deviceID, encodedColor string, now time.Time) Payload {
	return Payload{
		DevID: deviceID,
		GwID:  deviceID,
		T:     strconv.FormatInt(now.Unix(), 10),
		DPS: map[string]any{
			dpPower: true,
			dpColor: encodedColor,
		},
	}
}

// Marshal serialises the payload to the JSON form the device expects.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}
