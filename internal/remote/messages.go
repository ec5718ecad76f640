package remote

import "time"

// Ack statuses.
const (
	AckAccepted = "accepted"
	AckRejected = "rejected"
)

// ColorCommandMessage is the JSON body remote producers publish to the
// colour command topic.
//
// Hue is in degrees [0,360]; saturation and brightness use the device
// scale [0,1000]. The ID is optional; one is assigned when absent so the
// ack can be correlated.
type ColorCommandMessage struct {
	ID         string `json:"id,omitempty"`
	Hue        uint16 `json:"hue"`
	Saturation uint16 `json:"saturation"`
	Brightness uint16 `json:"brightness"`
	Immediate  bool   `json:"immediate"`
}

// AckMessage reports acceptance or rejection of a received command.
// Acceptance means the command was queued, not that the bulb applied it;
// the state topic reflects application.
type AckMessage struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
	Timestamp string `json:"timestamp"`
}

// StateMessage is the retained body on the colour state topic, published
// after the device accepts a colour.
type StateMessage struct {
	Hue        uint16 `json:"hue"`
	Saturation uint16 `json:"saturation"`
	Brightness uint16 `json:"brightness"`
	Source     string `json:"source"`
	LatencyMS  int64  `json:"latency_ms"`
	AppliedAt  string `json:"applied_at"`
}

// timestamp formats t for message bodies.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
