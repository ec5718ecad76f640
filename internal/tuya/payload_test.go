package tuya

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewColorPayload(t *testing.T) {
	now := time.Unix(1700000000, 500*int64(time.Millisecond))
	encoded := "0007803e803e800000000"

	p := NewColorPayload("bf123456", encoded, now)

	if p.DevID != "bf123456" {
		t.Errorf("DevID = %q, want bf123456", p.DevID)
	}
	if p.GwID != p.DevID {
		t.Errorf("GwID = %q, want same as DevID %q", p.GwID, p.DevID)
	}
	if p.T != "1700000000" {
		t.Errorf("T = %q, want 1700000000", p.T)
	}
	if got, ok := p.DPS["20"].(bool); !ok || !got {
		t.Errorf("dps[20] = %v, want true", p.DPS["20"])
	}
	if got, ok := p.DPS["28"].(string); !ok || got != encoded {
		t.Errorf("dps[28] = %v, want %q", p.DPS["28"], encoded)
	}
}

func TestPayloadMarshalOmitsAbsentFields(t *testing.T) {
	p := NewColorPayload("dev1", "000000000000000000000", time.Unix(1, 0))

	data, err := p.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"uid", "dpId"} {
		if _, present := raw[key]; present {
			t.Errorf("marshalled payload contains %q, want it absent", key)
		}
	}
	for _, key := range []string{"devId", "gwId", "t", "dps"} {
		if _, present := raw[key]; !present {
			t.Errorf("marshalled payload missing %q", key)
		}
	}

	// The timestamp must serialise as a JSON string, not a number.
	if string(raw["t"]) != `"1"` {
		t.Errorf("t = %s, want \"1\"", raw["t"])
	}
}

func TestPayloadFreshTimestampPerBuild(t *testing.T) {
	first := NewColorPayload("dev1", "000000000000000000000", time.Unix(10, 0))
	second := NewColorPayload("dev1", "000000000000000000000", time.Unix(20, 0))

	if first.T == second.T {
		t.Errorf("timestamps identical across builds: %q", first.T)
	}
}
