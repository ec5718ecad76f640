// Package remote accepts colour commands over MQTT and reports results.
//
// Incoming commands on the colour command topic are validated, answered
// with an ack and offered to the bridge. Applied colours are mirrored to
// a retained state topic so late subscribers see the current colour.
// Rejection happens only for malformed or out-of-range commands; a full
// bridge queue is not a rejection, the command was simply shed.
package remote

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/micaww/light-vst/internal/bridge"
	"github.com/micaww/light-vst/internal/infrastructure/mqtt"
	"github.com/micaww/light-vst/internal/tuya"
)

// MQTTClient is the interface for MQTT operations. Satisfied by
// *mqtt.Client; mocked in tests.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
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

// Stats holds adapter counters.
type Stats struct {
	Received uint64
	Accepted uint64
	Rejected uint64
}

// Adapter bridges the MQTT command topic to the bridge queue.
type Adapter struct {
	client   MQTTClient
	sink     Enqueuer
	deviceID string
	qos      byte
	logger   Logger
	topics   mqtt.Topics
	now      func() time.Time

	received atomic.Uint64
	accepted atomic.Uint64
	rejected atomic.Uint64
}

// New creates an adapter for the given device.
func New(client MQTTClient, sink Enqueuer, deviceID string, qos byte, logger Logger) *Adapter {
	return &Adapter{
		client:   client,
		sink:     sink,
		deviceID: deviceID,
		qos:      qos,
		logger:   logger,
		now:      time.Now,
	}
}

// Start subscribes to the colour command topic.
func (a *Adapter) Start() error {
	topic := a.topics.ColorCommand(a.deviceID)
	if err := a.client.Subscribe(topic, a.qos, a.handleCommand); err != nil {
		return fmt.Errorf("remote: subscribe %s: %w", topic, err)
	}
	a.logInfo("remote command topic subscribed", "topic", topic)
	return nil
}

// Stop unsubscribes from the command topic.
func (a *Adapter) Stop() {
	topic := a.topics.ColorCommand(a.deviceID)
	if err := a.client.Unsubscribe(topic); err != nil {
		a.logWarn("unsubscribe failed", "topic", topic, "error", err)
	}
}

// handleCommand processes one message from the command topic.
func (a *Adapter) handleCommand(_ string, payload []byte) error {
	a.received.Add(1)

	var msg ColorCommandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		a.rejected.Add(1)
		a.publishAck(uuid.NewString(), AckRejected, "invalid JSON")
		return fmt.Errorf("remote: decode command: %w", err)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	cmd := tuya.ColorCommand{
		Hue:        msg.Hue,
		Saturation: msg.Saturation,
		Brightness: msg.Brightness,
		Immediate:  msg.Immediate,
	}
	if err := cmd.Validate(); err != nil {
		a.rejected.Add(1)
		a.publishAck(msg.ID, AckRejected, err.Error())
		return fmt.Errorf("remote: command %s: %w", msg.ID, err)
	}

	// A full queue sheds the command silently; the ack still says
	// accepted because the message itself was well-formed.
	if !a.sink.Enqueue(bridge.SourceRemote, cmd) {
		a.logDebug("bridge full, remote command shed", "id", msg.ID)
	}

	a.accepted.Add(1)
	a.publishAck(msg.ID, AckAccepted, "")
	return nil
}

// publishAck sends an acknowledgement for a command.
func (a *Adapter) publishAck(id, status, reason string) {
	ack := AckMessage{
		ID:        id,
		Status:    status,
		Reason:    reason,
		Timestamp: timestamp(a.now()),
	}
	payload, err := json.Marshal(ack)
	if err != nil {
		return
	}
	if err := a.client.Publish(a.topics.Ack(a.deviceID), payload, a.qos, false); err != nil {
		a.logWarn("ack publish failed", "id", id, "error", err)
	}
}

// PublishApplied mirrors an applied colour to the retained state topic.
// Intended as the bridge's OnApplied hook.
func (a *Adapter) PublishApplied(cmd bridge.Command, latency time.Duration) {
	state := StateMessage{
		Hue:        cmd.Color.Hue,
		Saturation: cmd.Color.Saturation,
		Brightness: cmd.Color.Brightness,
		Source:     cmd.Source,
		LatencyMS:  latency.Milliseconds(),
		AppliedAt:  timestamp(a.now()),
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := a.client.Publish(a.topics.ColorState(a.deviceID), payload, a.qos, true); err != nil {
		a.logWarn("state publish failed", "error", err)
	}
}

// Stats returns a snapshot of adapter counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Received: a.received.Load(),
		Accepted: a.accepted.Load(),
		Rejected: a.rejected.Load(),
	}
}

func (a *Adapter) logDebug(msg string, kv ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, kv...)
	}
}

func (a *Adapter) logInfo(msg string, kv ...any) {
	if a.logger != nil {
		a.logger.Info(msg, kv...)
	}
}

func (a *Adapter) logWarn(msg string, kv ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, kv...)
	}
}
