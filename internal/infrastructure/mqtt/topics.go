package mqtt

import "fmt"

// Topic prefix for all lightvst topics.
// Scheme: lightvst/{category}[/{device_id}]
const TopicPrefix = "lightvst"

// Topics provides builders for lightvst MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.ColorCommand("bf0123456789")
//	// Returns: "lightvst/command/color/bf0123456789"
type Topics struct{}

// ColorCommand returns the topic remote producers publish colour
// commands to.
//
// Example: lightvst/command/color/bf0123456789
func (Topics) ColorCommand(deviceID string) string {
	return fmt.Sprintf("%s/command/color/%s", TopicPrefix, deviceID)
}

// Ack returns the topic command acknowledgements are published to.
//
// Example: lightvst/ack/bf0123456789
func (Topics) Ack(deviceID string) string {
	return fmt.Sprintf("%s/ack/%s", TopicPrefix, deviceID)
}

// ColorState returns the retained topic carrying the last applied colour.
//
// Example: lightvst/state/color/bf0123456789
func (Topics) ColorState(deviceID string) string {
	return fmt.Sprintf("%s/state/color/%s", TopicPrefix, deviceID)
}

// SystemStatus returns the topic for online/offline status, also used as
// the Last Will topic.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}
