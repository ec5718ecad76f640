// Package mqtt provides MQTT client connectivity for lightvst.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// MQTT is the remote control surface: lighting desks and automation
// scripts publish colour commands to the command topic, and lightvst
// answers with acks and a retained state topic.
//
//	remote producers ↔ MQTT Broker ↔ lightvst
//
// # Security Considerations
//
//   - TLS is recommended off the local network (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Message payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.ColorCommand(deviceID), 1,
//	    func(topic string, payload []byte) error {
//	        return handleCommand(payload)
//	    })
package mqtt
