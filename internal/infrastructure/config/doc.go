// Package config handles loading and validating lightvst configuration.
//
// Configuration is resolved in three layers: built-in defaults, the
// YAML file, then LIGHTVST_* environment variable overrides. The result
// is validated as a whole before use, with every problem reported in a
// single joined error.
//
// Security Considerations:
//   - Sensitive values belong in environment variables, not the file:
//     LIGHTVST_DEVICE_KEY, LIGHTVST_MQTT_PASSWORD, LIGHTVST_INFLUXDB_TOKEN
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Device.ID)
package config
