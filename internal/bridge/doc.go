// Package bridge exposes WeMo switches over MQTT.
//
// The bridge subscribes to <prefix>/+/set, where the middle segment is a
// device friendly name and the payload is on/off (also 1/0, true/false).
// Each command runs a fresh discovery, sends the command, and publishes
// the result:
//
//	wemo/Desk Lamp/set    <- "on"
//	wemo/Desk Lamp/state  -> "ON"   (retained)
//	wemo/Desk Lamp/error  -> "..."  (on failure)
//	wemo/status           -> "online" / "offline" (retained, last will)
//
// Device names containing "/" cannot be addressed.
package bridge
