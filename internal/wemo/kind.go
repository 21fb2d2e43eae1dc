package wemo

import (
	"fmt"
	"strings"
)

const (
	// VendorPrefix is the device type namespace shared by all WeMo devices
	VendorPrefix = "urn:Belkin:"

	// SwitchMarker identifies outlet switches in the device type
	SwitchMarker = "controllee"

	// SensorMarker identifies motion sensors in the device type
	SensorMarker = "sensor"
)

// Kind is the class of a WeMo device.
type Kind int

const (
	KindUnknown Kind = iota
	KindSwitch
	KindSensor
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindSwitch:
		return "switch"
	case KindSensor:
		return "sensor"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Classify returns the kind declared by the descriptor's device type.
// Switch takes precedence when a type matches both markers.
func Classify(desc *Descriptor) Kind {
	if desc == nil {
		return KindUnknown
	}
	switch {
	case strings.Contains(desc.Type, SwitchMarker):
		return KindSwitch
	case strings.Contains(desc.Type, SensorMarker):
		return KindSensor
	default:
		return KindUnknown
	}
}

// InNamespace reports whether the descriptor belongs to the WeMo namespace.
func InNamespace(desc *Descriptor) bool {
	return desc != nil && strings.HasPrefix(desc.Type, VendorPrefix)
}
