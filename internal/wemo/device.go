package wemo

import (
	"context"
	"fmt"
	"strings"
)

// Device is a classified WeMo device backed by exactly one Descriptor.
// The descriptor is held by reference and never copied.
type Device struct {
	kind Kind
	desc *Descriptor
	ctl  *Controller
}

// newDevice wraps desc. Callers guarantee desc is non-nil.
func newDevice(kind Kind, desc *Descriptor, ctl *Controller) *Device {
	return &Device{kind: kind, desc: desc, ctl: ctl}
}

// NewSwitchDevice wraps a descriptor as a switch without going through
// discovery. A nil controller falls back to NewController().
func NewSwitchDevice(desc *Descriptor, ctl *Controller) (*Device, error) {
	if desc == nil {
		return nil, fmt.Errorf("descriptor is required")
	}
	return newDevice(KindSwitch, desc, ctl), nil
}

// Kind returns the device class
func (d *Device) Kind() Kind {
	return d.kind
}

// Name returns the friendly name, read from the descriptor
func (d *Device) Name() string {
	return d.desc.FriendlyName
}

// Descriptor returns the backing descriptor
func (d *Device) Descriptor() *Descriptor {
	return d.desc
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("WeMo %s %q (%s)", d.kind, d.desc.FriendlyName, d.desc.PresentationURL)
}

// AsSwitch returns the switch capability when the device is a switch.
func (d *Device) AsSwitch() (*Switch, bool) {
	if d.kind != KindSwitch {
		return nil, false
	}
	return &Switch{dev: d}, true
}

// AsSensor returns the sensor capability when the device is a sensor.
func (d *Device) AsSensor() (*Sensor, bool) {
	if d.kind != KindSensor {
		return nil, false
	}
	return &Sensor{dev: d}, true
}

func (d *Device) controller() *Controller {
	if d.ctl == nil {
		return NewController()
	}
	return d.ctl
}

// Switch controls a WeMo outlet.
type Switch struct {
	dev *Device
}

// Device returns the underlying device
func (s *Switch) Device() *Device {
	return s.dev
}

// Name returns the friendly name of the switch
func (s *Switch) Name() string {
	return s.dev.Name()
}

// On turns the outlet on
func (s *Switch) On(ctx context.Context) error {
	return s.SetState(ctx, StateOn)
}

// Off turns the outlet off
func (s *Switch) Off(ctx context.Context) error {
	return s.SetState(ctx, StateOff)
}

// SetState sends the binary state command to the outlet
func (s *Switch) SetState(ctx context.Context, state State) error {
	return s.dev.controller().SetState(ctx, s.dev, state)
}

// Sensor is a WeMo motion sensor. Sensors are listed but cannot be
// controlled.
type Sensor struct {
	dev *Device
}

// Device returns the underlying device
func (s *Sensor) Device() *Device {
	return s.dev
}

// State is the binary state of an outlet.
type State int

const (
	StateOff State = iota
	StateOn
)

// String returns "on" or "off"
func (s State) String() string {
	if s == StateOn {
		return "on"
	}
	return "off"
}

// ParseState accepts on/off, 1/0 and true/false in any case.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true":
		return StateOn, nil
	case "off", "0", "false":
		return StateOff, nil
	default:
		return StateOff, fmt.Errorf("invalid state %q (expected on or off)", s)
	}
}
