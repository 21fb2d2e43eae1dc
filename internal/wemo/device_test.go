package wemo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevice_Capabilities(t *testing.T) {
	sw := newDevice(KindSwitch, &Descriptor{Type: "urn:Belkin:device:controllee:1", FriendlyName: "Lamp"}, nil)
	sensor := newDevice(KindSensor, &Descriptor{Type: "urn:Belkin:device:sensor:1", FriendlyName: "Hall"}, nil)

	s, ok := sw.AsSwitch()
	require.True(t, ok)
	assert.Same(t, sw, s.Device())
	_, ok = sw.AsSensor()
	assert.False(t, ok)

	m, ok := sensor.AsSensor()
	require.True(t, ok)
	assert.Same(t, sensor, m.Device())
	_, ok = sensor.AsSwitch()
	assert.False(t, ok)
}

func TestDevice_NameIsLive(t *testing.T) {
	desc := &Descriptor{Type: "urn:Belkin:device:controllee:1", FriendlyName: "Lamp"}
	dev := newDevice(KindSwitch, desc, nil)

	desc.FriendlyName = "Reading Lamp"
	assert.Equal(t, "Reading Lamp", dev.Name())
}

func TestDevice_String(t *testing.T) {
	dev := newDevice(KindSwitch, &Descriptor{FriendlyName: "Lamp", PresentationURL: "http://10.0.0.5:49153/"}, nil)
	assert.Equal(t, `WeMo switch "Lamp" (http://10.0.0.5:49153/)`, dev.String())
}

func TestNewSwitchDevice(t *testing.T) {
	_, err := NewSwitchDevice(nil, nil)
	assert.Error(t, err)

	dev, err := NewSwitchDevice(&Descriptor{FriendlyName: "Lamp"}, nil)
	require.NoError(t, err)
	assert.Equal(t, KindSwitch, dev.Kind())
	assert.NotNil(t, dev.controller())
	assert.Nil(t, dev.ctl)
}

func TestParseState(t *testing.T) {
	tests := []struct {
		input   string
		want    State
		wantErr bool
	}{
		{"on", StateOn, false},
		{"ON", StateOn, false},
		{" On ", StateOn, false},
		{"1", StateOn, false},
		{"true", StateOn, false},
		{"off", StateOff, false},
		{"OFF", StateOff, false},
		{"0", StateOff, false},
		{"false", StateOff, false},
		{"toggle", StateOff, true},
		{"", StateOff, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseState(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "on", StateOn.String())
	assert.Equal(t, "off", StateOff.String())
}
