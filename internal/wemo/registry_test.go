package wemo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticFinder returns a fixed set of descriptors and records its calls
type staticFinder struct {
	descs []*Descriptor
	err   error

	calls     int
	lastType  string
	lastDepth int
}

func (f *staticFinder) FindByType(ctx context.Context, deviceType string, depth int) ([]*Descriptor, error) {
	f.calls++
	f.lastType = deviceType
	f.lastDepth = depth
	if f.err != nil {
		return nil, f.err
	}
	return f.descs, nil
}

func sampleDescriptors() []*Descriptor {
	return []*Descriptor{
		{Type: "urn:Belkin:device:controllee:1", FriendlyName: "Desk Lamp", PresentationURL: "http://10.0.0.5:49153/"},
		{Type: "urn:schemas-upnp-org:device:MediaRenderer:1", FriendlyName: "TV", PresentationURL: "http://10.0.0.9:8080/"},
		{Type: "urn:Belkin:device:sensor:1", FriendlyName: "Hallway", PresentationURL: "http://10.0.0.6:49153/"},
		{Type: "urn:Belkin:device:lightswitch:1", FriendlyName: "Porch", PresentationURL: "http://10.0.0.7:49153/"},
		{Type: "urn:Belkin:device:controllee:1", FriendlyName: "Heater", PresentationURL: "http://10.0.0.8:49153/"},
	}
}

func TestRegistry_Discover(t *testing.T) {
	finder := &staticFinder{descs: sampleDescriptors()}
	reg := NewRegistry(finder)

	devices, err := reg.Discover(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, finder.calls)
	assert.Equal(t, RootDeviceType, finder.lastType)
	assert.Equal(t, 1, finder.lastDepth)

	require.Len(t, devices, 3)
	assert.Equal(t, "Desk Lamp", devices[0].Name())
	assert.Equal(t, KindSwitch, devices[0].Kind())
	assert.Equal(t, "Hallway", devices[1].Name())
	assert.Equal(t, KindSensor, devices[1].Kind())
	assert.Equal(t, "Heater", devices[2].Name())
	assert.Equal(t, KindSwitch, devices[2].Kind())

	// Devices share the finder's descriptors
	assert.Same(t, finder.descs[0], devices[0].Descriptor())
}

func TestRegistry_DiscoverEmpty(t *testing.T) {
	reg := NewRegistry(&staticFinder{})

	devices, err := reg.Discover(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestRegistry_DiscoverOutsideNamespace(t *testing.T) {
	finder := &staticFinder{descs: []*Descriptor{
		{Type: "urn:Acme-com:device:controllee:1", FriendlyName: "Acme Plug", PresentationURL: "http://10.0.0.10:80/"},
		{Type: "urn:belkin:device:controllee:1", FriendlyName: "Lowercase", PresentationURL: "http://10.0.0.11:49153/"},
		nil,
		{Type: "urn:schemas-upnp-org:device:sensor:1", FriendlyName: "Generic Sensor"},
	}}

	devices, err := NewRegistry(finder).Discover(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, devices)
	assert.Empty(t, devices)
}

func TestRegistry_DiscoverRunsEveryTime(t *testing.T) {
	finder := &staticFinder{descs: sampleDescriptors()}
	reg := NewRegistry(finder)

	_, err := reg.Discover(context.Background())
	require.NoError(t, err)
	_, err = reg.FindByName(context.Background(), "Heater")
	require.NoError(t, err)

	assert.Equal(t, 2, finder.calls)
}

func TestRegistry_DiscoverError(t *testing.T) {
	cause := errors.New("socket bind failed")
	reg := NewRegistry(&staticFinder{err: cause})

	devices, err := reg.Discover(context.Background())
	assert.Nil(t, devices)
	require.Error(t, err)
	assert.True(t, IsDiscoveryError(err))
	assert.ErrorIs(t, err, cause)
}

func TestRegistry_FindByName(t *testing.T) {
	descs := sampleDescriptors()
	descs = append(descs, &Descriptor{
		Type:            "urn:Belkin:device:sensor:1",
		FriendlyName:    "Desk Lamp",
		PresentationURL: "http://10.0.0.10:49153/",
	})
	reg := NewRegistry(&staticFinder{descs: descs})

	dev, err := reg.FindByName(context.Background(), "Desk Lamp")
	require.NoError(t, err)
	require.NotNil(t, dev)
	assert.Equal(t, KindSwitch, dev.Kind())
	assert.Equal(t, "http://10.0.0.5:49153/", dev.Descriptor().PresentationURL)

	dev, err = reg.FindByName(context.Background(), "desk lamp")
	require.NoError(t, err)
	assert.Nil(t, dev, "names match exactly")

	dev, err = reg.FindByName(context.Background(), "TV")
	require.NoError(t, err)
	assert.Nil(t, dev, "non-WeMo devices are never returned")

	dev, err = reg.FindByName(context.Background(), "Porch")
	require.NoError(t, err)
	assert.Nil(t, dev, "unsupported WeMo devices are never returned")
}

func TestRegistry_FindByNameError(t *testing.T) {
	reg := NewRegistry(&staticFinder{err: errors.New("boom")})

	dev, err := reg.FindByName(context.Background(), "Desk Lamp")
	assert.Nil(t, dev)
	assert.True(t, IsDiscoveryError(err))
}

func TestRegistry_Switches(t *testing.T) {
	reg := NewRegistry(&staticFinder{descs: sampleDescriptors()})

	switches, err := reg.Switches(context.Background())
	require.NoError(t, err)
	require.Len(t, switches, 2)
	assert.Equal(t, "Desk Lamp", switches[0].Name())
	assert.Equal(t, "Heater", switches[1].Name())
}

func TestRegistry_FindSwitch(t *testing.T) {
	reg := NewRegistry(&staticFinder{descs: sampleDescriptors()})

	sw, err := reg.FindSwitch(context.Background(), "Heater")
	require.NoError(t, err)
	require.NotNil(t, sw)
	assert.Equal(t, "Heater", sw.Name())

	sw, err = reg.FindSwitch(context.Background(), "Hallway")
	assert.Nil(t, sw)
	assert.True(t, IsNotSwitchError(err))

	sw, err = reg.FindSwitch(context.Background(), "Garage")
	assert.NoError(t, err)
	assert.Nil(t, sw)
}

func TestRegistry_FinderFunc(t *testing.T) {
	finder := FinderFunc(func(ctx context.Context, deviceType string, depth int) ([]*Descriptor, error) {
		return []*Descriptor{{Type: "urn:Belkin:device:controllee:1", FriendlyName: "Fan"}}, nil
	})

	devices, err := NewRegistry(finder).Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Fan", devices[0].Name())
}
