package wemo

import "context"

// RootDeviceType is the SSDP search target for all UPnP root devices.
const RootDeviceType = "upnp:rootdevice"

// Descriptor describes one device reported by a Finder.
// Descriptors are owned by the finder and must be treated as read-only.
type Descriptor struct {
	// Type is the UPnP device type (e.g., "urn:Belkin:device:controllee:1")
	Type string

	// FriendlyName is the user-assigned name (e.g., "Desk Lamp")
	FriendlyName string

	// PresentationURL is the absolute presentation URL advertised by the device
	PresentationURL string

	// UDN is the unique device name (e.g., "uuid:Socket-1_0-221239K1100123")
	UDN string

	// Manufacturer as reported in the device description
	Manufacturer string

	// ModelName as reported in the device description
	ModelName string

	// SerialNumber as reported in the device description
	SerialNumber string

	// Location is the URL the device description was fetched from
	Location string
}

// Finder locates UPnP devices on the network.
//
// depth is the number of device-tree levels to report: 1 returns root
// devices only, 2 also includes their embedded devices, and so on.
type Finder interface {
	FindByType(ctx context.Context, deviceType string, depth int) ([]*Descriptor, error)
}

// FinderFunc adapts an ordinary function to the Finder interface.
type FinderFunc func(ctx context.Context, deviceType string, depth int) ([]*Descriptor, error)

// FindByType calls f.
func (f FinderFunc) FindByType(ctx context.Context, deviceType string, depth int) ([]*Descriptor, error) {
	return f(ctx, deviceType, depth)
}
