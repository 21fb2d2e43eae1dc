package discovery

import (
	"context"
	"fmt"
	"net/url"

	"github.com/huin/goupnp"
	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/wemo"
)

// FromRoot converts a UPnP device tree into descriptors.
// depth 1 returns the root device only; each extra level adds one level
// of embedded devices, in document order.
func FromRoot(root *goupnp.RootDevice, location *url.URL, depth int) []*wemo.Descriptor {
	if root == nil {
		return nil
	}
	if depth < 1 {
		depth = 1
	}

	var out []*wemo.Descriptor
	var walk func(dev *goupnp.Device, level int)
	walk = func(dev *goupnp.Device, level int) {
		out = append(out, fromDevice(dev, location))
		if level >= depth {
			return
		}
		for i := range dev.Devices {
			walk(&dev.Devices[i], level+1)
		}
	}
	walk(&root.Device, 1)

	return out
}

func fromDevice(dev *goupnp.Device, location *url.URL) *wemo.Descriptor {
	desc := &wemo.Descriptor{
		Type:            dev.DeviceType,
		FriendlyName:    dev.FriendlyName,
		PresentationURL: presentationURL(dev, location),
		UDN:             dev.UDN,
		Manufacturer:    dev.Manufacturer,
		ModelName:       dev.ModelName,
		SerialNumber:    dev.SerialNumber,
	}
	if location != nil {
		desc.Location = location.String()
	}
	return desc
}

// presentationURL returns the absolute presentation URL. Devices that
// declare none fall back to the description location, which carries the
// same host and port.
func presentationURL(dev *goupnp.Device, location *url.URL) string {
	if dev.PresentationURL.Ok && dev.PresentationURL.URL.Host != "" {
		return dev.PresentationURL.URL.String()
	}
	if location == nil {
		return dev.PresentationURL.Str
	}
	if dev.PresentationURL.Str != "" {
		if ref, err := url.Parse(dev.PresentationURL.Str); err == nil {
			return location.ResolveReference(ref).String()
		}
		return dev.PresentationURL.Str
	}
	return location.String()
}

// describe fetches the device description at each location.
// With strict set, the first failure aborts the call; otherwise failing
// locations are logged and skipped.
func describe(ctx context.Context, locations []string, depth int, strict bool) ([]*wemo.Descriptor, error) {
	var out []*wemo.Descriptor
	for _, loc := range locations {
		u, err := url.Parse(loc)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("invalid description URL %q: %w", loc, err)
			}
			logging.Debug("Skipping invalid description URL", zap.String("location", loc), zap.Error(err))
			continue
		}

		root, err := goupnp.DeviceByURLCtx(ctx, u)
		if err != nil {
			if strict {
				return nil, fmt.Errorf("failed to fetch device description from %s: %w", loc, err)
			}
			logging.Debug("Skipping unreachable description", zap.String("location", loc), zap.Error(err))
			continue
		}

		out = append(out, FromRoot(root, u, depth)...)
	}
	return out, nil
}
