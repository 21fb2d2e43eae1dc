package tui

import (
	"fmt"
	"net/url"

	"github.com/muurk/wemo/internal/wemo"
)

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *wemo.Device
}

// FilterValue filters by friendly name
func (d deviceItem) FilterValue() string {
	return d.device.Name()
}

// Title returns the device name for list display
func (d deviceItem) Title() string {
	return d.device.Name()
}

// Description returns kind and address
func (d deviceItem) Description() string {
	desc := d.device.Descriptor()
	address := desc.PresentationURL
	if u, err := url.Parse(desc.PresentationURL); err == nil && u.Host != "" {
		address = u.Host
	}
	return fmt.Sprintf("%s • %s", d.device.Kind(), address)
}
