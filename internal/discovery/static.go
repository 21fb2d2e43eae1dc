package discovery

import (
	"context"
	"time"

	"github.com/muurk/wemo/internal/wemo"
)

// StaticFinder reads device descriptions from a fixed list of URLs,
// for networks where neither SSDP nor mDNS reach the devices.
type StaticFinder struct {
	// Locations are description URLs (e.g., "http://192.168.1.40:49153/setup.xml")
	Locations []string

	// Timeout bounds all description fetches together
	Timeout time.Duration
}

// NewStaticFinder creates a static finder for the given locations
func NewStaticFinder(locations ...string) *StaticFinder {
	return &StaticFinder{
		Locations: locations,
		Timeout:   DefaultScanTimeout,
	}
}

// FindByType implements wemo.Finder. Any unreachable location fails the
// whole call, since the list is expected to be accurate.
func (f *StaticFinder) FindByType(ctx context.Context, deviceType string, depth int) ([]*wemo.Descriptor, error) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	descs, err := describe(ctx, f.Locations, depth, true)
	if err != nil {
		return nil, err
	}
	return filterType(descs, deviceType), nil
}
