package discovery

import (
	"context"
	"fmt"
	"time"

	"github.com/huin/goupnp"
	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/wemo"
)

// DefaultScanTimeout is the default timeout for device discovery
const DefaultScanTimeout = 5 * time.Second

// MinSearchTimeout is the shortest window an SSDP search accepts
const MinSearchTimeout = time.Second

// SSDPFinder finds devices with an SSDP M-SEARCH and fetches their
// device descriptions.
type SSDPFinder struct {
	// Timeout bounds the whole search including description fetches
	Timeout time.Duration
}

// NewSSDPFinder creates an SSDP finder with default settings
func NewSSDPFinder() *SSDPFinder {
	return &SSDPFinder{Timeout: DefaultScanTimeout}
}

// FindByType implements wemo.Finder
func (f *SSDPFinder) FindByType(ctx context.Context, deviceType string, depth int) ([]*wemo.Descriptor, error) {
	ctx, cancel := context.WithTimeout(ctx, f.searchTimeout())
	defer cancel()

	maybes, err := goupnp.DiscoverDevicesCtx(ctx, deviceType)
	if err != nil {
		return nil, fmt.Errorf("SSDP search for %s failed: %w", deviceType, err)
	}

	return collect(maybes, depth), nil
}

// searchTimeout returns Timeout, defaulted when unset and raised to
// MinSearchTimeout when shorter.
func (f *SSDPFinder) searchTimeout() time.Duration {
	switch {
	case f.Timeout <= 0:
		return DefaultScanTimeout
	case f.Timeout < MinSearchTimeout:
		return MinSearchTimeout
	}
	return f.Timeout
}

// collect converts search responses into descriptors, skipping devices
// whose description could not be fetched and repeated USNs.
func collect(maybes []goupnp.MaybeRootDevice, depth int) []*wemo.Descriptor {
	seen := make(map[string]bool, len(maybes))
	out := make([]*wemo.Descriptor, 0, len(maybes))

	for _, m := range maybes {
		if m.Err != nil {
			logging.Debug("Skipping device with unreadable description",
				zap.String("usn", m.USN),
				zap.Error(m.Err),
			)
			continue
		}
		if m.Root == nil {
			continue
		}
		if m.USN != "" {
			if seen[m.USN] {
				continue
			}
			seen[m.USN] = true
		}
		out = append(out, FromRoot(m.Root, m.Location, depth)...)
	}

	return out
}
