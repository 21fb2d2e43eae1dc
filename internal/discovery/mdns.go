package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/wemo/internal/wemo"
)

const (
	// ServiceType is the default mDNS service browsed for WeMo hosts
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultDescriptionPort is where WeMo firmware usually serves setup.xml
	DefaultDescriptionPort = 49153
)

// MDNSFinder locates hosts with mDNS and reads the UPnP description each
// host serves. It is a fallback for networks that drop SSDP multicast.
type MDNSFinder struct {
	// Timeout is the maximum time to wait for mDNS answers
	Timeout time.Duration

	// Service is the mDNS service type to browse
	Service string

	// DescriptionPort is the port serving setup.xml (0 = advertised port)
	DescriptionPort int
}

// NewMDNSFinder creates an mDNS finder with default settings
func NewMDNSFinder() *MDNSFinder {
	return &MDNSFinder{
		Timeout:         DefaultScanTimeout,
		Service:         ServiceType,
		DescriptionPort: DefaultDescriptionPort,
	}
}

// FindByType implements wemo.Finder. Only hosts whose description root
// matches deviceType are returned; "upnp:rootdevice" matches every root.
func (f *MDNSFinder) FindByType(ctx context.Context, deviceType string, depth int) ([]*wemo.Descriptor, error) {
	hosts, err := f.ScanHosts(ctx)
	if err != nil {
		return nil, err
	}

	locations := make([]string, 0, len(hosts))
	seen := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		loc := h.DescriptionURL(f.DescriptionPort)
		if seen[loc] {
			continue
		}
		seen[loc] = true
		locations = append(locations, loc)
	}

	descs, err := describe(ctx, locations, depth, false)
	if err != nil {
		return nil, err
	}

	return filterType(descs, deviceType), nil
}

// ScanHosts browses for the configured service until the timeout expires
func (f *MDNSFinder) ScanHosts(ctx context.Context) ([]*Host, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu    sync.Mutex
		hosts = make([]*Host, 0)
	)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			host := parseServiceEntry(entry)
			if host == nil {
				continue
			}
			mu.Lock()
			hosts = append(hosts, host)
			mu.Unlock()
		}
	}()

	service := f.Service
	if service == "" {
		service = ServiceType
	}
	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Host(nil), hosts...), nil
}

// parseServiceEntry converts a zeroconf service entry to a Host.
// Returns nil if the entry has no hostname or address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Host {
	if entry == nil || entry.HostName == "" {
		return nil
	}

	// Prefer IPv4
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	// TXT records are in "key=value" format
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Host{
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         entry.Port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// filterType keeps descriptors of the requested type
func filterType(descs []*wemo.Descriptor, deviceType string) []*wemo.Descriptor {
	if deviceType == "" || deviceType == wemo.RootDeviceType || deviceType == "ssdp:all" {
		return descs
	}
	out := make([]*wemo.Descriptor, 0, len(descs))
	for _, d := range descs {
		if d.Type == deviceType {
			out = append(out, d)
		}
	}
	return out
}
