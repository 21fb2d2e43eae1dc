package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// DescriptionPath is where WeMo devices serve their UPnP device description
const DescriptionPath = "/setup.xml"

// Host represents a network host found through mDNS
type Host struct {
	// Hostname is the mDNS hostname (e.g., "wemo-desk.local.")
	Hostname string

	// IP is the address to contact, IPv4 preferred
	IP string

	// Port is the advertised service port
	Port int

	// Metadata contains additional mDNS TXT record data
	Metadata map[string]string

	// DiscoveredAt is when the host was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the host
func (h *Host) String() string {
	return fmt.Sprintf("Host %s at %s:%d", h.Hostname, h.IP, h.Port)
}

// DescriptionURL returns the setup.xml URL on the given port.
// A zero port uses the advertised service port.
func (h *Host) DescriptionURL(port int) string {
	if port == 0 {
		port = h.Port
	}
	return "http://" + net.JoinHostPort(h.IP, strconv.Itoa(port)) + DescriptionPath
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (h *Host) GetMetadata(key string) string {
	if h.Metadata == nil {
		return ""
	}
	return h.Metadata[key]
}
