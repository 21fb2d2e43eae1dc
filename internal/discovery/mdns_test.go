package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantIP   string
		wantPort int
	}{
		{
			name: "host with IPv4",
			entry: &zeroconf.ServiceEntry{
				HostName: "wemo-desk.local.",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
				Text:     []string{"path=/"},
			},
			wantIP:   "192.168.4.16",
			wantPort: 80,
		},
		{
			name: "host with custom port",
			entry: &zeroconf.ServiceEntry{
				HostName: "wemo-kitchen.local",
				Port:     49153,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.100")},
			},
			wantIP:   "192.168.1.100",
			wantPort: 49153,
		},
		{
			name: "empty hostname",
			entry: &zeroconf.ServiceEntry{
				HostName: "",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				HostName: "wemo-desk.local",
				Port:     80,
				AddrIPv4: []net.IP{},
				AddrIPv6: []net.IP{},
			},
			wantNil: true,
		},
		{
			name: "IPv6 only host",
			entry: &zeroconf.ServiceEntry{
				HostName: "wemo-v6.local",
				Port:     80,
				AddrIPv6: []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:   "fe80::1",
			wantPort: 80,
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				HostName: "wemo-dual.local",
				Port:     80,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6: []net.IP{net.ParseIP("fe80::2")},
			},
			wantIP:   "192.168.1.50",
			wantPort: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := parseServiceEntry(tt.entry)

			if tt.wantNil {
				if host != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", host)
				}
				return
			}

			if host == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil host")
			}

			if host.IP != tt.wantIP {
				t.Errorf("host.IP = %v, want %v", host.IP, tt.wantIP)
			}

			if host.Port != tt.wantPort {
				t.Errorf("host.Port = %v, want %v", host.Port, tt.wantPort)
			}

			if host.Hostname != tt.entry.HostName {
				t.Errorf("host.Hostname = %v, want %v", host.Hostname, tt.entry.HostName)
			}

			if time.Since(host.DiscoveredAt) > time.Second {
				t.Errorf("host.DiscoveredAt is not recent: %v", host.DiscoveredAt)
			}
		})
	}
}

func TestParseServiceEntry_Nil(t *testing.T) {
	if host := parseServiceEntry(nil); host != nil {
		t.Errorf("parseServiceEntry(nil) = %v, want nil", host)
	}
}

func TestParseServiceEntry_Metadata(t *testing.T) {
	entry := &zeroconf.ServiceEntry{
		HostName: "wemo-desk.local",
		Port:     80,
		AddrIPv4: []net.IP{net.ParseIP("192.168.4.16")},
		Text:     []string{"path=/", "md=Socket", "flag", "version=1.0"},
	}

	host := parseServiceEntry(entry)
	if host == nil {
		t.Fatal("parseServiceEntry() = nil, want host")
	}

	expectedMetadata := map[string]string{
		"path":    "/",
		"md":      "Socket",
		"flag":    "",
		"version": "1.0",
	}

	if len(host.Metadata) != len(expectedMetadata) {
		t.Errorf("host.Metadata has %d entries, want %d", len(host.Metadata), len(expectedMetadata))
	}

	for key, expectedValue := range expectedMetadata {
		if actualValue, ok := host.Metadata[key]; !ok {
			t.Errorf("host.Metadata missing key %q", key)
		} else if actualValue != expectedValue {
			t.Errorf("host.Metadata[%q] = %q, want %q", key, actualValue, expectedValue)
		}
	}
}

func TestNewMDNSFinder(t *testing.T) {
	finder := NewMDNSFinder()

	if finder.Timeout != DefaultScanTimeout {
		t.Errorf("finder.Timeout = %v, want %v", finder.Timeout, DefaultScanTimeout)
	}
	if finder.Service != ServiceType {
		t.Errorf("finder.Service = %v, want %v", finder.Service, ServiceType)
	}
	if finder.DescriptionPort != DefaultDescriptionPort {
		t.Errorf("finder.DescriptionPort = %v, want %v", finder.DescriptionPort, DefaultDescriptionPort)
	}
}

// Live mDNS discovery needs a multicast-capable network and is not
// exercised here.
