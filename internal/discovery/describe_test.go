package discovery

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/huin/goupnp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/wemo/internal/config"
	"github.com/muurk/wemo/internal/wemo"
)

const setupXML = `<?xml version="1.0"?>
<root xmlns="urn:schemas-upnp-org:device-1-0">
  <specVersion><major>1</major><minor>0</minor></specVersion>
  <device>
    <deviceType>urn:Belkin:device:controllee:1</deviceType>
    <friendlyName>Desk Lamp</friendlyName>
    <manufacturer>Belkin International Inc.</manufacturer>
    <modelName>Socket</modelName>
    <serialNumber>221239K1100123</serialNumber>
    <UDN>uuid:Socket-1_0-221239K1100123</UDN>
    <presentationURL>/pluginpres.html</presentationURL>
  </device>
</root>`

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFromRoot_RootOnly(t *testing.T) {
	loc := mustParse(t, "http://10.0.0.5:49153/setup.xml")
	root := &goupnp.RootDevice{
		Device: goupnp.Device{
			DeviceType:      "urn:Belkin:device:controllee:1",
			FriendlyName:    "Desk Lamp",
			UDN:             "uuid:Socket-1",
			PresentationURL: goupnp.URLField{Str: "/pluginpres.html"},
			Devices: []goupnp.Device{
				{DeviceType: "urn:Belkin:device:embedded:1", FriendlyName: "Child"},
			},
		},
	}

	descs := FromRoot(root, loc, 1)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "urn:Belkin:device:controllee:1", d.Type)
	assert.Equal(t, "Desk Lamp", d.FriendlyName)
	assert.Equal(t, "http://10.0.0.5:49153/pluginpres.html", d.PresentationURL)
	assert.Equal(t, "uuid:Socket-1", d.UDN)
	assert.Equal(t, "http://10.0.0.5:49153/setup.xml", d.Location)
}

func TestFromRoot_Depth(t *testing.T) {
	loc := mustParse(t, "http://10.0.0.5:49153/setup.xml")
	root := &goupnp.RootDevice{
		Device: goupnp.Device{
			FriendlyName: "root",
			Devices: []goupnp.Device{
				{
					FriendlyName: "child-a",
					Devices:      []goupnp.Device{{FriendlyName: "grandchild"}},
				},
				{FriendlyName: "child-b"},
			},
		},
	}

	names := func(descs []*wemo.Descriptor) []string {
		out := make([]string, 0, len(descs))
		for _, d := range descs {
			out = append(out, d.FriendlyName)
		}
		return out
	}

	assert.Equal(t, []string{"root"}, names(FromRoot(root, loc, 0)))
	assert.Equal(t, []string{"root", "child-a", "child-b"}, names(FromRoot(root, loc, 2)))
	assert.Equal(t, []string{"root", "child-a", "grandchild", "child-b"}, names(FromRoot(root, loc, 3)))
}

func TestFromRoot_Nil(t *testing.T) {
	assert.Nil(t, FromRoot(nil, nil, 1))
}

func TestPresentationURL(t *testing.T) {
	loc := mustParse(t, "http://10.0.0.5:49153/setup.xml")

	tests := []struct {
		name     string
		field    goupnp.URLField
		location *url.URL
		want     string
	}{
		{
			name:     "already resolved",
			field:    goupnp.URLField{Ok: true, URL: *mustParse(t, "http://10.0.0.9:49154/pluginpres.html"), Str: "/pluginpres.html"},
			location: loc,
			want:     "http://10.0.0.9:49154/pluginpres.html",
		},
		{
			name:     "relative, resolved against location",
			field:    goupnp.URLField{Str: "/pluginpres.html"},
			location: loc,
			want:     "http://10.0.0.5:49153/pluginpres.html",
		},
		{
			name:     "missing, falls back to location",
			field:    goupnp.URLField{},
			location: loc,
			want:     "http://10.0.0.5:49153/setup.xml",
		},
		{
			name:     "no location",
			field:    goupnp.URLField{Str: "http://10.0.0.7/"},
			location: nil,
			want:     "http://10.0.0.7/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &goupnp.Device{PresentationURL: tt.field}
			assert.Equal(t, tt.want, presentationURL(dev, tt.location))
		})
	}
}

func TestCollect(t *testing.T) {
	loc := mustParse(t, "http://10.0.0.5:49153/setup.xml")
	root := func(name string) *goupnp.RootDevice {
		return &goupnp.RootDevice{Device: goupnp.Device{FriendlyName: name, DeviceType: "urn:Belkin:device:controllee:1"}}
	}

	maybes := []goupnp.MaybeRootDevice{
		{USN: "uuid:a::upnp:rootdevice", Root: root("A"), Location: loc},
		{USN: "uuid:b::upnp:rootdevice", Err: errors.New("description unreachable")},
		{USN: "uuid:a::upnp:rootdevice", Root: root("A again"), Location: loc},
		{USN: "uuid:c::upnp:rootdevice", Root: root("C"), Location: loc},
		{USN: "uuid:d::upnp:rootdevice"},
	}

	descs := collect(maybes, 1)
	require.Len(t, descs, 2)
	assert.Equal(t, "A", descs[0].FriendlyName)
	assert.Equal(t, "C", descs[1].FriendlyName)
}

func TestStaticFinder_FindByType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DescriptionPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		_, _ = w.Write([]byte(setupXML))
	}))
	defer server.Close()

	finder := NewStaticFinder(server.URL + DescriptionPath)
	descs, err := finder.FindByType(context.Background(), wemo.RootDeviceType, 1)
	require.NoError(t, err)
	require.Len(t, descs, 1)

	d := descs[0]
	assert.Equal(t, "urn:Belkin:device:controllee:1", d.Type)
	assert.Equal(t, "Desk Lamp", d.FriendlyName)
	assert.Equal(t, server.URL+"/pluginpres.html", d.PresentationURL)
	assert.Equal(t, "221239K1100123", d.SerialNumber)
	assert.Equal(t, "Socket", d.ModelName)
	assert.Equal(t, server.URL+DescriptionPath, d.Location)

	control, err := wemo.ControlURL(d.PresentationURL)
	require.NoError(t, err)
	assert.Equal(t, server.URL+wemo.ControlPath, control)
}

func TestStaticFinder_TypeFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(setupXML))
	}))
	defer server.Close()

	finder := NewStaticFinder(server.URL + DescriptionPath)

	descs, err := finder.FindByType(context.Background(), "urn:Belkin:device:sensor:1", 1)
	require.NoError(t, err)
	assert.Empty(t, descs)

	descs, err = finder.FindByType(context.Background(), "urn:Belkin:device:controllee:1", 1)
	require.NoError(t, err)
	assert.Len(t, descs, 1)
}

func TestStaticFinder_FailureIsFatal(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(setupXML))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer bad.Close()

	finder := NewStaticFinder(good.URL+DescriptionPath, bad.URL+DescriptionPath)
	_, err := finder.FindByType(context.Background(), wemo.RootDeviceType, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad.URL)
}

func TestDescribe_LenientSkipsFailures(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(setupXML))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	descs, err := describe(context.Background(), []string{bad.URL + DescriptionPath, "://bad", good.URL + DescriptionPath}, 1, false)
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "Desk Lamp", descs[0].FriendlyName)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Discovery
		check   func(t *testing.T, f wemo.Finder)
		wantErr bool
	}{
		{
			name: "ssdp",
			cfg:  config.Discovery{Method: config.MethodSSDP, Timeout: 2 * time.Second},
			check: func(t *testing.T, f wemo.Finder) {
				s, ok := f.(*SSDPFinder)
				require.True(t, ok)
				assert.Equal(t, 2*time.Second, s.Timeout)
			},
		},
		{
			name: "empty method defaults to ssdp",
			cfg:  config.Discovery{},
			check: func(t *testing.T, f wemo.Finder) {
				s, ok := f.(*SSDPFinder)
				require.True(t, ok)
				assert.Equal(t, DefaultScanTimeout, s.Timeout)
			},
		},
		{
			name: "mdns",
			cfg:  config.Discovery{Method: config.MethodMDNS, MDNSService: "_wemo._tcp", DescriptionPort: 49154},
			check: func(t *testing.T, f wemo.Finder) {
				m, ok := f.(*MDNSFinder)
				require.True(t, ok)
				assert.Equal(t, "_wemo._tcp", m.Service)
				assert.Equal(t, 49154, m.DescriptionPort)
			},
		},
		{
			name: "static",
			cfg:  config.Discovery{Method: config.MethodStatic, Locations: []string{"http://10.0.0.5:49153/setup.xml"}},
			check: func(t *testing.T, f wemo.Finder) {
				s, ok := f.(*StaticFinder)
				require.True(t, ok)
				assert.Equal(t, []string{"http://10.0.0.5:49153/setup.xml"}, s.Locations)
			},
		},
		{
			name:    "static without locations",
			cfg:     config.Discovery{Method: config.MethodStatic},
			wantErr: true,
		},
		{
			name:    "unknown",
			cfg:     config.Discovery{Method: "carrier-pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

func TestSSDPFinder_SearchTimeout(t *testing.T) {
	tests := []struct {
		timeout time.Duration
		want    time.Duration
	}{
		{0, DefaultScanTimeout},
		{-time.Second, DefaultScanTimeout},
		{900 * time.Millisecond, MinSearchTimeout},
		{time.Second, time.Second},
		{3 * time.Second, 3 * time.Second},
	}

	for _, tt := range tests {
		f := &SSDPFinder{Timeout: tt.timeout}
		assert.Equal(t, tt.want, f.searchTimeout(), "Timeout %s", tt.timeout)
	}
}
