// Package discovery finds UPnP devices on the local network and turns
// their device descriptions into wemo.Descriptor values.
//
// Three finders implement wemo.Finder:
//
//   - SSDPFinder sends an SSDP M-SEARCH and reads the description of each
//     responder. This is how WeMo devices are normally found.
//   - MDNSFinder browses an mDNS service and reads setup.xml from every
//     host that answers. Useful where SSDP multicast is filtered.
//   - StaticFinder reads descriptions from a configured list of URLs.
//
// New selects one from the discovery configuration.
//
// # Usage Example
//
//	finder, err := discovery.New(cfg.Discovery)
//	if err != nil {
//	    return err
//	}
//	descs, err := finder.FindByType(ctx, wemo.RootDeviceType, 1)
//
// # Network Requirements
//
// - SSDP uses UDP port 1900 multicast on 239.255.255.250
// - mDNS uses UDP port 5353
// - Description and control traffic is plain HTTP, usually on port 49153
package discovery
