// Package wemo discovers Belkin WeMo devices and switches WeMo outlets.
//
// A Registry asks a Finder for UPnP root devices, keeps those in the
// "urn:Belkin:" namespace and classifies them as switches or sensors by
// their device type. Devices of any other WeMo type are dropped.
//
// # Control protocol
//
// Outlets are switched with a SOAP SetBinaryState call posted to
//
//	http://<host>:<port>/upnp/control/basicevent1
//
// where host and port come from the device's presentation URL. Any HTTP
// response counts as delivery. The connection is torn down right after
// the response headers arrive because WeMo firmware can otherwise hold
// the socket open and ignore the next command.
//
// # Usage Example
//
//	reg := wemo.NewRegistry(discovery.NewSSDPFinder())
//	sw, err := reg.FindSwitch(ctx, "Desk Lamp")
//	if err != nil {
//	    return err
//	}
//	if sw == nil {
//	    return fmt.Errorf("no such device")
//	}
//	return sw.On(ctx)
//
// # Thread Safety
//
// Registry and Controller hold no mutable state and may be shared, but
// commands to the same outlet are not ordered; callers that need ordering
// must serialize them.
package wemo
