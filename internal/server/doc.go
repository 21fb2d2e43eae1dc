// Package server exposes WeMo devices over a small HTTP API.
//
// # Endpoints
//
//	GET  /devices                 list discovered switches and sensors
//	GET  /devices/{name}          one device, 404 if no device has that name
//	POST /devices/{name}/on       turn a switch on  (204 on delivery)
//	POST /devices/{name}/off      turn a switch off (204 on delivery)
//	GET  /events                  websocket stream of delivered commands
//
// Every request runs a fresh discovery. Control failures map to:
//
//	404 unknown device
//	409 device is not a switch
//	422 device advertised an unusable presentation URL
//	502 the device could not be reached
//	503 discovery itself failed
//
// Discovery and control are serialized across requests.
//
// # Usage Example
//
//	srv := server.New(server.Config{Listen: ":8090"}, wemo.NewRegistry(finder))
//
//	// Start blocks until ctx is cancelled or SIGINT/SIGTERM is received
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # Events
//
// Each delivered command is broadcast to websocket clients as JSON:
//
//	{"id":"7d4f...","device":"Desk Lamp","state":"on","time":"2024-05-01T10:00:00Z"}
package server
