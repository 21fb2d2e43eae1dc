package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/wemo"
)

var errNotFound = errors.New("device not found")

// DeviceView is the JSON form of a discovered device
type DeviceView struct {
	Name            string `json:"name"`
	Kind            string `json:"kind"`
	Type            string `json:"type"`
	PresentationURL string `json:"presentation_url"`
	UDN             string `json:"udn,omitempty"`
}

// ErrorView is the JSON body of every error response
type ErrorView struct {
	Error string   `json:"error"`
	Hints []string `json:"hints,omitempty"`
}

// NewDeviceView converts a device to its JSON form
func NewDeviceView(dev *wemo.Device) DeviceView {
	desc := dev.Descriptor()
	return DeviceView{
		Name:            dev.Name(),
		Kind:            dev.Kind().String(),
		Type:            desc.Type,
		PresentationURL: desc.PresentationURL,
		UDN:             desc.UDN,
	}
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	devices, err := s.registry.Discover(r.Context())
	s.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	views := make([]DeviceView, 0, len(devices))
	for _, dev := range devices {
		views = append(views, NewDeviceView(dev))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	dev, err := s.registry.FindByName(r.Context(), name)
	s.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if dev == nil {
		writeJSON(w, http.StatusNotFound, ErrorView{Error: "device not found: " + name})
		return
	}
	writeJSON(w, http.StatusOK, NewDeviceView(dev))
}

func (s *Server) handleSetState(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	state, err := wemo.ParseState(vars["state"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	err = s.setState(r, name, state)
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, errNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorView{Error: "device not found: " + name})
			return
		}
		writeError(w, statusFor(err), err)
		return
	}

	s.hub.Broadcast(Event{
		ID:     uuid.NewString(),
		Device: name,
		State:  state.String(),
		Time:   time.Now().UTC(),
	})
	w.WriteHeader(http.StatusNoContent)
}

// setState resolves and commands a switch. Callers hold s.mu.
func (s *Server) setState(r *http.Request, name string, state wemo.State) error {
	dev, err := s.registry.FindByName(r.Context(), name)
	if err != nil {
		return err
	}
	if dev == nil {
		return errNotFound
	}
	sw, ok := dev.AsSwitch()
	if !ok {
		return wemo.NewNotSwitchError(dev.Name(), dev.Kind())
	}
	return sw.SetState(r.Context(), state)
}

// statusFor maps core errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case wemo.IsNotSwitchError(err):
		return http.StatusConflict
	case wemo.IsTransportError(err):
		return http.StatusBadGateway
	case wemo.IsAddressParseError(err):
		return http.StatusUnprocessableEntity
	case wemo.IsDiscoveryError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorView{Error: err.Error(), Hints: wemo.Hint(err)})
}

// statusRecorder captures the response status for request logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer for websocket upgrades
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap lets http.ResponseController reach the underlying writer
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status)
	})
}
