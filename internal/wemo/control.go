package wemo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
)

const (
	// ControlPath is the basicevent service control endpoint on every WeMo device
	ControlPath = "/upnp/control/basicevent1"

	// SOAPAction identifies the SetBinaryState operation
	SOAPAction = `"urn:Belkin:service:basicevent:1#SetBinaryState"`

	// ContentType is sent with every command envelope
	ContentType = `text/xml; charset="utf-8"`

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second
)

const (
	envelopeOff = `<?xml version="1.0" encoding="utf-8"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body><u:SetBinaryState xmlns:u="urn:Belkin:service:basicevent:1"><BinaryState>0</BinaryState></u:SetBinaryState></s:Body></s:Envelope>`
	envelopeOn  = `<?xml version="1.0" encoding="utf-8"?><s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/"><s:Body><u:SetBinaryState xmlns:u="urn:Belkin:service:basicevent:1"><BinaryState>1</BinaryState></u:SetBinaryState></s:Body></s:Envelope>`
)

// Envelope returns the SetBinaryState SOAP envelope for the given state.
// The returned slice is a fresh copy.
func Envelope(state State) []byte {
	if state == StateOn {
		return []byte(envelopeOn)
	}
	return []byte(envelopeOff)
}

// ControlURL derives the basicevent control endpoint from a presentation URL.
// Only the host and port of the presentation URL are used.
func ControlURL(presentationURL string) (string, error) {
	u, err := url.Parse(presentationURL)
	if err != nil {
		return "", NewAddressParseError(presentationURL, err)
	}
	if !u.IsAbs() {
		return "", NewAddressParseError(presentationURL, fmt.Errorf("URL is not absolute"))
	}

	host := u.Hostname()
	if host == "" {
		return "", NewAddressParseError(presentationURL, fmt.Errorf("URL has no host"))
	}

	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", NewAddressParseError(presentationURL, fmt.Errorf("no port and unknown scheme %q", u.Scheme))
		}
	}

	return "http://" + net.JoinHostPort(host, port) + ControlPath, nil
}

// Controller sends SetBinaryState commands to WeMo switches.
//
// Every call opens its own connection and tears it down once the response
// headers arrive; WeMo firmware otherwise keeps the socket open and stops
// accepting further commands.
type Controller struct {
	client  *http.Client
	timeout time.Duration // applied after all options; zero keeps the client's
	logger  *zap.Logger
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithHTTPClient replaces the HTTP client used for commands. A nil client
// keeps the default. The client should not pool connections.
func WithHTTPClient(client *http.Client) ControllerOption {
	return func(c *Controller) {
		c.client = client
	}
}

// WithTimeout sets the request timeout. A client passed with
// WithHTTPClient is copied rather than modified.
func WithTimeout(timeout time.Duration) ControllerOption {
	return func(c *Controller) {
		c.timeout = timeout
	}
}

// WithControllerLogger sets the logger used for command events
func WithControllerLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a controller with a non-pooling HTTP client
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		logger: logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.client == nil:
		c.client = &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DisableKeepAlives: true,
			},
		}
		if c.timeout > 0 {
			c.client.Timeout = c.timeout
		}
	case c.timeout > 0:
		client := *c.client
		client.Timeout = c.timeout
		c.client = &client
	}
	return c
}

// SetState sends the state command to a switch device.
// Any HTTP response counts as delivery; only connection-level failures
// are returned as errors. Nothing is retried.
func (c *Controller) SetState(ctx context.Context, dev *Device, state State) error {
	if dev == nil {
		return fmt.Errorf("device is required")
	}
	if dev.Kind() != KindSwitch {
		return NewNotSwitchError(dev.Name(), dev.Kind())
	}

	target, err := ControlURL(dev.Descriptor().PresentationURL)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Device = dev.Name()
		}
		return err
	}

	status, err := c.send(ctx, target, Envelope(state))
	if err != nil {
		c.logger.Debug("Command failed",
			zap.String("device", dev.Name()),
			zap.String("url", target),
			zap.Error(err),
		)
		terr := NewTransportError(target, err)
		terr.Device = dev.Name()
		return terr
	}

	logging.LogCommand(dev.Name(), target, state.String(), status)
	if status < 200 || status > 299 {
		c.logger.Warn("Device answered command with non-success status",
			zap.String("device", dev.Name()),
			zap.Int("status_code", status),
		)
	}

	return nil
}

// send performs one POST and aborts the connection once the response
// headers have been received.
func (c *Controller) send(ctx context.Context, target string, body []byte) (int, error) {
	ctx, abort := context.WithCancel(ctx)
	defer abort()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}

	// Set directly to keep the exact header casing on the wire
	req.Header["SOAPAction"] = []string{SOAPAction}
	req.Header.Set("Content-Type", ContentType)
	req.ContentLength = int64(len(body))
	req.Close = true

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}

	// The body is not inspected. Cancelling the request context tears the
	// connection down even if the device keeps it open.
	abort()
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}
