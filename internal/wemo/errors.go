package wemo

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeDiscovery indicates the finder itself failed
	ErrTypeDiscovery ErrorType = iota
	// ErrTypeAddressParse indicates a presentation URL could not be turned into host and port
	ErrTypeAddressParse
	// ErrTypeTransport indicates the control request could not be completed
	ErrTypeTransport
	// ErrTypeNotSwitch indicates a control command was aimed at a device that is not a switch
	ErrTypeNotSwitch
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeDiscovery:
		return "Discovery Error"
	case ErrTypeAddressParse:
		return "Address Parse Error"
	case ErrTypeTransport:
		return "Transport Error"
	case ErrTypeNotSwitch:
		return "Not A Switch"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// TransportSubtype narrows down a transport failure
type TransportSubtype int

const (
	TransportGeneral TransportSubtype = iota
	TransportTimeout
	TransportConnectionRefused
	TransportDNS
	TransportHostUnreachable
	TransportNetworkUnreachable
)

// String returns a short name for the subtype
func (st TransportSubtype) String() string {
	switch st {
	case TransportTimeout:
		return "timeout"
	case TransportConnectionRefused:
		return "connection refused"
	case TransportDNS:
		return "dns"
	case TransportHostUnreachable:
		return "host unreachable"
	case TransportNetworkUnreachable:
		return "network unreachable"
	default:
		return "general"
	}
}

// Error is returned by every failing operation in this package.
type Error struct {
	Type    ErrorType        // Category of error
	Message string           // Human-readable error message
	Device  string           // Device friendly name, when known
	Address string           // Presentation or control URL, when known
	Subtype TransportSubtype // Set for ErrTypeTransport
	Err     error            // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewDiscoveryError wraps a finder failure
func NewDiscoveryError(err error) *Error {
	return &Error{
		Type:    ErrTypeDiscovery,
		Message: "device discovery failed",
		Err:     err,
	}
}

// NewAddressParseError reports an unusable presentation URL
func NewAddressParseError(address string, err error) *Error {
	return &Error{
		Type:    ErrTypeAddressParse,
		Message: fmt.Sprintf("cannot derive control endpoint from %q", address),
		Address: address,
		Err:     err,
	}
}

// NewNotSwitchError reports a control command aimed at a non-switch device
func NewNotSwitchError(name string, kind Kind) *Error {
	return &Error{
		Type:    ErrTypeNotSwitch,
		Message: fmt.Sprintf("device %q is a %s, not a switch", name, kind),
		Device:  name,
	}
}

// NewTransportError classifies a connection-level failure
func NewTransportError(address string, err error) *Error {
	subtype := classifyTransport(err)
	return &Error{
		Type:    ErrTypeTransport,
		Message: fmt.Sprintf("control request to %s failed (%s)", address, subtype),
		Address: address,
		Subtype: subtype,
		Err:     err,
	}
}

// classifyTransport analyzes an error and returns a more specific subtype
func classifyTransport(err error) TransportSubtype {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return TransportTimeout
	}
	if os.IsTimeout(err) || errors.Is(err, os.ErrDeadlineExceeded) {
		return TransportTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return TransportDNS
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return TransportConnectionRefused
	case errors.Is(err, syscall.EHOSTUNREACH):
		return TransportHostUnreachable
	case errors.Is(err, syscall.ENETUNREACH):
		return TransportNetworkUnreachable
	}

	return TransportGeneral
}

func isType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsDiscoveryError checks if an error is a discovery failure
func IsDiscoveryError(err error) bool {
	return isType(err, ErrTypeDiscovery)
}

// IsAddressParseError checks if an error is an address parse failure
func IsAddressParseError(err error) bool {
	return isType(err, ErrTypeAddressParse)
}

// IsTransportError checks if an error is a transport failure
func IsTransportError(err error) bool {
	return isType(err, ErrTypeTransport)
}

// IsNotSwitchError checks if an error reports a non-switch target
func IsNotSwitchError(err error) bool {
	return isType(err, ErrTypeNotSwitch)
}

// Hint returns user-friendly troubleshooting advice for an error
func Hint(err error) []string {
	var e *Error
	if !errors.As(err, &e) {
		return []string{"Run with --log-level debug for more detail"}
	}

	switch e.Type {
	case ErrTypeDiscovery:
		return []string{
			"Check that this machine is on the same network segment as the devices",
			"Make sure UDP port 1900 (SSDP) is not blocked by a firewall",
			"Try --method mdns, or list description URLs with --method static",
		}
	case ErrTypeAddressParse:
		return []string{
			"The device advertised a presentation URL without a usable host",
			"Pass the device address directly with --url http://<ip>:<port>/setup.xml",
		}
	case ErrTypeNotSwitch:
		return []string{
			"Only WeMo outlets (controllee devices) accept on/off commands",
			"Run 'wemo scan' to list device kinds",
		}
	case ErrTypeTransport:
		hints := []string{}
		switch e.Subtype {
		case TransportTimeout:
			hints = append(hints, "The device did not answer in time; try a longer --timeout")
		case TransportConnectionRefused:
			hints = append(hints, "WeMo devices move their control port (49152-49154) after a restart; rescan")
		case TransportDNS:
			hints = append(hints, "Use the device IP address instead of a hostname")
		case TransportHostUnreachable, TransportNetworkUnreachable:
			hints = append(hints, "Verify the device is powered on and connected to Wi-Fi")
		default:
			hints = append(hints, "Check your network connection")
		}
		return append(hints, "Commands are not retried automatically")
	default:
		return []string{strings.TrimSpace(e.Message)}
	}
}
