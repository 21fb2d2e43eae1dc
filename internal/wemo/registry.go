package wemo

import (
	"context"

	"go.uber.org/zap"

	"github.com/muurk/wemo/internal/logging"
)

// searchDepth limits discovery to root devices
const searchDepth = 1

// Registry discovers WeMo devices through a Finder.
// It keeps no state between calls; every query runs a fresh discovery.
type Registry struct {
	finder     Finder
	controller *Controller
	logger     *zap.Logger
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

// WithController sets the controller handed to discovered switches
func WithController(ctl *Controller) RegistryOption {
	return func(r *Registry) {
		r.controller = ctl
	}
}

// WithRegistryLogger sets the logger used for discovery events
func WithRegistryLogger(logger *zap.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates a registry backed by finder
func NewRegistry(finder Finder, opts ...RegistryOption) *Registry {
	r := &Registry{
		finder: finder,
		logger: logging.GetLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.controller == nil {
		r.controller = NewController(WithControllerLogger(r.logger))
	}
	return r
}

// Discover returns every WeMo switch and sensor the finder reports,
// in discovery order. Finder failures are returned unchanged inside an
// ErrTypeDiscovery error.
func (r *Registry) Discover(ctx context.Context) ([]*Device, error) {
	descs, err := r.finder.FindByType(ctx, RootDeviceType, searchDepth)
	if err != nil {
		return nil, NewDiscoveryError(err)
	}

	devices := make([]*Device, 0, len(descs))
	for _, desc := range descs {
		if !InNamespace(desc) {
			continue
		}

		kind := Classify(desc)
		if kind == KindUnknown {
			r.logger.Debug("Skipping unsupported WeMo device",
				zap.String("type", desc.Type),
				zap.String("name", desc.FriendlyName),
			)
			continue
		}

		devices = append(devices, newDevice(kind, desc, r.controller))
	}

	logging.LogDiscovery(RootDeviceType, len(descs), len(devices))
	return devices, nil
}

// FindByName runs a discovery and returns the first device whose friendly
// name matches exactly. It returns nil, nil when nothing matches.
func (r *Registry) FindByName(ctx context.Context, name string) (*Device, error) {
	devices, err := r.Discover(ctx)
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name() == name {
			return dev, nil
		}
	}
	return nil, nil
}

// Switches runs a discovery and returns only the switches
func (r *Registry) Switches(ctx context.Context) ([]*Switch, error) {
	devices, err := r.Discover(ctx)
	if err != nil {
		return nil, err
	}
	switches := make([]*Switch, 0, len(devices))
	for _, dev := range devices {
		if sw, ok := dev.AsSwitch(); ok {
			switches = append(switches, sw)
		}
	}
	return switches, nil
}

// FindSwitch resolves a name to a switch. It returns nil, nil when no
// device has that name and an ErrTypeNotSwitch error when the device
// exists but is not a switch.
func (r *Registry) FindSwitch(ctx context.Context, name string) (*Switch, error) {
	dev, err := r.FindByName(ctx, name)
	if err != nil || dev == nil {
		return nil, err
	}
	sw, ok := dev.AsSwitch()
	if !ok {
		return nil, NewNotSwitchError(dev.Name(), dev.Kind())
	}
	return sw, nil
}
