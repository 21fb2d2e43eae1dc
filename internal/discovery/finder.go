package discovery

import (
	"fmt"

	"github.com/muurk/wemo/internal/config"
	"github.com/muurk/wemo/internal/wemo"
)

// New builds the finder selected by the discovery configuration
func New(cfg config.Discovery) (wemo.Finder, error) {
	switch cfg.Method {
	case config.MethodSSDP, "":
		f := NewSSDPFinder()
		if cfg.Timeout > 0 {
			f.Timeout = cfg.Timeout
		}
		return f, nil

	case config.MethodMDNS:
		f := NewMDNSFinder()
		if cfg.Timeout > 0 {
			f.Timeout = cfg.Timeout
		}
		if cfg.MDNSService != "" {
			f.Service = cfg.MDNSService
		}
		if cfg.DescriptionPort != 0 {
			f.DescriptionPort = cfg.DescriptionPort
		}
		return f, nil

	case config.MethodStatic:
		if len(cfg.Locations) == 0 {
			return nil, fmt.Errorf("static discovery requires at least one location")
		}
		f := NewStaticFinder(cfg.Locations...)
		if cfg.Timeout > 0 {
			f.Timeout = cfg.Timeout
		}
		return f, nil

	default:
		return nil, fmt.Errorf("unknown discovery method %q", cfg.Method)
	}
}
