package config

import (
	"fmt"
	"time"
)

// Discovery methods
const (
	MethodSSDP   = "ssdp"
	MethodMDNS   = "mdns"
	MethodStatic = "static"
)

// MinSSDPTimeout is the shortest discovery timeout the ssdp method accepts
const MinSSDPTimeout = time.Second

// Config represents the entire user configuration file.
type Config struct {
	Version   int       `yaml:"version" ignored:"true"`
	Discovery Discovery `yaml:"discovery"`
	Control   Control   `yaml:"control"`
	Log       Log       `yaml:"log"`
	MQTT      MQTT      `yaml:"mqtt"`
	HTTP      HTTP      `yaml:"http"`
}

// Discovery selects how devices are found on the network.
type Discovery struct {
	Method    string        `yaml:"method" envconfig:"WEMO_DISCOVERY_METHOD"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"WEMO_DISCOVERY_TIMEOUT"`
	Locations []string      `yaml:"locations,omitempty" envconfig:"WEMO_DISCOVERY_LOCATIONS"` // Description URLs for the static method

	// mDNS only: service to browse and the port serving setup.xml
	MDNSService     string `yaml:"mdns_service" envconfig:"WEMO_MDNS_SERVICE"`
	DescriptionPort int    `yaml:"description_port" envconfig:"WEMO_DESCRIPTION_PORT"`
}

// Control configures switch commands.
type Control struct {
	Timeout time.Duration `yaml:"timeout" envconfig:"WEMO_CONTROL_TIMEOUT"`
}

// Log configures the zap logger.
type Log struct {
	Level string `yaml:"level,omitempty" envconfig:"WEMO_LOG_LEVEL"`
}

// MQTT configures the command bridge.
type MQTT struct {
	Broker      string `yaml:"broker" envconfig:"WEMO_MQTT_BROKER"`
	ClientID    string `yaml:"client_id" envconfig:"WEMO_MQTT_CLIENT_ID"`
	Username    string `yaml:"username,omitempty" envconfig:"WEMO_MQTT_USERNAME"`
	Password    string `yaml:"password,omitempty" envconfig:"WEMO_MQTT_PASSWORD"`
	TopicPrefix string `yaml:"topic_prefix" envconfig:"WEMO_MQTT_TOPIC_PREFIX"`
}

// HTTP configures the control API.
type HTTP struct {
	Listen   string `yaml:"listen" envconfig:"WEMO_HTTP_LISTEN"`
	CertFile string `yaml:"cert_file,omitempty" envconfig:"WEMO_HTTP_CERT_FILE"`
	KeyFile  string `yaml:"key_file,omitempty" envconfig:"WEMO_HTTP_KEY_FILE"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Version: 1,
		Discovery: Discovery{
			Method:          MethodSSDP,
			Timeout:         5 * time.Second,
			MDNSService:     "_http._tcp",
			DescriptionPort: 49153,
		},
		Control: Control{
			Timeout: 10 * time.Second,
		},
		MQTT: MQTT{
			Broker:      "tcp://localhost:1883",
			ClientID:    "wemo-bridge",
			TopicPrefix: "wemo",
		},
		HTTP: HTTP{
			Listen: ":8090",
		},
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Discovery.Method {
	case MethodSSDP, MethodMDNS:
	case MethodStatic:
		if len(c.Discovery.Locations) == 0 {
			return fmt.Errorf("discovery method %q requires at least one location", MethodStatic)
		}
	default:
		return fmt.Errorf("unknown discovery method %q (expected %s, %s or %s)",
			c.Discovery.Method, MethodSSDP, MethodMDNS, MethodStatic)
	}

	if c.Discovery.Timeout <= 0 {
		return fmt.Errorf("discovery timeout must be positive, got %s", c.Discovery.Timeout)
	}
	if c.Discovery.Method == MethodSSDP && c.Discovery.Timeout < MinSSDPTimeout {
		return fmt.Errorf("ssdp discovery timeout must be at least %s, got %s", MinSSDPTimeout, c.Discovery.Timeout)
	}
	if c.Control.Timeout <= 0 {
		return fmt.Errorf("control timeout must be positive, got %s", c.Control.Timeout)
	}
	if c.Discovery.Method == MethodMDNS && (c.Discovery.DescriptionPort <= 0 || c.Discovery.DescriptionPort > 65535) {
		return fmt.Errorf("description port out of range: %d", c.Discovery.DescriptionPort)
	}

	if (c.HTTP.CertFile == "") != (c.HTTP.KeyFile == "") {
		return fmt.Errorf("http cert_file and key_file must be set together")
	}

	return nil
}
