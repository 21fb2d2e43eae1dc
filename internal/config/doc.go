// Package config loads the wemo configuration.
//
// Configuration is read from a YAML file, then WEMO_* environment variables
// (optionally from a .env file) override individual values. A missing file
// at the default location is not an error; the defaults are used instead.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/wemo/config.yaml or $HOME/.config/wemo/config.yaml
//   - macOS: $HOME/.config/wemo/config.yaml
//   - Windows: %LOCALAPPDATA%\wemo\config.yaml
//
// # Example
//
//	version: 1
//	discovery:
//	  method: static
//	  timeout: 5s
//	  locations:
//	    - http://192.168.1.40:49153/setup.xml
//	control:
//	  timeout: 10s
//	mqtt:
//	  broker: tcp://localhost:1883
//	  topic_prefix: wemo
package config
