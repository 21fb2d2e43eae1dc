// Wemo discovers and controls Belkin WeMo devices on the local network.
//
// It finds devices with SSDP (or mDNS, or a static list of description
// URLs), switches WeMo outlets on and off with the basicevent SOAP
// service, and can run as an MQTT bridge or a small HTTP control API.
//
// Usage:
//
//	wemo [command] [flags]
//
// See 'wemo --help' for available commands.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/wemo/internal/config"
	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/tui"
	"github.com/muurk/wemo/internal/ui"
	"github.com/muurk/wemo/internal/urls"
	"github.com/muurk/wemo/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	configPath string
	logLevel   string
	method     string
	timeout    time.Duration
	deviceURL  string
)

// cfg is the effective configuration, loaded before every command runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wemo",
	Short: "Belkin WeMo discovery and control",
	Long: `Discover Belkin WeMo devices on the local network and switch
WeMo outlets on and off.

Devices are found with SSDP by default. Use --method mdns or
--method static when multicast SSDP is filtered on your network.

Configuration is read from the file given with --config, or from the
default location shown by 'wemo config path'. WEMO_* environment
variables override file values, and flags override both.

Run without a command on a terminal to open the interactive device list.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: interactive device list when attached to a terminal
		if !ui.IsTerminal(os.Stdout) {
			return cmd.Help()
		}
		reg, err := newRegistry(cfg)
		if err != nil {
			return err
		}
		return tui.Run(cmd.Context(), reg)
	},
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")
	rootCmd.PersistentFlags().StringVar(&method, "method", "", "Discovery method (ssdp, mdns, static)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Discovery and command timeout (e.g. 5s)")
	rootCmd.PersistentFlags().StringVar(&deviceURL, "url", "", "Device description URL; skips discovery (e.g. http://10.0.0.5:49153/setup.xml)")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the config file, applies flag overrides and
// initializes logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := flagOverrides(cmd).apply(loaded); err != nil {
		return err
	}
	cfg = loaded

	level := logLevel
	if level == "" {
		level = cfg.Log.Level
	}
	return logging.Initialize(level)
}

// overrides holds the global flags that replace configuration values
type overrides struct {
	method  string
	timeout time.Duration
	url     string
}

func flagOverrides(cmd *cobra.Command) overrides {
	var o overrides
	flags := cmd.Flags()
	if flags.Changed("method") {
		o.method = method
	}
	if flags.Changed("timeout") {
		o.timeout = timeout
	}
	o.url = deviceURL
	return o
}

// apply writes the overrides into c and validates the result. A device
// URL selects static discovery of that single location.
func (o overrides) apply(c *config.Config) error {
	if o.method != "" {
		c.Discovery.Method = o.method
	}
	if o.timeout != 0 {
		c.Discovery.Timeout = o.timeout
		c.Control.Timeout = o.timeout
	}
	if o.url != "" {
		c.Discovery.Method = config.MethodStatic
		c.Discovery.Locations = []string{o.url}
	}
	return c.Validate()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wemo %s\n", version.Full())
		fmt.Printf("%s\n", urls.Repository)
	},
}
