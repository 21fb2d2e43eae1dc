package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/muurk/wemo/internal/bridge"
	"github.com/muurk/wemo/internal/config"
	"github.com/muurk/wemo/internal/discovery"
	"github.com/muurk/wemo/internal/logging"
	"github.com/muurk/wemo/internal/server"
	"github.com/muurk/wemo/internal/ui"
	"github.com/muurk/wemo/internal/urls"
	"github.com/muurk/wemo/internal/wemo"
)

// Command flags
var (
	scanFormat  string
	verbose     bool
	mqttBroker  string
	mqttPrefix  string
	httpListen  string
	httpCert    string
	httpKey     string
	forceConfig bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(offCmd)
	rootCmd.AddCommand(bridgeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)

	scanCmd.Flags().StringVar(&scanFormat, "format", "table", "Output format (table, json)")

	for _, c := range []*cobra.Command{onCmd, offCmd} {
		c.Flags().BoolVar(&verbose, "verbose", false, "Show the SOAP request sent to the device")
	}

	bridgeCmd.Flags().StringVar(&mqttBroker, "broker", "", "MQTT broker URL (e.g. tcp://localhost:1883)")
	bridgeCmd.Flags().StringVar(&mqttPrefix, "prefix", "", "MQTT topic prefix")

	serveCmd.Flags().StringVar(&httpListen, "listen", "", "Listen address (e.g. :8090)")
	serveCmd.Flags().StringVar(&httpCert, "cert", "", "TLS certificate file")
	serveCmd.Flags().StringVar(&httpKey, "key", "", "TLS private key file")

	configInitCmd.Flags().BoolVar(&forceConfig, "force", false, "Overwrite an existing config file without asking")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}

// newController builds the SOAP controller from the effective config
func newController(c *config.Config) *wemo.Controller {
	return wemo.NewController(
		wemo.WithTimeout(c.Control.Timeout),
		wemo.WithControllerLogger(logging.GetLogger()),
	)
}

// newRegistry builds a registry over the configured finder
func newRegistry(c *config.Config) (*wemo.Registry, error) {
	finder, err := discovery.New(c.Discovery)
	if err != nil {
		return nil, err
	}
	return wemo.NewRegistry(finder,
		wemo.WithController(newController(c)),
		wemo.WithRegistryLogger(logging.GetLogger()),
	), nil
}

// scanCmd discovers devices on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List WeMo devices on the network",
	Long: `Search the network for Belkin WeMo devices and list every switch
and sensor found. Other UPnP devices are ignored.`,
	Example: `  # Scan with SSDP (default)
  wemo scan

  # Scan with mDNS for 10 seconds
  wemo scan --method mdns --timeout 10s

  # JSON output for scripting
  wemo scan --format json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	if scanFormat == "json" {
		devices, err := reg.Discover(cmd.Context())
		if err != nil {
			return err
		}
		views := make([]server.DeviceView, 0, len(devices))
		for _, dev := range devices {
			views = append(views, server.NewDeviceView(dev))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}
	if scanFormat != "table" {
		return fmt.Errorf("unknown output format %q", scanFormat)
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("Device Scan", "wemo scan",
		ui.Param{Key: "Method", Value: cfg.Discovery.Method},
		ui.Param{Key: "Timeout", Value: cfg.Discovery.Timeout.String()},
	)

	var devices []*wemo.Device
	err = ui.RunWithSpinner(cmd.Context(), os.Stdout, "Searching for WeMo devices...", func(ctx context.Context) error {
		var err error
		devices, err = reg.Discover(ctx)
		return err
	})
	if err != nil {
		p.PrintError("Discovery failed", err, troubleshooting(err))
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(devices) == 0 {
		p.PrintWarning("No WeMo devices found",
			ui.Param{Key: "Method", Value: cfg.Discovery.Method},
			ui.Param{Key: "Help", Value: urls.DiscoveryTroubleshooting},
		)
		return nil
	}

	p.PrintDevices(deviceRows(devices))
	p.Newline()
	p.Println(ui.StepNoteStyle.Render(fmt.Sprintf("  %d device(s). Use 'wemo on <name>' to switch an outlet.", len(devices))))
	return nil
}

// deviceRows converts devices to table rows, in discovery order
func deviceRows(devices []*wemo.Device) []ui.DeviceRow {
	rows := make([]ui.DeviceRow, 0, len(devices))
	for _, dev := range devices {
		desc := dev.Descriptor()
		address := desc.PresentationURL
		if u, err := url.Parse(desc.PresentationURL); err == nil && u.Host != "" {
			address = u.Host
		}
		rows = append(rows, ui.DeviceRow{
			Name:    dev.Name(),
			Kind:    dev.Kind().String(),
			Type:    desc.Type,
			Address: address,
		})
	}
	return rows
}

var onCmd = &cobra.Command{
	Use:   "on <name>",
	Short: "Switch a WeMo outlet on",
	Long: `Find the WeMo switch with the given friendly name and switch it on.

The name must match exactly. With --url the device is addressed
directly and discovery is skipped; the name is then optional.`,
	Example: `  wemo on "Desk Lamp"
  wemo on --url http://192.168.1.40:49153/setup.xml
  wemo on "Desk Lamp" --verbose`,
	Args: switchArgs,
	RunE: runSetState(wemo.StateOn),
}

var offCmd = &cobra.Command{
	Use:   "off <name>",
	Short: "Switch a WeMo outlet off",
	Long: `Find the WeMo switch with the given friendly name and switch it off.

The name must match exactly. With --url the device is addressed
directly and discovery is skipped; the name is then optional.`,
	Example: `  wemo off "Desk Lamp"
  wemo off --url http://192.168.1.40:49153/setup.xml`,
	Args: switchArgs,
	RunE: runSetState(wemo.StateOff),
}

func switchArgs(cmd *cobra.Command, args []string) error {
	if deviceURL != "" {
		return cobra.MaximumNArgs(1)(cmd, args)
	}
	return cobra.ExactArgs(1)(cmd, args)
}

func runSetState(state wemo.State) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}

		params := []ui.Param{{Key: "State", Value: state.String()}}
		firstStep := "Discovering devices"
		if deviceURL != "" {
			params = append(params, ui.Param{Key: "URL", Value: deviceURL})
			firstStep = "Resolving device"
		} else {
			params = append(params, ui.Param{Key: "Method", Value: cfg.Discovery.Method})
		}

		command := "wemo " + state.String()
		if name != "" {
			command += fmt.Sprintf(" %q", name)
		}
		title := "Switch " + strings.ToUpper(state.String()[:1]) + state.String()[1:]
		runner := ui.NewRunner(ui.RunnerConfig{
			Title:           title,
			Command:         command,
			Params:          params,
			Steps:           []string{firstStep, "Sending SetBinaryState"},
			Verbose:         verbose,
			Troubleshooting: troubleshooting,
		})

		return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
			onStep(1, ui.StepRunning, "")
			sw, err := resolveSwitch(ctx, name)
			if err != nil {
				onStep(1, ui.StepFailed, "")
				return nil, err
			}
			presentation := sw.Device().Descriptor().PresentationURL
			onStep(1, ui.StepComplete, presentation)

			if target, err := wemo.ControlURL(presentation); err == nil {
				runner.SetRawOutput("SOAP Request", soapRequest(target, state))
			}

			onStep(2, ui.StepRunning, "")
			if err := sw.SetState(ctx, state); err != nil {
				onStep(2, ui.StepFailed, "")
				return nil, err
			}
			onStep(2, ui.StepComplete, "")

			return []ui.Param{
				{Key: "Device", Value: sw.Name()},
				{Key: "State", Value: state.String()},
			}, nil
		})
	}
}

// resolveSwitch finds the named switch, or wraps --url directly
func resolveSwitch(ctx context.Context, name string) (*wemo.Switch, error) {
	if deviceURL != "" {
		return directSwitch(deviceURL, name, newController(cfg))
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}
	sw, err := reg.FindSwitch(ctx, name)
	if err != nil {
		return nil, err
	}
	if sw == nil {
		return nil, fmt.Errorf("no WeMo device named %q", name)
	}
	return sw, nil
}

// directSwitch treats location as the address of a switch without
// fetching its description.
func directSwitch(location, name string, ctl *wemo.Controller) (*wemo.Switch, error) {
	if name == "" {
		name = location
	}
	dev, err := wemo.NewSwitchDevice(&wemo.Descriptor{
		Type:            wemo.VendorPrefix + "device:controllee:1",
		FriendlyName:    name,
		PresentationURL: location,
		Location:        location,
	}, ctl)
	if err != nil {
		return nil, err
	}
	sw, _ := dev.AsSwitch()
	return sw, nil
}

// soapRequest renders the control request for verbose output
func soapRequest(target string, state wemo.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "POST %s\n", target)
	fmt.Fprintf(&b, "SOAPAction: %s\n", wemo.SOAPAction)
	fmt.Fprintf(&b, "Content-Type: %s\n\n", wemo.ContentType)
	b.Write(wemo.Envelope(state))
	return b.String()
}

// troubleshooting returns hints for a failed command
func troubleshooting(err error) []string {
	var werr *wemo.Error
	if !errors.As(err, &werr) {
		return []string{
			"Run 'wemo scan' to list device names",
			"Names are case sensitive and must match exactly",
		}
	}

	hints := wemo.Hint(err)
	switch werr.Type {
	case wemo.ErrTypeDiscovery:
		hints = append(hints, "See: "+urls.DiscoveryTroubleshooting)
	case wemo.ErrTypeTransport, wemo.ErrTypeAddressParse:
		hints = append(hints, "See: "+urls.ControlTroubleshooting)
	}
	return hints
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Bridge MQTT commands to WeMo switches",
	Long: `Connect to an MQTT broker and switch WeMo outlets on command.

Publish ON or OFF to <prefix>/<name>/set. The new state is published,
retained, to <prefix>/<name>/state, and failures to <prefix>/<name>/error.
Bridge availability is published to <prefix>/status.`,
	Example: `  wemo bridge --broker tcp://localhost:1883
  mosquitto_pub -t "wemo/Desk Lamp/set" -m ON`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func runBridge(cmd *cobra.Command, args []string) error {
	if mqttBroker != "" {
		cfg.MQTT.Broker = mqttBroker
	}
	if mqttPrefix != "" {
		cfg.MQTT.TopicPrefix = mqttPrefix
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("MQTT Bridge", "wemo bridge",
		ui.Param{Key: "Broker", Value: cfg.MQTT.Broker},
		ui.Param{Key: "Prefix", Value: cfg.MQTT.TopicPrefix},
		ui.Param{Key: "Method", Value: cfg.Discovery.Method},
	)

	client, err := bridge.Connect(cfg.MQTT)
	if err != nil {
		p.PrintError("Bridge failed", err, []string{
			"Check the broker address and credentials",
			"See: " + urls.MQTTBridge,
		})
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logging.Warn("MQTT close failed", zap.Error(err))
		}
	}()

	ctx := cmd.Context()
	b := bridge.New(reg, client, cfg.MQTT.TopicPrefix)
	if err := b.Start(ctx, client); err != nil {
		p.PrintError("Bridge failed", err, nil)
		return err
	}

	p.PrintSuccess("Bridge running",
		ui.Param{Key: "Commands", Value: bridge.CommandFilter(cfg.MQTT.TopicPrefix)},
		ui.Param{Key: "Status", Value: bridge.StatusTopic(cfg.MQTT.TopicPrefix)},
		ui.Param{Key: "Stop", Value: "Ctrl+C"},
	)

	<-ctx.Done()
	p.Println(ui.StepNoteStyle.Render("  Bridge stopped."))
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP control API",
	Long: `Serve a small HTTP API for listing and switching WeMo devices.

  GET  /devices                list devices
  GET  /devices/{name}         one device
  POST /devices/{name}/on|off  switch an outlet
  GET  /events                 websocket stream of state changes`,
	Example: `  wemo serve --listen :8090
  curl -X POST "http://localhost:8090/devices/Desk%20Lamp/on"`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if httpListen != "" {
		cfg.HTTP.Listen = httpListen
	}
	if httpCert != "" || httpKey != "" {
		cfg.HTTP.CertFile = httpCert
		cfg.HTTP.KeyFile = httpKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}

	tlsState := "off"
	if cfg.HTTP.CertFile != "" {
		tlsState = "on"
	}

	p := ui.NewPrinter(os.Stdout)
	p.PrintHeader("HTTP API", "wemo serve",
		ui.Param{Key: "Listen", Value: cfg.HTTP.Listen},
		ui.Param{Key: "TLS", Value: tlsState},
		ui.Param{Key: "Docs", Value: urls.HTTPAPI},
	)

	srv := server.New(server.Config{
		Listen:   cfg.HTTP.Listen,
		CertFile: cfg.HTTP.CertFile,
		KeyFile:  cfg.HTTP.KeyFile,
	}, reg)
	return srv.Start(cmd.Context())
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a configuration file with default values. Global flags such
as --method and --timeout are applied before saving.`,
	Args: cobra.NoArgs,
	// The existing file may be invalid, so it is not loaded
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	RunE: runConfigInit,
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !forceConfig {
		if !ui.Confirm(os.Stdin, os.Stdout, "Config file exists", []string{path}, "Overwrite it?") {
			return nil
		}
	}

	c := config.Default()
	if err := flagOverrides(cmd).apply(c); err != nil {
		return err
	}
	if err := c.Save(path); err != nil {
		return err
	}

	ui.NewPrinter(os.Stdout).PrintSuccess("Configuration written",
		ui.Param{Key: "Path", Value: path},
		ui.Param{Key: "Method", Value: c.Discovery.Method},
	)
	return nil
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  `Print the configuration after file, environment and flag overrides.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(redacted(cfg))
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// redacted returns a copy of c with secrets masked
func redacted(c *config.Config) *config.Config {
	out := *c
	if out.MQTT.Password != "" {
		out.MQTT.Password = "********"
	}
	return &out
}
