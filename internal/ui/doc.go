// Package ui provides terminal UI components for the wemo CLI.
//
// Components follow a "run once and exit" pattern: they render polished
// output with Lipgloss but never require interaction, except for the
// overwrite confirmation used by "wemo config init".
//
//   - Header: command banner showing operation name and parameters
//   - Progress: step list showing the status of each stage
//   - Result: success/failure/warning boxes with details and hints
//   - RawOutput: raw SOAP request box for verbose mode
//   - RenderDeviceTable: table of discovered devices
//
// Runner ties these together for the on/off commands, and RunWithSpinner
// shows a Bubble Tea spinner while discovery runs. Both degrade to plain
// output when stdout is not a terminal.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:   "Switch On",
//	    Command: "wemo on \"Desk Lamp\"",
//	    Steps:   []string{"Discovering devices", "Sending command"},
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "2 found")
//	    return nil, nil
//	})
//
// Logging is controlled by the WEMO_LOG_LEVEL environment variable. When
// it is unset zap is silent so the curated output stays clean.
package ui
