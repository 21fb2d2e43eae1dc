package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a single command execution
type RunnerConfig struct {
	Title   string    // Command title (e.g., "Switch On")
	Command string    // Full command (e.g., "wemo on \"Desk Lamp\"")
	Params  []Param   // Parameters to display in header
	Steps   []string  // Names for each step
	Verbose bool      // Whether to show raw protocol output
	Output  io.Writer // Output writer (default: os.Stdout)
	Width   int       // Render width (default: terminal width)

	// Troubleshooting returns tips shown when the operation fails
	Troubleshooting func(err error) []string
}

// Operation is the function signature for the work a Runner wraps. It
// reports progress through onStep and returns extra result details.
type Operation func(ctx context.Context, onStep StepCallback) ([]Param, error)

// Runner orchestrates the header → steps → result flow of a command.
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int

	rawTitle string
	raw      string
}

// NewRunner creates a new runner for a command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := config.Width
	if width == 0 {
		width = GetTerminalWidth()
	}

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params...).SetWidth(width),
		progress: NewProgress(config.Steps...),
		output:   config.Output,
		width:    width,
	}
}

// SetRawOutput stores protocol text for verbose display
func (r *Runner) SetRawOutput(title, content string) {
	r.rawTitle = title
	r.raw = content
}

// Run prints the header, executes the operation and prints the result.
// The operation's error is returned unchanged.
func (r *Runner) Run(ctx context.Context, op Operation) error {
	start := time.Now()

	r.println(r.header.Render())
	r.println("")

	details, err := op(ctx, r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	r.println("")
	if err != nil {
		var tips []string
		if r.config.Troubleshooting != nil {
			tips = r.config.Troubleshooting(err)
		}
		r.println(NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width).Render())
	} else {
		details = append(details, Param{Key: "Duration", Value: duration.String()})
		r.println(NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width).Render())
	}

	if r.config.Verbose && r.raw != "" {
		r.println("")
		r.println(NewRawOutput(r.rawTitle, r.raw).SetWidth(r.width).Render())
	}

	return err
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, status, message)
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	// Only settled steps are printed so output stays readable when piped
	switch status {
	case StepComplete, StepFailed, StepSkipped:
		r.println(r.progress.renderStepLine(r.progress.Steps[stepNumber-1]))
	}
}

func (r *Runner) println(s string) {
	_, _ = fmt.Fprintln(r.output, s)
}
