package ui

import (
	"strconv"
	"strings"
)

// RawOutput is a box for displaying raw protocol text, such as the
// SOAP envelope sent to a device in verbose mode.
type RawOutput struct {
	Title    string
	Content  string
	Width    int
	MaxLines int // 0 = unlimited
}

// NewRawOutput creates a new raw output box
func NewRawOutput(title, content string) *RawOutput {
	return &RawOutput{
		Title:   title,
		Content: content,
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (o *RawOutput) SetWidth(width int) *RawOutput {
	o.Width = width
	return o
}

// SetMaxLines limits the number of lines displayed
func (o *RawOutput) SetMaxLines(max int) *RawOutput {
	o.MaxLines = max
	return o
}

// Render returns the styled box
func (o *RawOutput) Render() string {
	width := o.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	lines := strings.Split(strings.TrimRight(o.Content, "\n"), "\n")
	if o.MaxLines > 0 && len(lines) > o.MaxLines {
		omitted := len(lines) - o.MaxLines
		lines = append(lines[:o.MaxLines], StepNoteStyle.Render("... "+strconv.Itoa(omitted)+" more lines"))
	}

	body := RawOutputTitleStyle.Render(o.Title) + "\n" + RawOutputContentStyle.Render(strings.Join(lines, "\n"))
	return RawOutputBoxStyle(width).Render(body)
}

// String implements fmt.Stringer
func (o *RawOutput) String() string {
	return o.Render()
}
