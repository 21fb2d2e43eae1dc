// Package tui provides the interactive full-screen device list shown when
// wemo runs without a subcommand on a terminal.
//
// The model discovers devices on start, lists them with bubbles/list, and
// switches the selected outlet with o (on) and f (off). r rescans and /
// filters by name. Commands run one at a time; sensors are listed but
// refuse commands.
//
// Every screen is wrapped by renderContainer, which draws the header,
// the key help footer and the outer border.
package tui
