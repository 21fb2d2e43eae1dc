package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// DeviceRow is one line of the device table
type DeviceRow struct {
	Name    string
	Kind    string // "switch" or "sensor"
	Type    string
	Address string
}

// RenderDeviceTable renders discovered devices as a bordered table. An
// empty slice renders a muted notice instead.
func RenderDeviceTable(rows []DeviceRow, width int) string {
	if len(rows) == 0 {
		return StepPendingStyle.PaddingLeft(2).Render("No WeMo devices found")
	}
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(PrimaryColor)).
		Headers("NAME", "KIND", "TYPE", "ADDRESS").
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			if col == 1 && row >= 0 && row < len(rows) {
				switch rows[row].Kind {
				case "switch":
					return SwitchKindStyle
				case "sensor":
					return SensorKindStyle
				}
			}
			return TableCellStyle
		})

	for _, r := range rows {
		t.Row(r.Name, r.Kind, r.Type, r.Address)
	}

	return t.Render()
}
