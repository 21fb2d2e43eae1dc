package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/wemo/internal/ui"
	"github.com/muurk/wemo/internal/wemo"
)

// Network is the device source the model browses
type Network interface {
	Discover(ctx context.Context) ([]*wemo.Device, error)
}

// Messages for async operations
type scanCompleteMsg struct {
	devices []*wemo.Device
	err     error
}

type commandDoneMsg struct {
	name  string
	state wemo.State
	err   error
}

// keyMap defines key bindings for the device list
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	On     key.Binding
	Off    key.Binding
	Filter key.Binding
	Rescan key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.On, k.Off, k.Filter, k.Rescan, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Filter},
		{k.On, k.Off, k.Rescan, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		On: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "on"),
		),
		Off: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "off"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Rescan: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rescan"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the interactive device list
type Model struct {
	ctx     context.Context
	network Network

	Scanning bool
	Busy     bool // a command is in flight
	Err      error
	Status   string
	StatusOK bool

	List    list.Model
	Spinner spinner.Model
	Help    help.Model
	Keys    keyMap

	Width  int
	Height int
}

// New creates the model. ctx bounds every discovery and command it runs.
func New(ctx context.Context, network Network) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = ui.SpinnerStyle

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(ui.SuccessColor).
		BorderForeground(ui.SuccessColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		BorderForeground(ui.SuccessColor)

	l := list.New([]list.Item{}, delegate, MinTerminalWidth-4, MinTerminalHeight-8)
	l.Title = "WeMo Devices"
	l.Styles.Title = l.Styles.Title.Background(ui.PrimaryColor)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{
		ctx:      ctx,
		network:  network,
		Scanning: true,
		List:     l,
		Spinner:  s,
		Help:     help.New(),
		Keys:     newKeyMap(),
	}
}

// Init starts the first scan
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.scan(), m.Spinner.Tick)
}

func (m Model) scan() tea.Cmd {
	return func() tea.Msg {
		devices, err := m.network.Discover(m.ctx)
		return scanCompleteMsg{devices: devices, err: err}
	}
}

func (m Model) setState(sw *wemo.Switch, state wemo.State) tea.Cmd {
	return func() tea.Msg {
		err := sw.SetState(m.ctx, state)
		return commandDoneMsg{name: sw.Name(), state: state, err: err}
	}
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While filtering all keys go to the list's text input
		if m.List.FilterState() != list.Filtering {
			if handled, next, cmd := m.handleKey(msg); handled {
				return next, cmd
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.List.SetSize(max(msg.Width-4, 20), max(msg.Height-8, 4))
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := make([]list.Item, 0, len(msg.devices))
		for _, dev := range msg.devices {
			items = append(items, deviceItem{device: dev})
		}
		cmd = m.List.SetItems(items)
		return m, cmd

	case commandDoneMsg:
		m.Busy = false
		if msg.err != nil {
			m.Status = fmt.Sprintf("%s: %v", msg.name, msg.err)
			m.StatusOK = false
		} else {
			m.Status = fmt.Sprintf("%s switched %s", msg.name, msg.state)
			m.StatusOK = true
		}
		return m, nil

	case spinner.TickMsg:
		if !m.Scanning && !m.Busy {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	m.List, cmd = m.List.Update(msg)
	return m, cmd
}

// handleKey applies model-level bindings. Unhandled keys fall through to
// the list for navigation and filtering.
func (m Model) handleKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		// esc clears an applied filter before quitting
		if msg.String() == "esc" && m.List.FilterState() == list.FilterApplied {
			return false, m, nil
		}
		return true, m, tea.Quit

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return true, m, nil
		}
		m.Scanning = true
		m.Err = nil
		m.Status = ""
		cmd := m.List.SetItems(nil)
		return true, m, tea.Batch(cmd, m.scan(), m.Spinner.Tick)

	case key.Matches(msg, m.Keys.On):
		next, cmd := m.command(wemo.StateOn)
		return true, next, cmd

	case key.Matches(msg, m.Keys.Off):
		next, cmd := m.command(wemo.StateOff)
		return true, next, cmd
	}
	return false, m, nil
}

// command switches the selected device, refusing sensors and overlapping
// commands.
func (m Model) command(state wemo.State) (tea.Model, tea.Cmd) {
	if m.Scanning || m.Busy {
		return m, nil
	}
	item, ok := m.List.SelectedItem().(deviceItem)
	if !ok {
		return m, nil
	}

	sw, ok := item.device.AsSwitch()
	if !ok {
		m.Status = wemo.NewNotSwitchError(item.device.Name(), item.device.Kind()).Error()
		m.StatusOK = false
		return m, nil
	}

	m.Busy = true
	m.Status = fmt.Sprintf("Switching %s %s...", sw.Name(), state)
	m.StatusOK = true
	return m, tea.Batch(m.setState(sw, state), m.Spinner.Tick)
}

// View renders the screen
func (m Model) View() string {
	var b strings.Builder

	switch {
	case m.Scanning:
		b.WriteString(TitleStyle.Render(m.Spinner.View() + " SEARCHING FOR WEMO DEVICES"))
		b.WriteString("\n\n")
		b.WriteString("  " + SubtitleStyle.Render("Waiting for devices to answer the search..."))
		b.WriteString("\n")

	case m.Err != nil:
		b.WriteString("\n")
		b.WriteString(StatusErrorStyle.Render(ui.FailureMarker + " Scan failed: " + m.Err.Error()))
		b.WriteString("\n\n")
		for _, hint := range wemo.Hint(m.Err) {
			b.WriteString(HintStyle.Render("• " + hint))
			b.WriteString("\n")
		}

	case len(m.List.Items()) == 0:
		b.WriteString("\n")
		b.WriteString(NoticeStyle.Render("⚠ No WeMo devices found on your network"))
		b.WriteString("\n\n")
		b.WriteString(HintStyle.Render("• Press r to search again"))
		b.WriteString("\n")

	default:
		b.WriteString(m.List.View())
		b.WriteString("\n")
	}

	if m.Status != "" {
		b.WriteString("\n")
		line := m.Status
		if m.Busy {
			line = m.Spinner.View() + " " + line
		}
		if m.StatusOK {
			b.WriteString(StatusOKStyle.Render(line))
		} else {
			b.WriteString(StatusErrorStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return renderContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}

// Run shows the interactive device list until the user quits
func Run(ctx context.Context, network Network) error {
	p := tea.NewProgram(New(ctx, network), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
