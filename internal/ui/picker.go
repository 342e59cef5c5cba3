package ui

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/escl/internal/discovery"
)

// ErrNoSelection is returned by PickDevice when the user quits without
// choosing a scanner
var ErrNoSelection = errors.New("no scanner selected")

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

// FilterValue implements list.Item
func (d deviceItem) FilterValue() string {
	return d.device.Name + " " + d.device.Instance + " " + d.device.IP
}

// Title returns the scanner name for list display
func (d deviceItem) Title() string {
	if d.device.Name == "" {
		return d.device.Instance
	}
	return d.device.Name
}

// Description returns the instance and address for list display
func (d deviceItem) Description() string {
	return fmt.Sprintf("%s • %s", d.device.Instance, d.device.BaseURL())
}

// pickerKeyMap defines key bindings beyond the list's own navigation
type pickerKeyMap struct {
	Choose key.Binding
	Quit   key.Binding
}

func newPickerKeyMap() pickerKeyMap {
	return pickerKeyMap{
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "use scanner"),
		),
		Quit: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// PickerModel lets the user choose one of several discovered scanners
type PickerModel struct {
	list   list.Model
	keys   pickerKeyMap
	chosen *discovery.Device
}

// NewPickerModel builds the picker for devices
func NewPickerModel(devices []*discovery.Device) PickerModel {
	items := make([]list.Item, len(devices))
	for i, d := range devices {
		items[i] = deviceItem{device: d}
	}

	keys := newPickerKeyMap()
	width, height := GetTerminalSize()

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(PrimaryColor).BorderForeground(PrimaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(MutedColor).BorderForeground(PrimaryColor)

	l := list.New(items, delegate, width, height-2)
	l.Title = fmt.Sprintf("Found %d scanners - pick one", len(devices))
	l.Styles.Title = HeaderTitleStyle.Background(PrimaryColor)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Choose, keys.Quit}
	}

	return PickerModel{list: l, keys: keys}
}

// Chosen returns the selected device, or nil
func (m PickerModel) Chosen() *discovery.Device {
	return m.chosen
}

// Init implements tea.Model
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// Keys belong to the filter input while it is open
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Choose):
			if item, ok := m.list.SelectedItem().(deviceItem); ok {
				m.chosen = item.device
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m PickerModel) View() string {
	return m.list.View()
}

// PickDevice runs the picker on the terminal and returns the chosen device.
// Output goes to w so stdout can stay reserved for data.
func PickDevice(devices []*discovery.Device, w io.Writer) (*discovery.Device, error) {
	p := tea.NewProgram(NewPickerModel(devices), tea.WithOutput(w), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("scanner picker failed: %w", err)
	}
	if chosen := final.(PickerModel).Chosen(); chosen != nil {
		return chosen, nil
	}
	return nil, ErrNoSelection
}
