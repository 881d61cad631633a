package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/cadence/internal/constants"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-3)
		return m, nil

	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			cmd := m.list.SetItems(msg.items)
			return m, cmd
		}
		return m, nil

	case recordedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = "Recorded " + msg.category.DisplayName() + " at " + msg.event.OccurredAt.In(m.service.Location()).Format(constants.TimeFormat)
		return m, m.load()

	case tickMsg:
		return m, tea.Batch(m.load(), tick())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.status = ""
			return m, m.load()
		case key.Matches(msg, m.keys.Record):
			item, ok := m.list.SelectedItem().(Item)
			if !ok {
				return m, nil
			}
			return m, m.record(item.Category.ID)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}
