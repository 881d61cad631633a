package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/cadence/internal/logger"
	"github.com/julianstephens/cadence/internal/models"
	"github.com/julianstephens/cadence/internal/predict"
	"github.com/julianstephens/cadence/internal/tracking"
)

const refreshInterval = time.Minute

// CategoryLister supplies the categories shown on the dashboard.
type CategoryLister interface {
	GetAllCategories() ([]models.Category, error)
}

type loadedMsg struct {
	items []list.Item
	err   error
}

type recordedMsg struct {
	event    models.Event
	category models.Category
	err      error
}

type tickMsg time.Time

// Model is the prediction dashboard.
type Model struct {
	store    CategoryLister
	service  *predict.Service
	tracker  *tracking.Tracker
	list     list.Model
	keys     KeyMap
	help     help.Model
	status   string
	err      error
	loaded   bool
	quitting bool
	width    int
	height   int
}

func NewModel(store CategoryLister, service *predict.Service, tracker *tracking.Tracker) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	return Model{
		store:   store,
		service: service,
		tracker: tracker,
		list:    l,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

// load reads every category's prediction; cached results are reused.
func (m Model) load() tea.Cmd {
	store, service := m.store, m.service
	return func() tea.Msg {
		categories, err := store.GetAllCategories()
		if err != nil {
			return loadedMsg{err: fmt.Errorf("failed to load categories: %w", err)}
		}
		now := service.Now()
		items := make([]list.Item, 0, len(categories))
		for _, c := range categories {
			res, err := service.GetPrediction(context.Background(), c.ID)
			if err != nil {
				logger.Warn("Dashboard prediction failed", "category", c.ID, "error", err)
			}
			items = append(items, Item{
				Category: c,
				Result:   res,
				Err:      err,
				Now:      now,
				Location: service.Location(),
			})
		}
		return loadedMsg{items: items}
	}
}

func (m Model) record(categoryID string) tea.Cmd {
	tracker := m.tracker
	return func() tea.Msg {
		ev, c, err := tracker.Record(categoryID, time.Time{})
		return recordedMsg{event: ev, category: c, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the dashboard and blocks until the user quits.
func Run(store CategoryLister, service *predict.Service, tracker *tracking.Tracker) error {
	_, err := tea.NewProgram(NewModel(store, service, tracker), tea.WithAltScreen()).Run()
	return err
}
