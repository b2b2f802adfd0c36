package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/vuciv/true-random-shuffle/internal/engine"
	"github.com/vuciv/true-random-shuffle/internal/models"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	ConfirmView
	ShuffleView
	ResultView
)

// PlaylistSource supplies the playlist listing, liked-songs sentinel
// included. Satisfied by [catalog.Catalog].
type PlaylistSource interface {
	Playlists(ctx context.Context) ([]models.Playlist, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	source   PlaylistSource
	engine   *engine.Engine
	width    int
	height   int
	list     list.Model
	selected models.Playlist
	run      *engine.Run
	progress engine.Update
	started  bool
	err      error
	help     help.Model
	keys     keyMap
}

type playlistsFetchedMsg struct {
	playlists []models.Playlist
	err       error
}

type progressUpdateMsg engine.Update

type shuffleDoneMsg struct {
	started bool
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, source PlaylistSource, eng *engine.Engine) *Model {
	return &Model{
		ctx:    ctx,
		view:   PlaylistListView,
		source: source,
		engine: eng,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init initializes the TUI by fetching the playlist listing.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.list.Width() == 0 {
			m.list.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handleListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.list = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.list.Title = "Shuffle what?"
		m.list.SetSize(m.width-4, m.height-8)
		return m, nil

	case progressUpdateMsg:
		m.progress = engine.Update(msg)
		return m, m.waitForUpdate()

	case shuffleDoneMsg:
		m.started = msg.started
		m.err = msg.err
		m.run = nil
		m.view = ResultView
		return m, nil
	}

	if m.view == PlaylistListView {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderList()
	case ConfirmView:
		return m.renderConfirm()
	case ShuffleView:
		return m.renderShuffle()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		if item, ok := m.list.SelectedItem().(playlistItem); ok {
			m.selected = item.playlist
			m.view = ConfirmView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PlaylistListView
		return m, nil
	case "y", "enter":
		m.view = ShuffleView
		return m, m.startShuffle()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.selected = models.Playlist{}
		m.progress = engine.Update{}
		m.started = false
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.source.Playlists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) startShuffle() tea.Cmd {
	run, err := m.engine.Shuffle(m.ctx, engine.Request{Playlist: m.selected})
	if err != nil {
		return func() tea.Msg {
			return shuffleDoneMsg{err: err}
		}
	}
	m.run = run
	return m.waitForUpdate()
}

// waitForUpdate relays one engine event into the bubbletea loop. When the
// run's channel closes, the run outcome becomes the terminal message.
func (m *Model) waitForUpdate() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		if run == nil {
			return shuffleDoneMsg{}
		}
		update, ok := <-run.Updates()
		if !ok {
			started, err := run.Wait()
			return shuffleDoneMsg{started: started, err: err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	body := fmt.Sprintf("%s\n\n%s", m.list.View(), helpView)
	if m.engine.NeedsReauth() {
		body = fmt.Sprintf("%s\n%s", body,
			styles.warn.Render("Some tracks need more permissions. Run 'shuffle auth login' to reconnect."))
	}
	return body
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Shuffle '%s'?", m.selected.Name))
	info := fmt.Sprintf("\n%d tracks will be shuffled and queued.\n", m.selected.TrackCount)

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderShuffle() string {
	title := styles.title.Render(fmt.Sprintf("Shuffling '%s'", m.selected.Name))

	status := m.progress.Message
	if status == "" {
		status = "Working..."
	}
	if m.progress.Total > 0 {
		status = fmt.Sprintf("%s (%d/%d)", status, m.progress.Progress, m.progress.Total)
	}
	return fmt.Sprintf("%s\n\n%s", title, status)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s",
			styles.err.Render(fmt.Sprintf("Shuffle failed: %v", m.err)), helpView)
	}
	if !m.started {
		message := m.progress.Message
		if message == "" {
			message = "Nothing was queued."
		}
		return fmt.Sprintf("%s\n\n%s", styles.warn.Render(message), helpView)
	}

	title := styles.ok.Render("✓ Shuffled!")
	info := fmt.Sprintf("\nNow playing from '%s' with %d tracks queued in true random order.",
		m.selected.Name, m.progress.Total)
	return fmt.Sprintf("%s%s\n\n%s", title, info, helpView)
}
