package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/fieldnotes-app/fieldnotes/internal/api"
	"github.com/fieldnotes-app/fieldnotes/internal/editor"
	"github.com/fieldnotes-app/fieldnotes/internal/explore"
	"github.com/fieldnotes-app/fieldnotes/internal/identity"
	"github.com/fieldnotes-app/fieldnotes/internal/library"
	"github.com/fieldnotes-app/fieldnotes/internal/note"
	"github.com/fieldnotes-app/fieldnotes/internal/prefs"
)

type Screen int

const (
	ScreenLibrary Screen = iota
	ScreenExplore
	ScreenEditor
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeConfirmDelete
	ModeHelp
)

type editorField int

const (
	fieldTitle editorField = iota
	fieldBody
	fieldTags
)

// Deps carries everything the model needs; nothing is reached through
// package-level state.
type Deps struct {
	API      *api.Client
	Library  *library.Controller
	Explore  *explore.Controller
	Editor   *editor.Editor
	Identity *identity.Service
	Prefs    *prefs.Store
	Log      *zap.Logger
}

type Model struct {
	deps Deps
	pref prefs.Prefs

	screen Screen
	mode   Mode

	cursor     int
	listOffset int

	carouselIndex int
	gate          *explore.SyncGate
	camera        note.Coordinate

	draft       editor.Draft
	activeField editorField

	searchInput textinput.Model
	titleInput  textinput.Model
	bodyArea    textarea.Model
	tagsInput   textinput.Model
	spin        spinner.Model

	deleteTarget note.Note

	toast   string
	isError bool

	width  int
	height int

	keys KeyMap
}

// Messages

type libraryPageMsg struct{ res library.PageResult }
type libraryErrMsg struct {
	req library.PageRequest
	err error
}
type markersMsg struct{ res explore.MarkerResult }
type markersErrMsg struct {
	req explore.MarkerRequest
	err error
}
type noteSavedMsg struct{ saved note.Note }
type saveErrMsg struct{ err error }
type noteDeletedMsg struct{ id string }
type deleteErrMsg struct{ err error }
type toastClearMsg struct{}

func NewModel(deps Deps, pref prefs.Prefs) Model {
	si := textinput.New()
	si.Placeholder = "Search..."
	si.CharLimit = 128

	ti := textinput.New()
	ti.Placeholder = "Title..."
	ti.CharLimit = 256

	ta := textarea.New()
	ta.Placeholder = "Write your note..."
	ta.ShowLineNumbers = false

	tg := textinput.New()
	tg.Placeholder = "tag1; tag2"
	tg.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		deps:        deps,
		pref:        pref,
		gate:        explore.NewSyncGate(200 * time.Millisecond),
		searchInput: si,
		titleInput:  ti,
		bodyArea:    ta,
		tagsInput:   tg,
		spin:        sp,
		keys:        NewKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchLibrary(m.deps.Library.StartInitial()),
		m.fetchMarkers(m.deps.Explore.StartInitial()),
		m.spin.Tick,
	)
}

// Commands

func (m Model) fetchLibrary(req library.PageRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := m.deps.Library.Fetch(context.Background(), req)
		if err != nil {
			return libraryErrMsg{req: req, err: err}
		}
		return libraryPageMsg{res: res}
	}
}

func (m Model) fetchMarkers(req explore.MarkerRequest) tea.Cmd {
	return func() tea.Msg {
		res, err := m.deps.Explore.Fetch(context.Background(), req)
		if err != nil {
			return markersErrMsg{req: req, err: err}
		}
		return markersMsg{res: res}
	}
}

func (m Model) saveDraft() tea.Cmd {
	draft := m.draft
	creator := m.deps.Identity.UserID()
	return func() tea.Msg {
		saved, err := m.deps.Editor.Save(context.Background(), draft, creator)
		if err != nil {
			return saveErrMsg{err: err}
		}
		return noteSavedMsg{saved: saved}
	}
}

func (m Model) deleteNote(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.deps.API.DeleteNote(context.Background(), id); err != nil {
			return deleteErrMsg{err: err}
		}
		return noteDeletedMsg{id: id}
	}
}

func clearToastCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastClearMsg{}
	})
}

// Update

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bodyArea.SetWidth(m.width - 8)
		m.bodyArea.SetHeight(m.contentHeight() - 8)

	case spinner.TickMsg:
		if m.deps.Library.Rendering() || m.deps.Library.LoadingMore() || m.deps.Explore.Loading() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.spin.Tick)
		}

	case libraryPageMsg:
		if m.deps.Library.Apply(msg.res) {
			m.clampCursor()
		}

	case libraryErrMsg:
		if m.deps.Library.Fail(msg.req, msg.err) {
			m.toast = StrFetchError
			m.isError = true
			cmds = append(cmds, clearToastCmd())
		}

	case markersMsg:
		if m.deps.Explore.Apply(msg.res) {
			if n := len(m.deps.Explore.Markers()); m.carouselIndex >= n {
				m.carouselIndex = 0
			}
		}

	case markersErrMsg:
		// Explore fetch failures stay quiet on screen; the controller
		// already logged them.
		m.deps.Explore.Fail(msg.req, msg.err)

	case noteSavedMsg:
		if msg.saved.Published {
			m.toast = StrPublishSuccess
		} else {
			m.toast = StrSaveSuccess
		}
		m.isError = false
		m.screen = ScreenLibrary
		cmds = append(cmds,
			clearToastCmd(),
			m.fetchLibrary(m.deps.Library.StartInitial()),
		)

	case saveErrMsg:
		m.toast = fmt.Sprintf("%s: %v", StrSaveError, msg.err)
		m.isError = true
		cmds = append(cmds, clearToastCmd())

	case noteDeletedMsg:
		m.toast = StrDeleteSuccess
		m.isError = false
		cmds = append(cmds,
			clearToastCmd(),
			m.fetchLibrary(m.deps.Library.StartInitial()),
		)

	case deleteErrMsg:
		m.toast = StrDeleteError
		m.isError = true
		cmds = append(cmds, clearToastCmd())

	case toastClearMsg:
		m.toast = ""
		m.isError = false

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKeys(msg)
	case ModeConfirmDelete:
		return m.handleConfirmDeleteKeys(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Help) {
			m.mode = ModeNormal
		}
		return m, nil
	}
	if m.screen == ScreenEditor {
		return m.handleEditorKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, m.keys.Tab):
		if m.screen == ScreenLibrary {
			m.screen = ScreenExplore
		} else {
			m.screen = ScreenLibrary
		}

	case key.Matches(msg, m.keys.Up):
		if m.screen == ScreenLibrary && m.cursor > 0 {
			m.cursor--
			if m.cursor < m.listOffset {
				m.listOffset = m.cursor
			}
		}

	case key.Matches(msg, m.keys.Down):
		if m.screen == ScreenLibrary && m.cursor < len(m.deps.Library.VisibleNotes())-1 {
			m.cursor++
			h := m.listHeight()
			if m.cursor >= m.listOffset+h {
				m.listOffset = m.cursor - h + 1
			}
		}

	case key.Matches(msg, m.keys.Left):
		if m.screen == ScreenExplore && m.carouselIndex > 0 {
			m.carouselIndex--
			m.syncCamera()
		}

	case key.Matches(msg, m.keys.Right):
		if m.screen == ScreenExplore && m.carouselIndex < len(m.deps.Explore.Markers())-1 {
			m.carouselIndex++
			m.syncCamera()
		}

	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.searchInput.SetValue("")
		m.searchInput.Focus()

	case key.Matches(msg, m.keys.Sort):
		if m.screen == ScreenLibrary {
			m.deps.Library.SetSort((m.deps.Library.Sort() + 1) % 3)
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Filter):
		if m.screen == ScreenLibrary {
			next := library.FilterPublished
			if m.deps.Library.Filter() == library.FilterPublished {
				next = library.FilterPrivate
			}
			m.cursor = 0
			m.listOffset = 0
			return m, m.fetchLibrary(m.deps.Library.SetFilter(next))
		}

	case key.Matches(msg, m.keys.Globe):
		if m.screen == ScreenExplore {
			m.carouselIndex = 0
			return m, m.fetchMarkers(m.deps.Explore.ToggleGlobal())
		}

	case key.Matches(msg, m.keys.LoadMore):
		if m.screen == ScreenLibrary {
			if req, ok := m.deps.Library.StartLoadMore(); ok {
				return m, m.fetchLibrary(req)
			}
		} else if req, ok := m.deps.Explore.StartLoadMore(); ok {
			return m, m.fetchMarkers(req)
		}

	case key.Matches(msg, m.keys.New):
		if m.pref.ShowAddButton {
			m.openEditor(editor.Draft{Published: false})
		}

	case key.Matches(msg, m.keys.Edit):
		if n, ok := m.selectedNote(); ok {
			m.openEditor(draftFromNote(n))
		}

	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.selectedNote(); ok {
			m.deleteTarget = n
			m.mode = ModeConfirmDelete
		}
	}

	return m, nil
}

func (m *Model) openEditor(d editor.Draft) {
	m.draft = d
	m.screen = ScreenEditor
	m.activeField = fieldTitle
	m.titleInput.SetValue(d.Title)
	m.titleInput.Focus()
	m.bodyArea.SetValue(d.Body)
	m.bodyArea.Blur()
	m.tagsInput.SetValue(strings.Join(d.Tags, "; "))
	m.tagsInput.Blur()
}

func draftFromNote(n note.Note) editor.Draft {
	return editor.Draft{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Text,
		Tags:      n.Tags,
		Media:     n.Media,
		Audio:     n.Audio,
		Latitude:  n.Latitude,
		Longitude: n.Longitude,
		Published: n.Published,
		Time:      n.Time,
	}
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeNormal
		m.searchInput.Blur()
		if m.screen == ScreenLibrary {
			m.deps.Library.SetSearch("")
			m.clampCursor()
			return m, nil
		}
		// Clearing an Explore search refetches the markers.
		m.carouselIndex = 0
		return m, m.fetchMarkers(m.deps.Explore.StartInitial())

	case key.Matches(msg, m.keys.Enter):
		query := m.searchInput.Value()
		m.mode = ModeNormal
		m.searchInput.Blur()
		if m.screen == ScreenLibrary {
			m.deps.Library.SetSearch(query)
			m.clampCursor()
			return m, nil
		}
		m.carouselIndex = 0
		return m, m.fetchMarkers(m.deps.Explore.StartSearch(query))

	default:
		m.searchInput, cmd = m.searchInput.Update(msg)
	}

	return m, cmd
}

func (m Model) handleConfirmDeleteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = ModeNormal
		id := m.deleteTarget.ID
		m.deleteTarget = note.Note{}
		return m, m.deleteNote(id)
	case "n", "N", "esc":
		m.mode = ModeNormal
		m.deleteTarget = note.Note{}
	}
	return m, nil
}

func (m Model) handleEditorKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.screen = ScreenLibrary
		m.blurEditor()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		m.collectDraft()
		return m, m.saveDraft()

	case key.Matches(msg, m.keys.TogglePub):
		m.draft.Published = !m.draft.Published
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.collectDraft()
		m.blurEditor()
		m.activeField = (m.activeField + 1) % 3
		switch m.activeField {
		case fieldTitle:
			m.titleInput.Focus()
		case fieldBody:
			m.bodyArea.Focus()
		case fieldTags:
			m.tagsInput.Focus()
		}
		return m, nil
	}

	switch m.activeField {
	case fieldTitle:
		m.titleInput, cmd = m.titleInput.Update(msg)
	case fieldBody:
		m.bodyArea, cmd = m.bodyArea.Update(msg)
	case fieldTags:
		m.tagsInput, cmd = m.tagsInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) blurEditor() {
	m.titleInput.Blur()
	m.bodyArea.Blur()
	m.tagsInput.Blur()
}

// collectDraft pulls the widget values back into the draft.
func (m *Model) collectDraft() {
	m.draft.Title = m.titleInput.Value()
	m.draft.Body = m.bodyArea.Value()

	var tags []string
	for _, t := range strings.Split(m.tagsInput.Value(), ";") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	m.draft.Tags = tags

	if m.draft.Latitude == "" {
		region := m.deps.Explore.Region()
		m.draft.Latitude = fmt.Sprintf("%f", region.Latitude)
		m.draft.Longitude = fmt.Sprintf("%f", region.Longitude)
	}
}

func (m *Model) syncCamera() {
	markers := m.deps.Explore.Markers()
	if m.carouselIndex >= len(markers) {
		return
	}
	now := time.Now()
	if m.gate.ShouldMove(m.carouselIndex, now) {
		m.camera = markers[m.carouselIndex].Coordinate
	} else if idx, ok := m.gate.Flush(now); ok && idx < len(markers) {
		m.camera = markers[idx].Coordinate
	}
}

func (m *Model) clampCursor() {
	visible := len(m.deps.Library.VisibleNotes())
	if m.cursor >= visible {
		m.cursor = 0
		m.listOffset = 0
	}
}

func (m Model) selectedNote() (note.Note, bool) {
	visible := m.deps.Library.VisibleNotes()
	if m.screen != ScreenLibrary || m.cursor >= len(visible) {
		return note.Note{}, false
	}
	return visible[m.cursor], true
}

func (m Model) listHeight() int {
	return m.contentHeight() - 4
}

func (m Model) contentHeight() int {
	return m.height - 5
}
