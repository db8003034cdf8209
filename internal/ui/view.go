package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fieldnotes-app/fieldnotes/internal/library"
	"github.com/fieldnotes-app/fieldnotes/internal/note"
)

func (m Model) View() string {
	if m.width == 0 {
		return StrLoading
	}

	if m.mode == ModeHelp {
		return m.renderHelp()
	}
	if m.mode == ModeSearch {
		dialog := m.renderSearchDialog()
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
	}
	if m.mode == ModeConfirmDelete {
		dialog := m.renderConfirmDialog()
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialog)
	}

	var body string
	switch m.screen {
	case ScreenExplore:
		body = m.renderExplore()
	case ScreenEditor:
		body = m.renderEditor()
	default:
		body = m.renderLibrary()
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body, m.renderStatus())
}

func (m Model) renderHeader() string {
	var title string
	switch m.screen {
	case ScreenExplore:
		title = "Explore"
	case ScreenEditor:
		if m.draft.ID == "" {
			title = "New Note"
		} else {
			title = "Edit Note"
		}
	default:
		title = "Library"
	}
	return HeaderStyle.Width(m.width - 2).Render(TitleStyle.Render(title))
}

// Library

func (m Model) renderLibrary() string {
	listPanel := m.renderNoteList()
	detailPanel := m.renderNoteDetail()
	return lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
}

func (m Model) renderNoteList() string {
	visible := m.deps.Library.VisibleNotes()

	var items []string
	h := m.listHeight()
	maxLen := m.listWidth() - 10

	for i := m.listOffset; i < len(visible) && i < m.listOffset+h; i++ {
		n := visible[i]
		line := fmt.Sprintf("%s %s", NoteIcon, truncate(n.Title, maxLen))
		if i == m.cursor {
			line = SelectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		items = append(items, line)
	}

	items = append(items, "", m.renderFooter())

	for len(items) < h {
		items = append(items, "")
	}

	return ActivePanelStyle.Width(m.listWidth()).Height(m.contentHeight()).
		Render(strings.Join(items, "\n"))
}

func (m Model) renderFooter() string {
	switch m.deps.Library.FooterState() {
	case library.FooterLoading:
		return m.spin.View() + " " + MutedStyle.Render(StrLoading)
	case library.FooterLoadMore:
		return FooterStyle.Render(StrLoadMore + " (m)")
	case library.FooterEmpty:
		return MutedStyle.Render(StrNoResults)
	}
	return ""
}

func (m Model) renderNoteDetail() string {
	var lines []string

	if n, ok := m.selectedNote(); ok {
		lines = append(lines, TitleStyle.Render(n.Title))
		lines = append(lines, MutedStyle.Render(n.Time.Format("2006-01-02 15:04")))
		lines = append(lines, "")
		lines = append(lines, truncate(stripTags(n.Text), 400))
		lines = append(lines, "")

		if len(n.Tags) > 0 {
			var tags []string
			for _, t := range n.Tags {
				tags = append(tags, TagStyle.Render("#"+t))
			}
			lines = append(lines, strings.Join(tags, " "))
		}
		if len(n.Media) > 0 || len(n.Audio) > 0 {
			lines = append(lines, MutedStyle.Render(
				fmt.Sprintf("%s %d  %s %d", PhotoIcon, len(n.Media), AudioIcon, len(n.Audio))))
		}
		if n.Latitude != "" {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("%s %s, %s", PinIcon, n.Latitude, n.Longitude)))
		}
		state := StrPrivateNotes
		if n.Published {
			state = StrPublishedNotes
		}
		lines = append(lines, LabelStyle.Render(state))
	} else {
		lines = append(lines, MutedStyle.Render(StrNoNoteSelected))
	}

	return PanelStyle.Width(m.width - m.listWidth() - 6).Height(m.contentHeight()).
		Render(strings.Join(lines, "\n"))
}

// Explore

func (m Model) renderExplore() string {
	markers := m.deps.Explore.Markers()

	var left []string
	if m.deps.Explore.LocationDenied() {
		left = append(left, ErrorStyle.Render(StrLocationDenied), "")
	}
	left = append(left, LabelStyle.Render(fmt.Sprintf("Camera %.4f, %.4f", m.camera.Latitude, m.camera.Longitude)), "")

	h := m.listHeight() - 4
	for i, mk := range markers {
		if i >= h {
			left = append(left, MutedStyle.Render(fmt.Sprintf("… %d more", len(markers)-h)))
			break
		}
		line := fmt.Sprintf("%s %.4f, %.4f  %s", PinIcon, mk.Coordinate.Latitude, mk.Coordinate.Longitude, truncate(mk.Title, 20))
		if i == m.carouselIndex {
			line = SelectedStyle.Render(line)
		}
		left = append(left, line)
	}
	if len(markers) == 0 && !m.deps.Explore.Loading() {
		left = append(left, MutedStyle.Render(StrNoResults))
	}
	if m.deps.Explore.Loading() {
		left = append(left, m.spin.View()+" "+MutedStyle.Render(StrLoading))
	} else if m.deps.Explore.LoadMoreVisible() {
		left = append(left, "", FooterStyle.Render(StrLoadMore+" (m)"))
	}

	mapPanel := ActivePanelStyle.Width(m.listWidth() + 10).Height(m.contentHeight()).
		Render(strings.Join(left, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, mapPanel, m.renderCarouselCard(markers))
}

func (m Model) renderCarouselCard(markers []note.Marker) string {
	var lines []string

	if m.deps.Explore.Searching() {
		lines = append(lines, LabelStyle.Render(StrSearching), "")
	}

	if m.carouselIndex < len(markers) {
		mk := markers[m.carouselIndex]
		lines = append(lines, TitleStyle.Render(mk.Title))
		lines = append(lines, MutedStyle.Render(mk.Time.Format("2006-01-02 15:04")+"  "+mk.Creator))
		lines = append(lines, "")
		lines = append(lines, truncate(stripTags(mk.Description), 300))
		lines = append(lines, "")
		if len(mk.Images) > 0 {
			lines = append(lines, MutedStyle.Render(fmt.Sprintf("%s %d images", PhotoIcon, len(mk.Images))))
		}
		if len(mk.Tags) > 0 {
			var tags []string
			for _, t := range mk.Tags {
				tags = append(tags, TagStyle.Render("#"+t))
			}
			lines = append(lines, strings.Join(tags, " "))
		}
		lines = append(lines, "", MutedStyle.Render(fmt.Sprintf("card %d/%d  ←/→", m.carouselIndex+1, len(markers))))
	} else {
		lines = append(lines, MutedStyle.Render(StrNoNoteSelected))
	}

	globe := StrGlobalOff
	if m.deps.Explore.Global() {
		globe = StrGlobalOn
	}
	lines = append(lines, "", MutedStyle.Render(GlobeIcon+" "+globe+" (g)"))

	return PanelStyle.Width(m.width - m.listWidth() - 16).Height(m.contentHeight()).
		Render(strings.Join(lines, "\n"))
}

// Editor

func (m Model) renderEditor() string {
	published := StrPrivateNotes
	if m.draft.Published {
		published = StrPublishedNotes
	}

	lines := []string{
		LabelStyle.Render("Title"),
		m.titleInput.View(),
		"",
		LabelStyle.Render("Body"),
		m.bodyArea.View(),
		"",
		LabelStyle.Render("Tags"),
		m.tagsInput.View(),
		"",
		LabelStyle.Render("Visibility") + "  " + TagStyle.Render(published) + MutedStyle.Render("  Ctrl+P toggles"),
		"",
		MutedStyle.Render("Tab next field  Ctrl+S save  Esc cancel"),
	}

	return ActivePanelStyle.Width(m.width - 4).Height(m.contentHeight()).
		Render(strings.Join(lines, "\n"))
}

// Dialogs and chrome

func (m Model) renderSearchDialog() string {
	scope := "library"
	if m.screen == ScreenExplore {
		scope = "map"
	}
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render("Search "+scope),
		"",
		m.searchInput.View(),
		"",
		MutedStyle.Render("[Enter] Search  [Esc] Clear"),
	)
	return DialogStyle.Width(44).Render(content)
}

func (m Model) renderConfirmDialog() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		TitleStyle.Render("Delete Note"),
		"",
		fmt.Sprintf("Delete %q?", m.deleteTarget.Title),
		"",
		MutedStyle.Render("[Y] Yes  [N] No"),
	)
	return DialogStyle.Width(44).Render(content)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(LabelStyle.Render("Navigation") + "\n")
	b.WriteString("  ↑/k ↓/j      move in list\n")
	b.WriteString("  ←/h →/l      move carousel\n")
	b.WriteString("  Tab          Library ⇄ Explore\n\n")

	b.WriteString(LabelStyle.Render("Library") + "\n")
	b.WriteString("  /            search loaded notes\n")
	b.WriteString("  s            cycle sort (Recent, A-Z, Z-A)\n")
	b.WriteString("  p            private ⇄ published\n")
	b.WriteString("  m            load more\n\n")

	b.WriteString(LabelStyle.Render("Explore") + "\n")
	b.WriteString("  /            search all notes\n")
	b.WriteString("  g            toggle global\n")
	b.WriteString("  m            load more\n\n")

	b.WriteString(LabelStyle.Render("Notes") + "\n")
	b.WriteString("  n            new note\n")
	b.WriteString("  e            edit selected\n")
	b.WriteString("  d            delete selected\n\n")

	b.WriteString(MutedStyle.Render("Press ? or Esc to close"))

	helpStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(highlight).
		Padding(1, 2)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		helpStyle.Render(b.String()))
}

func (m Model) renderStatus() string {
	var left string
	switch m.screen {
	case ScreenLibrary:
		filter := StrPrivateNotes
		if m.deps.Library.Filter() == library.FilterPublished {
			filter = StrPublishedNotes
		}
		left = fmt.Sprintf(" %s | %s | %d notes | page %d",
			filter,
			SortLabel(int(m.deps.Library.Sort())),
			len(m.deps.Library.VisibleNotes()),
			m.deps.Library.Page())
		if q := m.deps.Library.Search(); q != "" {
			left += fmt.Sprintf(" | %q", q)
		}
	case ScreenExplore:
		left = fmt.Sprintf(" %d markers", len(m.deps.Explore.Markers()))
	case ScreenEditor:
		left = " editing"
	}

	if m.toast != "" {
		style := ToastStyle
		if m.isError {
			style = ErrorStyle
		}
		left += " | " + style.Render(m.toast)
	}

	right := "? help | q quit"
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 0 {
		padding = 0
	}

	return StatusBarStyle.Render(left + strings.Repeat(" ", padding) + right)
}

func (m Model) listWidth() int {
	return int(float64(m.width) * 0.35)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// stripTags flattens HTML bodies for plain-terminal preview. Crude on
// purpose; the body is rendered properly only in the mobile clients.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
