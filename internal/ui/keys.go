package ui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	Enter        key.Binding
	Escape       key.Binding
	Tab          key.Binding
	New          key.Binding
	Edit         key.Binding
	Delete       key.Binding
	Search       key.Binding
	Sort         key.Binding
	Filter       key.Binding
	Globe        key.Binding
	LoadMore     key.Binding
	TogglePub    key.Binding
	Save         key.Binding
	NextField    key.Binding
	Quit         key.Binding
	Help         key.Binding
}

func NewKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous card"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next card"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "open"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "switch screen"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit note"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete note"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Filter: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "private/published"),
		),
		Globe: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "toggle global"),
		),
		LoadMore: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load more"),
		),
		TogglePub: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("Ctrl+P", "toggle publish"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("Ctrl+S", "save"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "next field"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q", "q"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Tab, k.New, k.Search, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Enter},
		{k.New, k.Edit, k.Delete, k.Search, k.Sort},
		{k.Filter, k.Globe, k.LoadMore, k.TogglePub, k.Save},
		{k.Tab, k.Help, k.Quit},
	}
}
