package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	First       key.Binding
	Last        key.Binding
	NextPending key.Binding
	Accept      key.Binding
	Reject      key.Binding
	Refresh     key.Binding
	Reload      key.Binding
	PrevPage    key.Binding
	NextPage    key.Binding
	Filter      key.Binding
	Pending     key.Binding
	Accepted    key.Binding
	Rejected    key.Binding
	All         key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
	Copy        key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		First:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		NextPending: key.NewBinding(key.WithKeys("n", " "), key.WithHelp("n", "next pending")),
		Accept:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accept")),
		Reject:      key.NewBinding(key.WithKeys("r", "x"), key.WithHelp("r", "reject")),
		Refresh:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "fetch new")),
		Reload:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^r", "reload")),
		PrevPage:    key.NewBinding(key.WithKeys("h", "left", "["), key.WithHelp("←/h", "prev page")),
		NextPage:    key.NewBinding(key.WithKeys("l", "right", "]"), key.WithHelp("→/l", "next page")),
		Filter:      key.NewBinding(key.WithKeys("tab", "f"), key.WithHelp("tab", "filter")),
		Pending:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "pending")),
		Accepted:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "accepted")),
		Rejected:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "rejected")),
		All:         key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "all")),
		ScrollUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "scroll detail")),
		ScrollDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "scroll detail")),
		Copy:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy link")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// item converts a binding's help text into a help table cell.
func item(b key.Binding) helpItem {
	h := b.Help()
	return helpItem{key: h.Key, desc: h.Desc}
}

// listHelpRows is the footer shown under the candidate list.
func (k keyMap) listHelpRows() [][]helpItem {
	return [][]helpItem{
		{item(k.Accept), item(k.Reject), item(k.NextPending), item(k.Copy), item(k.Refresh)},
		{item(k.Down), item(k.Up), item(k.NextPage), item(k.PrevPage), item(k.Filter), item(k.Help), item(k.Quit)},
	}
}

// fullHelpRows lists every binding, grouped, for the help view.
func (k keyMap) fullHelpRows() [][]helpItem {
	return [][]helpItem{
		{item(k.Down), item(k.Up), item(k.First), item(k.Last), item(k.NextPending)},
		{item(k.Accept), item(k.Reject), item(k.Copy), item(k.ScrollDown), item(k.ScrollUp)},
		{item(k.NextPage), item(k.PrevPage), item(k.Filter), item(k.Pending), item(k.Accepted), item(k.Rejected), item(k.All)},
		{item(k.Refresh), item(k.Reload), item(k.Help), item(k.Quit)},
	}
}
