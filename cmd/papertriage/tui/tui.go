// Package tui is the interactive reviewer. It drives a session.Session from
// the bubbletea Update loop and keeps all backend I/O inside tea.Cmds.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/config"
	"github.com/papertriage/papertriage/internal/session"
)

const (
	flashDuration      = 2 * time.Second
	flashDurationLong  = 4 * time.Second
	maxNoteLength      = 2000
	defaultWidth       = 100
	defaultHeight      = 30
	listHeightFraction = 0.4
)

// TUI styles using AdaptiveColor for light/dark terminal support.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "125", Dark: "205"}) // Magenta/Pink

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "246"}) // Gray

	selectedStyle = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "153", Dark: "24"}) // Light blue background

	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "226"}) // Yellow/Gold
	acceptedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "46"})   // Green
	rejectedStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"}) // Red

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "33"}) // Blue

	labelStyle = lipgloss.NewStyle().Bold(true)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "124", Dark: "196"})

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "46"})

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "246"}) // Gray
	helpDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "248", Dark: "240"}) // Dimmer gray
)

// statusStyleFor colors a candidate status.
func statusStyleFor(s candidate.Status) lipgloss.Style {
	switch s {
	case candidate.StatusAccepted:
		return acceptedStyle
	case candidate.StatusRejected:
		return rejectedStyle
	}
	return pendingStyle
}

// reflowHelpRows splits rows into shorter rows until the aligned table fits
// within width. Non-first columns cost 2 extra cells for the border.
func reflowHelpRows(rows [][]helpItem, width int) [][]helpItem {
	if width <= 0 {
		return rows
	}
	cellWidth := func(it helpItem) int {
		w := runewidth.StringWidth(it.key)
		if it.desc != "" {
			w += 1 + runewidth.StringWidth(it.desc)
		}
		return w
	}

	widest := 0
	for _, row := range rows {
		widest = max(widest, len(row))
	}
	for ncols := widest; ncols >= 1; ncols-- {
		var out [][]helpItem
		for _, row := range rows {
			for i := 0; i < len(row); i += ncols {
				out = append(out, row[i:min(i+ncols, len(row))])
			}
		}
		colW := make([]int, ncols)
		for _, row := range out {
			for c, it := range row {
				colW[c] = max(colW[c], cellWidth(it))
			}
		}
		total := 0
		for c, w := range colW {
			total += w
			if c > 0 {
				total += 2
			}
		}
		if total <= width {
			return out
		}
	}
	var out [][]helpItem
	for _, row := range rows {
		for _, it := range row {
			out = append(out, []helpItem{it})
		}
	}
	return out
}

// renderHelpTable renders help items as an aligned two-tone table with a
// thin border between columns.
func renderHelpTable(rows [][]helpItem, width int) string {
	rows = reflowHelpRows(rows, width)
	if len(rows) == 0 {
		return ""
	}

	cols := 0
	for _, row := range rows {
		cols = max(cols, len(row))
	}
	colMinW := make([]int, cols)
	for _, row := range rows {
		for c, it := range row {
			w := runewidth.StringWidth(it.key)
			if it.desc != "" {
				w += 1 + runewidth.StringWidth(it.desc)
			}
			colMinW[c] = max(colMinW[c], w)
		}
	}

	plain := lipgloss.NewStyle()
	bordered := lipgloss.NewStyle().
		PaddingLeft(1).
		Border(lipgloss.Border{Left: "▕"}, false, false, false, true).
		BorderForeground(lipgloss.AdaptiveColor{Light: "248", Dark: "242"})
	empty := make([][]bool, len(rows))

	t := table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderRow(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			w := 0
			if col < len(colMinW) {
				w = colMinW[col]
			}
			if col == 0 || (row < len(empty) && col < len(empty[row]) && empty[row][col]) {
				return plain.Width(w)
			}
			return bordered.Width(w + 2)
		}).
		Wrap(false)

	for ri, row := range rows {
		cells := make([]string, cols)
		empty[ri] = make([]bool, cols)
		for i, it := range row {
			cells[i] = helpKeyStyle.Render(it.key)
			if it.desc != "" {
				cells[i] += " " + helpDescStyle.Render(it.desc)
			}
		}
		for i := len(row); i < cols; i++ {
			empty[ri][i] = true
		}
		t = t.Row(cells...)
	}
	return t.Render()
}

type model struct {
	serverAddr    string
	client        backend.Client
	session       *session.Session
	refresh       *session.RefreshCoordinator
	refreshReq    candidate.RefreshRequest
	rejectReasons []string
	hideEvidence  bool
	hideScores    bool

	keys      keyMap
	spinner   spinner.Model
	note      textarea.Model
	mdCache   *markdownCache
	clipboard ClipboardWriter

	currentView  viewKind
	helpFromView viewKind
	width        int
	height       int
	fetchSeq     int
	loading      bool
	autoSelect   bool // select the first row once the initial page arrives
	detailScroll int

	// Reject modal staging. Kept when the modal is cancelled and reopened
	// on the same paper, cleared once a rejection is confirmed.
	rejectPaperID string
	rejectTags    map[string]bool
	rejectCursor  int
	rejectFocus   rejectFocus

	// errNotice blocks input until dismissed.
	errNotice string

	flashMessage   string
	flashExpiresAt time.Time
	flashView      viewKind
}

func newModel(cfg Config, opts ...option) model {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	styleName := cfg.GlamourStyle
	if o.disableExternalIO {
		styleName = "notty"
	}
	cb := o.clipboard
	if cb == nil {
		cb = &realClipboard{}
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = statusStyle

	note := textarea.New()
	note.Placeholder = "Optional note"
	note.ShowLineNumbers = false
	note.CharLimit = maxNoteLength
	note.SetHeight(3)
	note.KeyMap.InsertNewline.SetEnabled(false)

	status := cfg.Status
	s := session.New(
		session.WithPageSize(cfg.PageSize),
		session.KeepDecidedInAll(cfg.KeepDecidedInAll),
	)
	s.SetFilter(status)

	reasons := cfg.RejectReasons
	if len(reasons) == 0 {
		reasons = config.DefaultConfig().RejectReasons
	}

	return model{
		serverAddr:    cfg.ServerAddr,
		client:        cfg.Client,
		session:       s,
		refresh:       session.NewRefreshCoordinator(cfg.RefreshTimeout),
		refreshReq:    cfg.Refresh,
		rejectReasons: reasons,
		hideEvidence:  cfg.HideEvidence,
		hideScores:    cfg.HideScores,
		keys:          defaultKeyMap(),
		spinner:       sp,
		note:          note,
		mdCache:       newMarkdownCache(styleName),
		clipboard:     cb,
		currentView:   viewList,
		width:         defaultWidth,
		height:        defaultHeight,
		loading:       true,
		autoSelect:    true,
		rejectTags:    make(map[string]bool),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tea.WindowSize(), // request initial window size
		m.fetchPage(m.session.Status(), m.session.Page()),
		m.spinner.Tick,
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case pageMsg:
		return m.handlePageMsg(msg)
	case feedbackResultMsg:
		return m.handleFeedbackResultMsg(msg)
	case refreshResultMsg:
		return m.handleRefreshResultMsg(msg)
	case clipboardResultMsg:
		return m.handleClipboardResultMsg(msg)
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil // let the tick chain die; the next request restarts it
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	switch m.currentView {
	case viewHelp:
		return m.renderHelpView()
	case viewReject:
		return m.renderRejectView()
	}
	return m.renderListView()
}

// busy reports whether any backend call is outstanding.
func (m model) busy() bool {
	return m.loading || m.session.DecisionInFlight() || m.refresh.InFlight()
}

// setFlash shows msg on the status line of view for d.
func (m *model) setFlash(msg string, d time.Duration, view viewKind) {
	m.flashMessage = msg
	m.flashExpiresAt = time.Now().Add(d)
	m.flashView = view
}

// flashFor returns the active flash message for view, if any.
func (m model) flashFor(view viewKind) string {
	if m.flashMessage == "" || m.flashView != view || !time.Now().Before(m.flashExpiresAt) {
		return ""
	}
	return m.flashMessage
}

// Config configures Run.
type Config struct {
	ServerAddr       string
	Client           backend.Client
	Status           candidate.Status
	PageSize         int
	KeepDecidedInAll bool
	RefreshTimeout   time.Duration
	Refresh          candidate.RefreshRequest
	RejectReasons    []string
	GlamourStyle     string
	HideEvidence     bool
	HideScores       bool
}

// Run starts the interactive reviewer and blocks until the operator quits.
func Run(cfg Config) error {
	p := tea.NewProgram(
		newModel(cfg),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
