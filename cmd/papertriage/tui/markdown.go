package tui

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/glamour"
	gansi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
)

// markdownCache holds the rendered abstract of the selected candidate. It
// lives behind a pointer so the value-receiver View can fill it.
type markdownCache struct {
	style gansi.StyleConfig

	paperID string
	width   int
	text    string
	lines   []string
}

// newMarkdownCache resolves the glamour style once. "auto" detects the
// terminal background now, before bubbletea puts stdin in raw mode.
func newMarkdownCache(styleName string) *markdownCache {
	var style gansi.StyleConfig
	switch styleName {
	case "dark":
		style = styles.DarkStyleConfig
	case "light":
		style = styles.LightStyleConfig
	case "notty":
		style = styles.NoTTYStyleConfig
	default:
		style = styles.LightStyleConfig
		if termenv.HasDarkBackground() {
			style = styles.DarkStyleConfig
		}
	}
	zeroMargin := uint(0)
	style.Document.Margin = &zeroMargin
	style.Paragraph.Margin = &zeroMargin
	return &markdownCache{style: style}
}

// abstractLines returns the rendered abstract for paperID at width, reusing
// the previous render when nothing changed.
func (c *markdownCache) abstractLines(paperID, text string, width int) []string {
	if c.paperID == paperID && c.width == width && c.text == text && c.lines != nil {
		return c.lines
	}
	c.lines = renderMarkdownLines(text, width, c.style)
	c.paperID, c.width, c.text = paperID, width, text
	return c.lines
}

// renderMarkdownLines renders text with glamour and splits it into lines no
// wider than width. Falls back to plain wrapping if glamour fails.
func renderMarkdownLines(text string, width int, style gansi.StyleConfig) []string {
	text = sanitizeForDisplay(text)
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return wrapText(text, width)
	}
	out, err := r.Render(text)
	if err != nil {
		return wrapText(text, width)
	}
	lines := strings.Split(strings.Trim(out, "\n"), "\n")
	for i, line := range lines {
		line = trailingPadRe.ReplaceAllString(line, "") + "\x1b[0m"
		if xansi.StringWidth(line) > width {
			line = xansi.Truncate(line, width, "")
		}
		lines[i] = line
	}
	return lines
}

// trailingPadRe matches the trailing spaces and SGR codes glamour pads
// paragraphs with.
var trailingPadRe = regexp.MustCompile(`(\s|\x1b\[[0-9;]*m)+$`)

// wrapText wraps text to width display columns, breaking at spaces where
// possible.
func wrapText(text string, width int) []string {
	if width <= 0 {
		width = 80
	}
	var result []string
	for _, line := range strings.Split(text, "\n") {
		for runewidth.StringWidth(line) > width {
			runes := []rune(line)
			cut, w := 0, 0
			for i, r := range runes {
				rw := runewidth.RuneWidth(r)
				if w+rw > width {
					break
				}
				w += rw
				cut = i + 1
			}
			if cut == 0 {
				cut = 1
			}
			brk := cut
			for i := cut; i > cut/2; i-- {
				if i < len(runes) && runes[i] == ' ' {
					brk = i
					break
				}
			}
			result = append(result, strings.TrimRight(string(runes[:brk]), " "))
			line = strings.TrimLeft(string(runes[brk:]), " ")
		}
		result = append(result, line)
	}
	return result
}

// ansiEscapePattern matches CSI sequences and OSC sequences terminated by
// BEL or ST.
var ansiEscapePattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\]([^\x07\x1b]|\x1b[^\\])*(\x07|\x1b\\)`)

// sanitizeForDisplay strips escape sequences and control characters from
// backend-supplied text. Titles and abstracts come from third-party
// metadata and must not drive the terminal.
func sanitizeForDisplay(s string) string {
	s = ansiEscapePattern.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// oneLine sanitizes s and collapses it onto a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(sanitizeForDisplay(s)), " ")
}

// truncateWidth cuts s to width display columns with a trailing "…".
func truncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
