package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/papertriage/papertriage/internal/candidate"
)

const maxAuthors = 6

// renderDetail returns exactly rows lines describing the selected candidate,
// scrolled by detailScroll.
func (m model) renderDetail(rows int) []string {
	var lines []string
	sel, ok := m.session.Selected()
	switch {
	case ok:
		lines = m.detailLines(*sel)
	case m.session.Empty():
		lines = []string{statusStyle.Render("Nothing to review here.")}
	default:
		lines = []string{statusStyle.Render("Select a candidate with j/k, or n for the next pending one.")}
	}

	start := min(m.detailScroll, max(len(lines)-rows, 0))
	lines = lines[start:]
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return lines
}

func (m model) detailLines(c candidate.Candidate) []string {
	width := max(m.width, 20)
	var lines []string

	for _, l := range wrapText(oneLine(c.Title), width) {
		lines = append(lines, labelStyle.Render(l))
	}
	if len(c.Authors) > 0 {
		authors := c.Authors
		suffix := ""
		if len(authors) > maxAuthors {
			authors, suffix = authors[:maxAuthors], fmt.Sprintf(" +%d more", len(c.Authors)-maxAuthors)
		}
		lines = append(lines, wrapText(oneLine(strings.Join(authors, ", ")+suffix), width)...)
	}

	var meta []string
	meta = append(meta, statusStyleFor(c.EffectiveStatus()).Render(string(c.EffectiveStatus())))
	if c.Venue != "" {
		meta = append(meta, oneLine(c.Venue))
	}
	if c.Year != 0 {
		meta = append(meta, fmt.Sprint(c.Year))
	}
	if c.RetrievalSource != "" {
		meta = append(meta, "via "+oneLine(c.RetrievalSource))
	}
	if c.GateLevel != "" {
		meta = append(meta, "gate "+oneLine(c.GateLevel))
	}
	lines = append(lines, strings.Join(meta, statusStyle.Render(" · ")))

	if !m.hideScores {
		score := fmt.Sprintf("retrieval %.3f", c.RetrievalScore)
		if c.RerankScore != nil {
			score += fmt.Sprintf(" · rerank %.3f", *c.RerankScore)
		}
		if c.SystemScore != 0 {
			score += fmt.Sprintf(" · system %.3f", c.SystemScore)
		}
		lines = append(lines, statusStyle.Render(fmt.Sprintf("%s · rank %d", score, c.Rank)))
	}
	if len(c.KeywordsHit) > 0 {
		lines = append(lines, wrapText("Keywords: "+oneLine(strings.Join(c.KeywordsHit, ", ")), width)...)
	}

	lines = append(lines, "")
	if text := c.AbstractText(); text != "" {
		lines = append(lines, m.mdCache.abstractLines(c.PaperID, text, width)...)
	} else {
		lines = append(lines, statusStyle.Render("No abstract available."))
	}

	if !m.hideEvidence && len(c.PillarEvidence) > 0 {
		lines = append(lines, "", labelStyle.Render("Evidence"))
		keys := make([]string, 0, len(c.PillarEvidence))
		for k := range c.PillarEvidence {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			entry := candidate.PillarLabel(k) + ": " + oneLine(c.PillarEvidence[k])
			lines = append(lines, wrapText(entry, width)...)
		}
	}

	lines = append(lines, "", statusStyle.Render(truncateWidth("Link: "+oneLine(c.Link()), width)))
	if c.URLPDF != "" {
		lines = append(lines, statusStyle.Render(truncateWidth("PDF:  "+oneLine(c.URLPDF), width)))
	}
	return lines
}
