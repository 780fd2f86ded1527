package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	gansi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func showCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <paper_id>",
		Short: "Show a candidate paper",
		Long: `Show one candidate with its abstract, scores and evidence.

Examples:
  papertriage show https://arxiv.org/abs/2401.00001
  papertriage show 10.1000/xyz123 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			c, err := newClient(cfg).GetCandidate(context.Background(), args[0])
			if err != nil {
				return connectionHint(err)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, c)
			}
			printCandidate(out, c)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func printCandidate(w io.Writer, c *candidate.Candidate) {
	fmt.Fprintf(w, "%s\n", c.Title)
	if authors := authorLine(c.Authors); authors != "" {
		fmt.Fprintf(w, "%s\n", authors)
	}
	var meta []string
	if c.Venue != "" {
		meta = append(meta, c.Venue)
	}
	if c.Year != 0 {
		meta = append(meta, fmt.Sprint(c.Year))
	}
	if c.RetrievalSource != "" {
		meta = append(meta, "via "+c.RetrievalSource)
	}
	if len(meta) > 0 {
		fmt.Fprintln(w, strings.Join(meta, " · "))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Paper:   %s\n", c.PaperID)
	fmt.Fprintf(w, "Status:  %s\n", c.EffectiveStatus())
	fmt.Fprintf(w, "Link:    %s\n", c.Link())
	if c.URLPDF != "" {
		fmt.Fprintf(w, "PDF:     %s\n", c.URLPDF)
	}
	score := fmt.Sprintf("retrieval %.3f", c.RetrievalScore)
	if c.RerankScore != nil {
		score += fmt.Sprintf(", rerank %.3f", *c.RerankScore)
	}
	fmt.Fprintf(w, "Score:   %s (rank %d)\n", score, c.Rank)
	if len(c.KeywordsHit) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", strings.Join(c.KeywordsHit, ", "))
	}

	if text := c.AbstractText(); text != "" {
		fmt.Fprintln(w)
		printMarkdownOrPlain(w, text)
	}

	if len(c.PillarEvidence) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Evidence:")
		keys := make([]string, 0, len(c.PillarEvidence))
		for k := range c.PillarEvidence {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", candidate.PillarLabel(k), c.PillarEvidence[k])
		}
	}
}

func writerIsTerminal(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd())
}

func terminalWidth(w io.Writer) int {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	return 100
}

// printMarkdownOrPlain renders text as glamour-styled markdown when
// writing to a TTY, or prints it as-is otherwise.
func printMarkdownOrPlain(w io.Writer, text string) {
	if !writerIsTerminal(w) {
		fmt.Fprintln(w, text)
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(cliGlamourStyle()),
		glamour.WithWordWrap(min(terminalWidth(w), 100)),
	)
	if err != nil {
		fmt.Fprintln(w, text)
		return
	}
	rendered, err := r.Render(text)
	if err != nil {
		fmt.Fprintln(w, text)
		return
	}
	fmt.Fprint(w, rendered)
}

// cliGlamourStyle picks the dark or light style with zero document margin.
func cliGlamourStyle() gansi.StyleConfig {
	style := styles.LightStyleConfig
	if termenv.HasDarkBackground() {
		style = styles.DarkStyleConfig
	}
	zeroMargin := uint(0)
	style.Document.Margin = &zeroMargin
	return style
}
