package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/config"
	"github.com/papertriage/papertriage/internal/session"
)

// exitError is an error that signals a specific exit code
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

// setupLogging sends the standard logger to w when --verbose is set and
// discards it otherwise.
func setupLogging(w io.Writer) {
	log.SetPrefix("papertriage: ")
	log.SetFlags(log.Ltime)
	if verbose {
		log.SetOutput(w)
	} else {
		log.SetOutput(io.Discard)
	}
}

// loadConfig loads the global config. A broken config file is an error
// rather than a silent fallback to defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newClient builds a backend client for the resolved server address.
func newClient(cfg *config.Config) *backend.HTTPClient {
	addr := config.ResolveServerAddr(serverAddr, cfg)
	log.Printf("backend %s", addr)
	return backend.NewHTTPClient(addr,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithRetryMaxElapsed(cfg.ListRetry()),
	)
}

// newReviewer wires a session, client and refresh coordinator from config.
func newReviewer(cfg *config.Config) *session.Reviewer {
	s := session.New(
		session.WithPageSize(cfg.PageSize),
		session.KeepDecidedInAll(cfg.KeepDecidedInAll),
	)
	return session.NewReviewer(s, newClient(cfg), session.NewRefreshCoordinator(cfg.RefreshTimeout()))
}

// connectionHint turns transport failures into an actionable message.
func connectionHint(err error) error {
	if errors.Is(err, backend.ErrTransport) {
		var statusErr *backend.StatusError
		if !errors.As(err, &statusErr) {
			return fmt.Errorf("%w (is the backend running? set --server or PAPERTRIAGE_SERVER)", err)
		}
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// authorLine joins up to three authors, appending "et al." for the rest.
func authorLine(authors []string) string {
	if len(authors) == 0 {
		return ""
	}
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}
