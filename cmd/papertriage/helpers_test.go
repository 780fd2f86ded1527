package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/testenv"
)

// mockBackend is an in-memory triage backend served over httptest.
type mockBackend struct {
	mu        sync.Mutex
	items     []candidate.Candidate
	feedback  []candidate.FeedbackRequest
	keys      []string
	refreshes []candidate.RefreshRequest
	events    []candidate.FeedbackEvent
	sinceArgs []string
	refresh   candidate.RefreshResult
	library   []candidate.LibraryItem
}

func testCandidate(i int, st candidate.Status) candidate.Candidate {
	return candidate.Candidate{
		PaperID:        fmt.Sprintf("p%d", i),
		Title:          fmt.Sprintf("Paper %d", i),
		Authors:        []string{"Ada Lovelace", "Alan Turing"},
		Abstract:       fmt.Sprintf("Abstract of paper %d.", i),
		Year:           2020 + i,
		Venue:          "NeurIPS",
		QueryID:        "q1",
		URLLanding:     fmt.Sprintf("https://example.org/%d", i),
		RetrievalScore: 0.5,
		Rank:           i + 1,
		Status:         st,
	}
}

// newMockBackend starts a server with one candidate per status given.
func newMockBackend(t *testing.T, statuses ...candidate.Status) (*httptest.Server, *mockBackend) {
	t.Helper()
	mb := &mockBackend{refresh: candidate.RefreshResult{Success: true}}
	for i, st := range statuses {
		mb.items = append(mb.items, testCandidate(i, st))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/candidates", mb.handleList)
	mux.HandleFunc("GET /api/candidates/{id}", mb.handleGet)
	mux.HandleFunc("POST /api/candidates/refresh", mb.handleRefresh)
	mux.HandleFunc("POST /api/feedback", mb.handleFeedback)
	mux.HandleFunc("GET /api/feedback", func(w http.ResponseWriter, r *http.Request) {
		mb.mu.Lock()
		defer mb.mu.Unlock()
		mb.sinceArgs = append(mb.sinceArgs, r.URL.Query().Get("since"))
		writeTestJSON(w, map[string]any{"items": mb.events, "total": len(mb.events)})
	})
	mux.HandleFunc("GET /api/library", func(w http.ResponseWriter, r *http.Request) {
		mb.mu.Lock()
		defer mb.mu.Unlock()
		writeTestJSON(w, backend.LibraryPage{Items: mb.library, Total: len(mb.library)})
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts, mb
}

func (mb *mockBackend) handleList(w http.ResponseWriter, r *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	status := candidate.Status(q.Get("status"))

	matched := []candidate.Candidate{}
	for _, c := range mb.items {
		if status == candidate.StatusAll || c.EffectiveStatus() == status {
			matched = append(matched, c)
		}
	}
	start := min((max(page, 1)-1)*size, len(matched))
	end := min(start+size, len(matched))
	writeTestJSON(w, backend.ListResult{Items: matched[start:end], Total: len(matched), Page: page, PageSize: size})
}

func (mb *mockBackend) handleGet(w http.ResponseWriter, r *http.Request) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for _, c := range mb.items {
		if c.PaperID == r.PathValue("id") {
			writeTestJSON(w, c)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
	writeTestJSON(w, map[string]string{"detail": "Paper not found"})
}

func (mb *mockBackend) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req candidate.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.feedback = append(mb.feedback, req)
	mb.keys = append(mb.keys, r.Header.Get("Idempotency-Key"))
	for i := range mb.items {
		if mb.items[i].PaperID == req.PaperID {
			mb.items[i].Status = req.Label.Status()
		}
	}
	writeTestJSON(w, candidate.FeedbackResult{Success: true, EventID: fmt.Sprintf("evt-%d", len(mb.feedback))})
}

func (mb *mockBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req candidate.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.refreshes = append(mb.refreshes, req)
	for i := 0; i < mb.refresh.Added; i++ {
		mb.items = append(mb.items, testCandidate(len(mb.items), candidate.StatusPending))
	}
	writeTestJSON(w, mb.refresh)
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// runCLI executes the root command against addr with an isolated data dir.
func runCLI(t *testing.T, addr string, args ...string) (string, error) {
	t.Helper()
	if addr != "" {
		args = append([]string{"--server", addr}, args...)
	}
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

// isolateConfig points the config at an empty temp dir.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := testenv.SetDataDir(t)
	t.Setenv("PAPERTRIAGE_SERVER", "")
	return dir
}

func assertContainsAll(t *testing.T, name, subject string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(subject, want) {
			t.Errorf("expected %s to contain %q, got: %s", name, want, subject)
		}
	}
}
