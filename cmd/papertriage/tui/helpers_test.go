package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/papertriage/papertriage/internal/backend"
	"github.com/papertriage/papertriage/internal/candidate"
	"github.com/papertriage/papertriage/internal/session"
)

// stubClient is an in-memory backend.Client.
type stubClient struct {
	mu             sync.Mutex
	items          []candidate.Candidate
	listErr        error
	feedback       []candidate.FeedbackRequest
	feedbackResult *candidate.FeedbackResult

	refreshCalls atomic.Int32
	refreshFn    func(ctx context.Context) (candidate.RefreshResult, error)
}

var _ backend.Client = (*stubClient)(nil)

func newStubClient(statuses ...candidate.Status) *stubClient {
	c := &stubClient{}
	for i, st := range statuses {
		c.items = append(c.items, makeCandidate(i, st))
	}
	return c
}

func makeCandidate(i int, st candidate.Status) candidate.Candidate {
	return candidate.Candidate{
		PaperID:    fmt.Sprintf("p%d", i),
		Title:      fmt.Sprintf("Paper %d", i),
		QueryID:    "q1",
		URLLanding: fmt.Sprintf("https://example.org/paper/%d", i),
		Rank:       i + 1,
		Status:     st,
	}
}

func pendingN(n int) []candidate.Status {
	out := make([]candidate.Status, n)
	for i := range out {
		out[i] = candidate.StatusPending
	}
	return out
}

func (c *stubClient) ListCandidates(_ context.Context, status candidate.Status, page, pageSize int) (backend.ListResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listErr != nil {
		return backend.ListResult{Items: []candidate.Candidate{}}, c.listErr
	}
	var matched []candidate.Candidate
	for _, it := range c.items {
		if status == candidate.StatusAll || it.EffectiveStatus() == status {
			matched = append(matched, it)
		}
	}
	start := min((page-1)*pageSize, len(matched))
	end := min(start+pageSize, len(matched))
	return backend.ListResult{Items: append([]candidate.Candidate{}, matched[start:end]...), Total: len(matched)}, nil
}

func (c *stubClient) GetCandidate(_ context.Context, paperID string) (*candidate.Candidate, error) {
	return nil, backend.ErrNotFound
}

func (c *stubClient) SubmitFeedback(_ context.Context, req candidate.FeedbackRequest) candidate.FeedbackResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback = append(c.feedback, req)
	if c.feedbackResult != nil {
		return *c.feedbackResult
	}
	for i := range c.items {
		if c.items[i].PaperID == req.PaperID {
			c.items[i].Status = req.Label.Status()
		}
	}
	return candidate.FeedbackResult{Success: true, EventID: "e1"}
}

func (c *stubClient) TriggerRefresh(ctx context.Context, _ candidate.RefreshRequest) (candidate.RefreshResult, error) {
	c.refreshCalls.Add(1)
	if c.refreshFn != nil {
		return c.refreshFn(ctx)
	}
	return candidate.RefreshResult{Success: true}, nil
}

func (c *stubClient) ListFeedback(context.Context, string) ([]candidate.FeedbackEvent, error) {
	return nil, errors.New("not implemented")
}

func (c *stubClient) ListLibrary(context.Context, int, int) (backend.LibraryPage, error) {
	return backend.LibraryPage{}, errors.New("not implemented")
}

func (c *stubClient) submitted() []candidate.FeedbackRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]candidate.FeedbackRequest(nil), c.feedback...)
}

// mockClipboard implements ClipboardWriter for testing
type mockClipboard struct {
	lastText string
	err      error
}

func (m *mockClipboard) WriteText(text string) error {
	if m.err != nil {
		return m.err
	}
	m.lastText = text
	return nil
}

type testModelOption func(*model)

func withDimensions(w, h int) testModelOption {
	return func(m *model) { m.width = w; m.height = h }
}

func withStatus(s candidate.Status) testModelOption {
	return func(m *model) { m.session.SetFilter(s) }
}

func withRefreshTimeout(d time.Duration) testModelOption {
	return func(m *model) { m.refresh = session.NewRefreshCoordinator(d) }
}

func withKeepDecided() testModelOption {
	return func(m *model) {
		m.session = session.New(session.KeepDecidedInAll(true))
		m.session.SetFilter(candidate.StatusAll)
	}
}

func initTestModel(client backend.Client, opts ...testModelOption) model {
	m := newModel(Config{
		ServerAddr:    "http://localhost",
		Client:        client,
		Status:        candidate.StatusPending,
		RejectReasons: []string{"off-topic", "duplicate", "low-quality"},
	}, withExternalIODisabled(), withClipboard(&mockClipboard{}))
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// loadedModel builds a model and delivers its first page.
func loadedModel(t *testing.T, client backend.Client, opts ...testModelOption) model {
	t.Helper()
	m := initTestModel(client, opts...)
	msg := m.fetchPage(m.session.Status(), m.session.Page())()
	m, _ = update(m, msg)
	if m.loading {
		t.Fatal("model still loading after first page")
	}
	return m
}

func update(m model, msg tea.Msg) (model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(model), cmd
}

func pressKey(m model, r rune) (model, tea.Cmd) {
	return update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
}

func pressSpecial(m model, k tea.KeyType) (model, tea.Cmd) {
	return update(m, tea.KeyMsg{Type: k})
}

func typeText(m model, s string) model {
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// collectMsgs runs cmd, expanding batches and dropping spinner ticks.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collectMsgs(c)...)
		}
		return out
	case spinner.TickMsg, nil:
		return nil
	default:
		return []tea.Msg{msg}
	}
}

// findMsg returns the first message of type T produced by cmd.
func findMsg[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	msgs := collectMsgs(cmd)
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("Expected %T among %v", zero, msgs)
	return zero
}

// assertMsgType is a helper to assert the type of a tea.Msg and return it.
func assertMsgType[T any](t *testing.T, msg tea.Msg) T {
	t.Helper()
	result, ok := msg.(T)
	if !ok {
		t.Fatalf("Expected %T, got %T: %v", new(T), msg, msg)
	}
	return result
}

func expectJSONPost[Req any, Res any](t *testing.T, path string, expected Req, response Res) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if path != "" && r.URL.Path != path {
			t.Errorf("Expected path %s, got %s", path, r.URL.Path)
		}

		var req Req
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request body: %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if diff := cmp.Diff(expected, req); diff != "" {
			t.Errorf("Request payload mismatch (-want +got):\n%s", diff)
			http.Error(w, "payload mismatch", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(response)
	}
}

func writeTestJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func assertSelected(t *testing.T, m model, idx int) {
	t.Helper()
	if got := m.session.SelectedIndex(); got != idx {
		t.Fatalf("selected index = %d, want %d", got, idx)
	}
}

func assertFlash(t *testing.T, m model, want string) {
	t.Helper()
	if got := m.flashFor(m.currentView); got != want {
		t.Errorf("flash = %q, want %q", got, want)
	}
}
