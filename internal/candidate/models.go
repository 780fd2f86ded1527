package candidate

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// StatusAll is the empty filter: every status.
const StatusAll Status = ""

// ParseStatus accepts a filter value as typed by an operator. The empty
// string and "all" both mean no filter.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return StatusAll, nil
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusAccepted):
		return StatusAccepted, nil
	case string(StatusRejected):
		return StatusRejected, nil
	}
	return "", fmt.Errorf("invalid status %q (want pending, accepted, rejected or all)", s)
}

// Valid reports whether s is one of the three candidate states.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusRejected
}

// IsDecided reports whether s is terminal.
func (s Status) IsDecided() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Label is an operator decision as sent to the feedback endpoint.
type Label string

const (
	LabelAccept Label = "accept"
	LabelReject Label = "reject"
)

// Status returns the terminal status a confirmed decision moves a candidate to.
func (l Label) Status() Status {
	switch l {
	case LabelAccept:
		return StatusAccepted
	case LabelReject:
		return StatusRejected
	}
	return ""
}

func (l Label) Valid() bool {
	return l == LabelAccept || l == LabelReject
}

// Candidate is a paper record as returned by the backend.
type Candidate struct {
	PaperID         string            `json:"paper_id"`
	Title           string            `json:"title"`
	Authors         []string          `json:"authors,omitempty"`
	Abstract        string            `json:"abstract,omitempty"`
	Summary         string            `json:"summary,omitempty"`
	Year            int               `json:"year,omitempty"`
	Venue           string            `json:"venue,omitempty"`
	DOI             string            `json:"doi,omitempty"`
	URLPDF          string            `json:"url_pdf,omitempty"`
	URLLanding      string            `json:"url_landing,omitempty"`
	QueryID         string            `json:"query_id,omitempty"`
	RetrievalSource string            `json:"retrieval_source,omitempty"`
	GateLevel       string            `json:"gate_level,omitempty"`
	RetrievalScore  float64           `json:"retrieval_score"`
	RerankScore     *float64          `json:"rerank_score,omitempty"`
	SystemScore     float64           `json:"system_score,omitempty"`
	Rank            int               `json:"rank"`
	KeywordsHit     []string          `json:"keywords_hit,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	PillarEvidence  map[string]string `json:"pillar_evidence,omitempty"`
	Status          Status            `json:"status"`
}

// EffectiveStatus treats a missing status as pending, matching how the
// backend creates new candidates.
func (c Candidate) EffectiveStatus() Status {
	if c.Status == "" {
		return StatusPending
	}
	return c.Status
}

// IsPending reports whether the candidate can still receive a decision.
func (c Candidate) IsPending() bool {
	return c.EffectiveStatus() == StatusPending
}

// AbstractText returns the abstract, falling back to the summary.
func (c Candidate) AbstractText() string {
	if c.Abstract != "" {
		return c.Abstract
	}
	return c.Summary
}

// Link returns the landing page when known, otherwise the paper id, which
// the backend also uses as a canonical URL.
func (c Candidate) Link() string {
	if c.URLLanding != "" {
		return c.URLLanding
	}
	return c.PaperID
}

// PillarLabel shortens an evidence category key such as
// "Review_Methods_Evidence" to "Methods".
func PillarLabel(key string) string {
	key = strings.Replace(key, "Review_", "", 1)
	return strings.Replace(key, "_Evidence", "", 1)
}

// Stats are the per-status counts across the whole unfiltered collection.
type Stats struct {
	Pending  int `json:"pending"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

func (s Stats) Total() int {
	return s.Pending + s.Accepted + s.Rejected
}

// Apply records one confirmed pending -> newStatus transition.
func (s *Stats) Apply(newStatus Status) {
	switch newStatus {
	case StatusAccepted:
		s.Pending--
		s.Accepted++
	case StatusRejected:
		s.Pending--
		s.Rejected++
	}
}

// CountStats tallies statuses over a full collection.
func CountStats(items []Candidate) Stats {
	var s Stats
	for _, c := range items {
		switch c.EffectiveStatus() {
		case StatusPending:
			s.Pending++
		case StatusAccepted:
			s.Accepted++
		case StatusRejected:
			s.Rejected++
		}
	}
	return s
}

// FeedbackRequest is the body of POST /api/feedback.
type FeedbackRequest struct {
	PaperID    string   `json:"paper_id"`
	QueryID    string   `json:"query_id,omitempty"`
	Label      Label    `json:"label"`
	ReasonTags []string `json:"reason_tags"`
	FreeText   *string  `json:"free_text"`
}

// NewFeedbackRequest normalizes operator input: reason tags are kept only for
// rejections and never serialize as null, and free text that is empty after
// trimming is sent as null.
func NewFeedbackRequest(paperID string, label Label, reasonTags []string, freeText string) FeedbackRequest {
	req := FeedbackRequest{
		PaperID:    paperID,
		Label:      label,
		ReasonTags: []string{},
	}
	if label == LabelReject {
		for _, tag := range reasonTags {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.ReasonTags = append(req.ReasonTags, tag)
			}
		}
	}
	if text := strings.TrimSpace(freeText); text != "" {
		req.FreeText = &text
	}
	return req
}

// FeedbackResult is the normalized outcome of a feedback submission.
type FeedbackResult struct {
	Success bool   `json:"success"`
	EventID string `json:"event_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// RefreshRequest is the body of POST /api/candidates/refresh.
type RefreshRequest struct {
	MaxResults int      `json:"max_results"`
	Sources    []string `json:"sources,omitempty"`
}

// RefreshResult is the body returned by a successful refresh.
type RefreshResult struct {
	Success        bool           `json:"success"`
	Added          int            `json:"added"`
	QueryID        string         `json:"query_id,omitempty"`
	TotalRetrieved int            `json:"total_retrieved,omitempty"`
	BySource       map[string]int `json:"by_source,omitempty"`
	Message        string         `json:"message,omitempty"`
}

// FeedbackEvent is a recorded decision as listed by GET /api/feedback.
type FeedbackEvent struct {
	EventID    string   `json:"event_id"`
	PaperID    string   `json:"paper_id"`
	QueryID    string   `json:"query_id"`
	Label      Label    `json:"label"`
	ReasonTags []string `json:"reason_tags"`
	FreeText   *string  `json:"free_text"`
	CreatedAt  string   `json:"created_at"`
	CreatedBy  string   `json:"created_by"`
}

// LibraryItem is an accepted paper as listed by GET /api/library.
type LibraryItem struct {
	PaperID         string   `json:"paper_id"`
	Title           string   `json:"title"`
	Authors         []string `json:"authors,omitempty"`
	Year            int      `json:"year,omitempty"`
	Venue           string   `json:"venue,omitempty"`
	DOI             string   `json:"doi,omitempty"`
	URLLanding      string   `json:"url_landing,omitempty"`
	RetrievalSource string   `json:"retrieval_source,omitempty"`
	GateLevel       string   `json:"gate_level,omitempty"`
	AddedAt         string   `json:"added_at,omitempty"`
	AddedBy         string   `json:"added_by,omitempty"`
}
