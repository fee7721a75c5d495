package notification

import (
	"fmt"
	"strings"
	"time"
)

// summaryRuneLimit caps the task summary shown on the card. Truncation
// counts runes, not bytes, so multi-byte names keep a stable visual width.
const summaryRuneLimit = 50

// Renderer builds assignment notices from raw assignment facts. BaseURL is
// the web frontend root the card links point into.
type Renderer struct {
	BaseURL string
}

// NewRenderer creates a renderer rooted at baseURL.
func NewRenderer(baseURL string) *Renderer {
	return &Renderer{BaseURL: strings.TrimRight(baseURL, "/")}
}

// NoticeInput carries the facts one card is rendered from.
type NoticeInput struct {
	AssignmentID   int64
	TaskID         int64
	PersonID       int64
	RecipientIM    string
	TaskName       string
	TaskSummary    string
	AssignedByName string
	PlannedHours   float64
	Deadline       *time.Time
}

// Render builds the notice card for one confirmed assignment.
func (r *Renderer) Render(in NoticeInput) AssignmentNotice {
	return AssignmentNotice{
		AssignmentID: in.AssignmentID,
		TaskID:       in.TaskID,
		PersonID:     in.PersonID,
		RecipientIM:  in.RecipientIM,
		Title:        fmt.Sprintf("New assignment from %s: %s", in.AssignedByName, in.TaskName),
		Summary:      TruncateSummary(in.TaskSummary),
		PlannedHours: in.PlannedHours,
		Deadline:     in.Deadline,
		DetailURL:    fmt.Sprintf("%s/assignments/%d", r.BaseURL, in.AssignmentID),
		AcceptURL:    fmt.Sprintf("%s/assignments/%d/accept", r.BaseURL, in.AssignmentID),
		RejectURL:    fmt.Sprintf("%s/assignments/%d/reject", r.BaseURL, in.AssignmentID),
	}
}

// TruncateSummary shortens a summary to the card limit, appending an
// ellipsis when anything was cut.
func TruncateSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= summaryRuneLimit {
		return s
	}
	return string(runes[:summaryRuneLimit]) + "..."
}
