package domain

import "time"

// Submission statuses as stored in the records table.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusDeclined = "declined"
)

// Submission is a persisted innovation submission. Row is the
// admin-facing reference used by /approve and /decline.
type Submission struct {
	Row       int
	UserID    string
	UserName  string
	Answers   SubmitAnswers
	Summary   string
	Status    string
	CreatedAt time.Time
}

// HelpRequest is an append-only log record of the first challenge a user
// brought to the help flow.
type HelpRequest struct {
	ID         string
	UserID     string
	UserName   string
	Department string
	Challenge  string
	CreatedAt  time.Time
}

// Workflow is the seeded per-team workflow catalog entry.
type Workflow struct {
	Team  string
	Items []string
}
