package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FeedbackRating is a scored answer of the exit interview.
type FeedbackRating struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

// FeedbackAnswer is a free-form answer of the exit interview.
type FeedbackAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExitFeedback holds the exit interview of one request.
type ExitFeedback struct {
	ID                uuid.UUID        `json:"id"`
	RequestID         uuid.UUID        `json:"request_id"`
	ConductedBy       *uuid.UUID       `json:"conducted_by,omitempty"`
	ConductedAt       *time.Time       `json:"conducted_at,omitempty"`
	PrimaryReason     string           `json:"primary_reason,omitempty"`
	SecondaryReasons  []string         `json:"secondary_reasons,omitempty"`
	SatisfactionScore *int             `json:"satisfaction_score,omitempty"`
	Ratings           []FeedbackRating `json:"ratings,omitempty"`
	Answers           []FeedbackAnswer `json:"answers,omitempty"`
	WouldRecommend    *bool            `json:"would_recommend,omitempty"`
	WouldRejoin       *bool            `json:"would_rejoin,omitempty"`
	Confidential      bool             `json:"confidential"`
	CompletionStatus  string           `json:"completion_status"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Feedback completion states.
const (
	FeedbackNotStarted = "not_started"
	FeedbackPartial    = "partial"
	FeedbackCompleted  = "completed"
)

// NewExitFeedback creates an empty exit interview shell for a request.
func NewExitFeedback(id, requestID uuid.UUID, at time.Time) *ExitFeedback {
	f := &ExitFeedback{ID: id, RequestID: requestID, CreatedAt: at, UpdatedAt: at}
	f.Recompute()
	return f
}

// Recompute derives the completion status from the required sections: reason,
// satisfaction score, at least one open answer and a recommendation signal.
func (f *ExitFeedback) Recompute() {
	filled := 0
	if strings.TrimSpace(f.PrimaryReason) != "" {
		filled++
	}
	if f.SatisfactionScore != nil {
		filled++
	}
	for _, a := range f.Answers {
		if strings.TrimSpace(a.Answer) != "" {
			filled++
			break
		}
	}
	if f.WouldRecommend != nil {
		filled++
	}
	switch filled {
	case 0:
		f.CompletionStatus = FeedbackNotStarted
	case 4:
		f.CompletionStatus = FeedbackCompleted
	default:
		f.CompletionStatus = FeedbackPartial
	}
}
