// Package domain defines the outbox events that record pending workflow work.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/errors"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending    OutboxEventStatus = "pending"
	OutboxEventStatusProcessing OutboxEventStatus = "processing"
	OutboxEventStatusProcessed  OutboxEventStatus = "processed"
	OutboxEventStatusFailed     OutboxEventStatus = "failed"
)

// EventTypeStageEntered is written with every persisted stage transition.
const EventTypeStageEntered = "offboarding.stage_entered"

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	AggregateID uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StageIntent is the payload of a stage entered event: the setup of Stage for the request
// still has to run.
type StageIntent struct {
	TenantID  string    `json:"tenant_id"`
	RequestID uuid.UUID `json:"request_id"`
	Stage     string    `json:"stage"`
	ActorID   uuid.UUID `json:"actor_id"`
}

// NewStageIntentEvent builds a pending stage entered event.
func NewStageIntentEvent(id uuid.UUID, intent StageIntent, at time.Time) (*OutboxEvent, error) {
	payload, err := json.Marshal(intent)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal stage intent")
	}
	return &OutboxEvent{
		ID:          id,
		AggregateID: intent.RequestID,
		EventType:   EventTypeStageEntered,
		Payload:     string(payload),
		Status:      OutboxEventStatusPending,
		CreatedAt:   at,
		UpdatedAt:   at,
	}, nil
}

// StageIntent decodes the payload of a stage entered event.
func (e *OutboxEvent) StageIntent() (StageIntent, error) {
	var intent StageIntent
	if e.EventType != EventTypeStageEntered {
		return intent, errors.Wrapf(errors.ErrInvalidInput, "event %s is not a stage intent", e.EventType)
	}
	if err := json.Unmarshal([]byte(e.Payload), &intent); err != nil {
		return intent, errors.Wrap(errors.ErrInvalidInput, "malformed stage intent payload")
	}
	return intent, nil
}

// MarkProcessed records successful processing.
func (e *OutboxEvent) MarkProcessed(at time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &at
	e.LastError = nil
	e.UpdatedAt = at
}

// MarkAttemptFailed records a failed attempt. The event returns to pending until maxRetries
// attempts have failed.
func (e *OutboxEvent) MarkAttemptFailed(cause error, maxRetries int, at time.Time) {
	e.Retries++
	msg := cause.Error()
	e.LastError = &msg
	e.Status = OutboxEventStatusPending
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
	e.UpdatedAt = at
}
