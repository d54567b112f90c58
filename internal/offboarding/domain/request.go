package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/errors"
)

// Domain errors for the offboarding aggregate and its satellites.
var (
	// ErrRequestNotFound indicates the offboarding request does not exist.
	ErrRequestNotFound = errors.Wrap(errors.ErrNotFound, "offboarding request not found")

	// ErrActiveRequestExists indicates the employee already has an open offboarding request.
	ErrActiveRequestExists = errors.Wrap(errors.ErrConflict, "employee already has an active offboarding request")

	// ErrStaleRequest indicates the request was modified by someone else since it was loaded.
	ErrStaleRequest = errors.Wrap(errors.ErrConflict, "offboarding request was modified concurrently")

	// ErrRequestClosed indicates the request is closed and accepts no further changes.
	ErrRequestClosed = errors.Wrap(errors.ErrInvalidTransition, "offboarding request is closed")

	// ErrRequestCancelled indicates the request was cancelled and accepts no further changes.
	ErrRequestCancelled = errors.Wrap(errors.ErrInvalidTransition, "offboarding request is cancelled")

	// ErrTaskNotFound indicates the offboarding task does not exist.
	ErrTaskNotFound = errors.Wrap(errors.ErrNotFound, "offboarding task not found")

	// ErrAssetClearanceNotFound indicates no asset clearance exists for the request.
	ErrAssetClearanceNotFound = errors.Wrap(errors.ErrNotFound, "asset clearance not found")

	// ErrHandoverNotFound indicates no handover record exists for the request.
	ErrHandoverNotFound = errors.Wrap(errors.ErrNotFound, "handover not found")

	// ErrSettlementNotFound indicates no final settlement exists for the request.
	ErrSettlementNotFound = errors.Wrap(errors.ErrNotFound, "final settlement not found")

	// ErrFeedbackNotFound indicates no exit feedback exists for the request.
	ErrFeedbackNotFound = errors.Wrap(errors.ErrNotFound, "exit feedback not found")

	// ErrItemNotFound indicates a checklist, asset or handover item id is unknown.
	ErrItemNotFound = errors.Wrap(errors.ErrNotFound, "item not found")
)

// Reason is why the employee is leaving.
type Reason string

const (
	ReasonResignation      Reason = "resignation"
	ReasonTermination      Reason = "termination"
	ReasonRetirement       Reason = "retirement"
	ReasonEndOfContract    Reason = "end_of_contract"
	ReasonLayoff           Reason = "layoff"
	ReasonAbsconding       Reason = "absconding"
	ReasonMutualSeparation Reason = "mutual_separation"
)

// Reasons lists every accepted exit reason.
var Reasons = []Reason{
	ReasonResignation,
	ReasonTermination,
	ReasonRetirement,
	ReasonEndOfContract,
	ReasonLayoff,
	ReasonAbsconding,
	ReasonMutualSeparation,
}

// Valid reports whether r is a known reason.
func (r Reason) Valid() bool {
	return slices.Contains(Reasons, r)
}

// RehireEligible reports whether an employee leaving for r may be considered for rehire.
func (r Reason) RehireEligible() bool {
	return r != ReasonTermination && r != ReasonAbsconding
}

// NoticePeriod describes the notice the employee serves before the last working day.
type NoticePeriod struct {
	Days          int       `json:"days"`
	StartDate     time.Time `json:"start_date"`
	Waived        bool      `json:"waived"`
	EndDate       time.Time `json:"end_date"`
	ShortfallDays int       `json:"shortfall_days"`
}

// Recompute derives the notice end date and the shortfall against the last working day.
func (n *NoticePeriod) Recompute(lastWorkingDay time.Time) {
	if n.StartDate.IsZero() {
		n.EndDate = time.Time{}
		n.ShortfallDays = 0
		return
	}
	n.EndDate = n.StartDate.AddDate(0, 0, n.Days)
	n.ShortfallDays = 0
	if n.Waived {
		return
	}
	if gap := int(n.EndDate.Sub(lastWorkingDay).Hours() / 24); gap > 0 {
		n.ShortfallDays = gap
	}
}

// Decision is the outcome of one approval entry.
type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionReturned Decision = "returned"
	DecisionSkipped  Decision = "skipped"
)

// Approval is one entry of the request's approval chain.
type Approval struct {
	Stage       Stage      `json:"stage"`
	ApproverID  *uuid.UUID `json:"approver_id,omitempty"`
	Approver    string     `json:"approver,omitempty"`
	Decision    Decision   `json:"decision"`
	Comment     string     `json:"comment,omitempty"`
	DecidedBy   *uuid.UUID `json:"decided_by,omitempty"`
	RequestedAt time.Time  `json:"requested_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// StatusHistoryEntry is one append-only audit record of a status or stage change.
type StatusHistoryEntry struct {
	Status       Status    `json:"status"`
	Stage        Stage     `json:"stage"`
	ActorID      uuid.UUID `json:"actor_id"`
	ActorName    string    `json:"actor_name,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	AutoAdvanced bool      `json:"auto_advanced,omitempty"`
	At           time.Time `json:"at"`
}

// Actor identifies who performed a change.
type Actor struct {
	ID   uuid.UUID
	Name string
}

// OffboardingRequest is the root aggregate of one employee's exit.
type OffboardingRequest struct {
	ID                   uuid.UUID                           `json:"id"`
	TenantID             string                              `json:"tenant_id"`
	EmployeeID           uuid.UUID                           `json:"employee_id"`
	EmployeeCode         string                              `json:"employee_code"`
	EmployeeName         string                              `json:"employee_name"`
	Department           string                              `json:"department,omitempty"`
	ReportingManagerID   *uuid.UUID                          `json:"reporting_manager_id,omitempty"`
	Reason               Reason                              `json:"reason"`
	ReasonDetails        string                              `json:"reason_details,omitempty"`
	LastWorkingDay       time.Time                           `json:"last_working_day"`
	NoticePeriod         NoticePeriod                        `json:"notice_period"`
	Status               Status                              `json:"status"`
	CurrentStage         Stage                               `json:"current_stage"`
	Approvals            []Approval                          `json:"approvals"`
	StatusHistory        []StatusHistoryEntry                `json:"status_history"`
	Clearances           map[Department]*DepartmentClearance `json:"clearances"`
	CompletionPercentage int                                 `json:"completion_percentage"`
	AssetClearanceID     *uuid.UUID                          `json:"asset_clearance_id,omitempty"`
	HandoverID           *uuid.UUID                          `json:"handover_id,omitempty"`
	SettlementID         *uuid.UUID                          `json:"settlement_id,omitempty"`
	FeedbackID           *uuid.UUID                          `json:"feedback_id,omitempty"`
	TasksGeneratedAt     *time.Time                          `json:"tasks_generated_at,omitempty"`
	EmployeeSnapshot     *EmployeeSnapshot                   `json:"employee_snapshot,omitempty"`
	IsCompleted          bool                                `json:"is_completed"`
	CompletedAt          *time.Time                          `json:"completed_at,omitempty"`
	CancelledAt          *time.Time                          `json:"cancelled_at,omitempty"`
	CancellationReason   string                              `json:"cancellation_reason,omitempty"`
	InitiatedBy          uuid.UUID                           `json:"initiated_by"`
	Version              int                                 `json:"version"`
	CreatedAt            time.Time                           `json:"created_at"`
	UpdatedAt            time.Time                           `json:"updated_at"`
}

// NewOffboardingRequest builds a request sitting at the initiation stage.
func NewOffboardingRequest(
	id uuid.UUID,
	tenantID string,
	employeeID uuid.UUID,
	reason Reason,
	lastWorkingDay time.Time,
	by Actor,
	at time.Time,
) *OffboardingRequest {
	req := &OffboardingRequest{
		ID:             id,
		TenantID:       tenantID,
		EmployeeID:     employeeID,
		Reason:         reason,
		LastWorkingDay: lastWorkingDay,
		Status:         StatusFor(StageInitiation),
		CurrentStage:   StageInitiation,
		Approvals:      []Approval{},
		Clearances:     map[Department]*DepartmentClearance{},
		InitiatedBy:    by.ID,
		CreatedAt:      at,
		UpdatedAt:      at,
	}
	req.StatusHistory = []StatusHistoryEntry{{
		Status:    req.Status,
		Stage:     req.CurrentStage,
		ActorID:   by.ID,
		ActorName: by.Name,
		Reason:    "offboarding initiated",
		At:        at,
	}}
	return req
}

// IsTerminal reports whether the request is closed or cancelled.
func (r *OffboardingRequest) IsTerminal() bool {
	return r.Status == StatusClosed || r.Status == StatusCancelled
}

// EnsureOpen returns an error when the request no longer accepts changes.
func (r *OffboardingRequest) EnsureOpen() error {
	switch {
	case r.Status == StatusCancelled:
		return ErrRequestCancelled
	case r.Status == StatusClosed || r.CurrentStage == StageClosure:
		return ErrRequestClosed
	}
	return nil
}

// Transition moves the request along one edge of the stage graph and appends a history entry.
// The record is left untouched when the edge is invalid.
func (r *OffboardingRequest) Transition(to Stage, by Actor, reason string, autoAdvanced bool, at time.Time) error {
	if r.Status == StatusCancelled {
		return &InvalidTransitionError{From: r.CurrentStage, To: to, Reason: "request is cancelled"}
	}
	if !CanTransition(r.CurrentStage, to) {
		return &InvalidTransitionError{From: r.CurrentStage, To: to, Reason: "target is not a valid next stage"}
	}
	r.CurrentStage = to
	r.Status = StatusFor(to)
	r.StatusHistory = append(r.StatusHistory, StatusHistoryEntry{
		Status:       r.Status,
		Stage:        to,
		ActorID:      by.ID,
		ActorName:    by.Name,
		Reason:       reason,
		AutoAdvanced: autoAdvanced,
		At:           at,
	})
	r.UpdatedAt = at
	return nil
}

// Cancel soft-closes the request without moving its stage.
func (r *OffboardingRequest) Cancel(by Actor, reason string, at time.Time) error {
	if err := r.EnsureOpen(); err != nil {
		return err
	}
	r.Status = StatusCancelled
	r.CancelledAt = &at
	r.CancellationReason = reason
	r.StatusHistory = append(r.StatusHistory, StatusHistoryEntry{
		Status:    StatusCancelled,
		Stage:     r.CurrentStage,
		ActorID:   by.ID,
		ActorName: by.Name,
		Reason:    reason,
		At:        at,
	})
	r.UpdatedAt = at
	return nil
}

// MarkClosed records completion. It is a no-op on a request that is already completed.
func (r *OffboardingRequest) MarkClosed(at time.Time) {
	if r.IsCompleted {
		return
	}
	r.Status = StatusClosed
	r.IsCompleted = true
	r.CompletedAt = &at
	r.CompletionPercentage = 100
	r.UpdatedAt = at
}

// OpenApproval appends a pending approval entry for stage unless one is already open.
func (r *OffboardingRequest) OpenApproval(stage Stage, approverID *uuid.UUID, approver string, at time.Time) bool {
	if r.pendingApproval(stage) != nil {
		return false
	}
	r.Approvals = append(r.Approvals, Approval{
		Stage:       stage,
		ApproverID:  approverID,
		Approver:    approver,
		Decision:    DecisionPending,
		RequestedAt: at,
	})
	return true
}

// DecideApproval closes the open approval of stage, appending one when none is open.
func (r *OffboardingRequest) DecideApproval(stage Stage, decision Decision, by Actor, comment string, at time.Time) {
	entry := r.pendingApproval(stage)
	if entry == nil {
		r.Approvals = append(r.Approvals, Approval{Stage: stage, RequestedAt: at})
		entry = &r.Approvals[len(r.Approvals)-1]
	}
	decidedBy := by.ID
	entry.Decision = decision
	entry.Comment = comment
	entry.DecidedBy = &decidedBy
	entry.DecidedAt = &at
}

func (r *OffboardingRequest) pendingApproval(stage Stage) *Approval {
	for i := len(r.Approvals) - 1; i >= 0; i-- {
		if r.Approvals[i].Stage == stage && r.Approvals[i].Decision == DecisionPending {
			return &r.Approvals[i]
		}
	}
	return nil
}

// StageProgress returns how far along the pipeline the request is, in percent.
func (r *OffboardingRequest) StageProgress() int {
	idx := r.CurrentStage.Index()
	if idx < 0 {
		return 0
	}
	return idx * 100 / (len(Stages) - 1)
}
