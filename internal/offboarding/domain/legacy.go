package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LegacyStatus is the status vocabulary of the deprecated simple record shape.
type LegacyStatus string

const (
	LegacyPending    LegacyStatus = "pending"
	LegacyInProgress LegacyStatus = "in_progress"
	LegacyCompleted  LegacyStatus = "completed"
	LegacyCancelled  LegacyStatus = "cancelled"
)

// LegacyStageSuccess is the stage the simple shape reports for a completed exit.
const LegacyStageSuccess = "success"

// LegacyOffboarding is the deprecated simple record shape, derived read-only from the aggregate.
type LegacyOffboarding struct {
	ID               uuid.UUID           `json:"id"`
	EmployeeID       uuid.UUID           `json:"employee_id"`
	Reason           Reason              `json:"reason"`
	LastWorkingDay   time.Time           `json:"last_working_day"`
	Status           LegacyStatus        `json:"status"`
	Stage            string              `json:"stage"`
	Clearance        map[Department]bool `json:"clearance"`
	SettlementAmount *decimal.Decimal    `json:"settlement_amount,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	Deprecated       bool                `json:"deprecated"`
}

// ToLegacy projects the aggregate onto the deprecated shape.
func ToLegacy(req *OffboardingRequest, settlement *FinalSettlement) LegacyOffboarding {
	view := LegacyOffboarding{
		ID:             req.ID,
		EmployeeID:     req.EmployeeID,
		Reason:         req.Reason,
		LastWorkingDay: req.LastWorkingDay,
		Stage:          string(req.CurrentStage),
		Clearance:      make(map[Department]bool, len(req.Clearances)),
		CompletedAt:    req.CompletedAt,
		Deprecated:     true,
	}
	for dept, c := range req.Clearances {
		view.Clearance[dept] = c.Cleared
	}
	if settlement != nil {
		amount := settlement.Summary.FinalAmount
		view.SettlementAmount = &amount
	}
	switch {
	case req.Status == StatusCancelled:
		view.Status = LegacyCancelled
	case req.IsCompleted:
		view.Status = LegacyCompleted
		view.Stage = LegacyStageSuccess
	case req.CurrentStage == StageInitiation:
		view.Status = LegacyPending
	default:
		view.Status = LegacyInProgress
	}
	return view
}
