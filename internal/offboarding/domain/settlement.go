package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/allisson/exitflow/internal/errors"
)

// CalculationStatus is the lifecycle of a settlement computation.
type CalculationStatus string

const (
	CalculationDraft           CalculationStatus = "draft"
	CalculationCalculated      CalculationStatus = "calculated"
	CalculationPendingApproval CalculationStatus = "pending_approval"
	CalculationApproved        CalculationStatus = "approved"
	CalculationPaid            CalculationStatus = "paid"
)

// Valid reports whether s is a known calculation status.
func (s CalculationStatus) Valid() bool {
	switch s {
	case CalculationDraft, CalculationCalculated, CalculationPendingApproval, CalculationApproved, CalculationPaid:
		return true
	}
	return false
}

// ApprovalStatus is the status derived from a settlement's approval chain.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Settlement approval levels, in chain order.
const (
	SettlementLevelFinance = "finance"
	SettlementLevelHR      = "hr"
)

// ErrSettlementNotApproved rejects approving a calculation whose approval chain is not fully approved.
var ErrSettlementNotApproved = errors.Wrap(
	errors.ErrInvalidInput,
	"settlement can only be approved once every approval entry is approved",
)

// ErrSettlementNotPayable rejects paying a settlement that is not approved.
var ErrSettlementNotPayable = errors.Wrap(errors.ErrInvalidInput, "settlement must be approved before it is paid")

// ErrSettlementLocked rejects changing the figures of an approved or paid settlement.
var ErrSettlementLocked = errors.Wrap(errors.ErrInvalidInput, "approved settlement figures cannot change")

// NamedAmount is a labelled money line.
type NamedAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Earnings holds the salary components payable at exit.
type Earnings struct {
	Basic           decimal.Decimal `json:"basic"`
	HRA             decimal.Decimal `json:"hra"`
	FixedAllowances decimal.Decimal `json:"fixed_allowances"`
	OtherAllowances []NamedAmount   `json:"other_allowances"`
	Bonus           decimal.Decimal `json:"bonus"`
	Incentive       decimal.Decimal `json:"incentive"`
	Commission      decimal.Decimal `json:"commission"`
	Overtime        decimal.Decimal `json:"overtime"`
}

// Total sums every earnings component.
func (e Earnings) Total() decimal.Decimal {
	total := decimal.Sum(e.Basic, e.HRA, e.FixedAllowances, e.Bonus, e.Incentive, e.Commission, e.Overtime)
	for _, a := range e.OtherAllowances {
		total = total.Add(a.Amount)
	}
	return total
}

// LeaveEncashment values unused leave.
type LeaveEncashment struct {
	Days        decimal.Decimal `json:"days"`
	DailyRate   decimal.Decimal `json:"daily_rate"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Reimbursement is an expense claim settled at exit. Only approved claims are paid.
type Reimbursement struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Approved    bool            `json:"approved"`
}

// Deductions holds statutory deductions and recoveries.
type Deductions struct {
	Statutory  []NamedAmount `json:"statutory"`
	Recoveries []NamedAmount `json:"recoveries"`
}

// Total sums every deduction.
func (d Deductions) Total() decimal.Decimal {
	total := decimal.Zero
	for _, a := range d.Statutory {
		total = total.Add(a.Amount)
	}
	for _, a := range d.Recoveries {
		total = total.Add(a.Amount)
	}
	return total
}

// SettlementApproval is one entry of the settlement's own approval chain.
type SettlementApproval struct {
	Level      string     `json:"level"`
	Decision   Decision   `json:"decision"`
	ApproverID *uuid.UUID `json:"approver_id,omitempty"`
	Comment    string     `json:"comment,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// SettlementSummary holds the derived totals.
type SettlementSummary struct {
	GrossEarnings   decimal.Decimal `json:"gross_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	NetPayable      decimal.Decimal `json:"net_payable"`
	RoundOff        decimal.Decimal `json:"round_off"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
}

// FinalSettlement is the exit payout of one request.
type FinalSettlement struct {
	ID                uuid.UUID            `json:"id"`
	RequestID         uuid.UUID            `json:"request_id"`
	Currency          string               `json:"currency"`
	Earnings          Earnings             `json:"earnings"`
	LeaveEncashment   LeaveEncashment      `json:"leave_encashment"`
	Gratuity          decimal.Decimal      `json:"gratuity"`
	Reimbursements    []Reimbursement      `json:"reimbursements"`
	Deductions        Deductions           `json:"deductions"`
	Approvals         []SettlementApproval `json:"approvals"`
	Summary           SettlementSummary    `json:"summary"`
	ApprovalStatus    ApprovalStatus       `json:"approval_status"`
	CalculationStatus CalculationStatus    `json:"calculation_status"`
	PaidAt            *time.Time           `json:"paid_at,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

// NewFinalSettlement creates a draft settlement with a pending finance then HR approval chain.
func NewFinalSettlement(id, requestID uuid.UUID, currency string, at time.Time) *FinalSettlement {
	s := &FinalSettlement{
		ID:        id,
		RequestID: requestID,
		Currency:  currency,
		Approvals: []SettlementApproval{
			{Level: SettlementLevelFinance, Decision: DecisionPending},
			{Level: SettlementLevelHR, Decision: DecisionPending},
		},
		CalculationStatus: CalculationDraft,
		CreatedAt:         at,
		UpdatedAt:         at,
	}
	s.Recompute()
	return s
}

// ApprovedReimbursements sums the approved reimbursement claims.
func (s *FinalSettlement) ApprovedReimbursements() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Reimbursements {
		if r.Approved {
			total = total.Add(r.Amount)
		}
	}
	return total
}

// Recompute derives the leave encashment total, the summary and the approval status.
func (s *FinalSettlement) Recompute() {
	s.LeaveEncashment.TotalAmount = s.LeaveEncashment.Days.Mul(s.LeaveEncashment.DailyRate)

	gross := decimal.Sum(
		s.Earnings.Total(),
		s.LeaveEncashment.TotalAmount,
		s.Gratuity,
		s.ApprovedReimbursements(),
	)
	deductions := s.Deductions.Total()
	net := gross.Sub(deductions)

	s.Summary.GrossEarnings = gross
	s.Summary.TotalDeductions = deductions
	s.Summary.NetPayable = net
	s.Summary.FinalAmount = net.Add(s.Summary.RoundOff).Round(0)
	s.ApprovalStatus = DeriveApprovalStatus(s.Approvals)
}

// DeriveApprovalStatus folds an approval chain: any rejection rejects, all approved approves.
func DeriveApprovalStatus(approvals []SettlementApproval) ApprovalStatus {
	if len(approvals) == 0 {
		return ApprovalPending
	}
	approved := 0
	for _, a := range approvals {
		switch a.Decision {
		case DecisionRejected:
			return ApprovalRejected
		case DecisionApproved:
			approved++
		}
	}
	if approved == len(approvals) {
		return ApprovalApproved
	}
	return ApprovalPending
}

// SetCalculationStatus moves the calculation status, enforcing the approval gate.
func (s *FinalSettlement) SetCalculationStatus(status CalculationStatus, at time.Time) error {
	if !status.Valid() {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown calculation status %q", status)
	}
	s.Recompute()
	switch status {
	case CalculationApproved:
		if s.ApprovalStatus != ApprovalApproved {
			return ErrSettlementNotApproved
		}
	case CalculationPaid:
		if s.CalculationStatus != CalculationApproved && s.CalculationStatus != CalculationPaid {
			return ErrSettlementNotPayable
		}
		if s.PaidAt == nil {
			s.PaidAt = &at
		}
	}
	s.CalculationStatus = status
	s.UpdatedAt = at
	return nil
}

// Locked reports whether the settlement figures are frozen.
func (s *FinalSettlement) Locked() bool {
	return s.CalculationStatus == CalculationApproved || s.CalculationStatus == CalculationPaid
}

// Decide records a decision for one approval level. A rejection drops an approved
// calculation back to pending approval.
func (s *FinalSettlement) Decide(level string, decision Decision, by uuid.UUID, comment string, at time.Time) error {
	if decision != DecisionApproved && decision != DecisionRejected && decision != DecisionPending {
		return errors.Wrapf(errors.ErrInvalidInput, "unsupported settlement decision %q", decision)
	}
	if s.CalculationStatus == CalculationPaid {
		return ErrSettlementLocked
	}
	for i := range s.Approvals {
		a := &s.Approvals[i]
		if a.Level != level {
			continue
		}
		a.Decision = decision
		a.ApproverID = &by
		a.Comment = comment
		a.DecidedAt = &at
		s.UpdatedAt = at
		s.Recompute()
		if s.CalculationStatus == CalculationApproved && s.ApprovalStatus != ApprovalApproved {
			s.CalculationStatus = CalculationPendingApproval
		}
		return nil
	}
	return errors.Wrapf(errors.ErrNotFound, "settlement approval level %q not found", level)
}
