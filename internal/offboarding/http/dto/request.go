// Package dto provides data transfer objects for the offboarding HTTP API.
package dto

import (
	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
	customValidation "github.com/allisson/exitflow/internal/validation"
)

func stringIn[T ~string](values ...T) validation.Rule {
	allowed := make([]any, len(values))
	for i, v := range values {
		allowed[i] = string(v)
	}
	return validation.In(allowed...)
}

func reasons() validation.Rule {
	return stringIn(
		domain.ReasonResignation, domain.ReasonTermination, domain.ReasonRetirement, domain.ReasonEndOfContract,
		domain.ReasonLayoff, domain.ReasonAbsconding, domain.ReasonMutualSeparation,
	)
}

func departments() validation.Rule {
	return stringIn(
		domain.DepartmentHR, domain.DepartmentIT, domain.DepartmentFinance, domain.DepartmentAdmin,
		domain.DepartmentSecurity,
	)
}

// NoticePeriodRequest holds the notice terms agreed at initiation.
type NoticePeriodRequest struct {
	Days      int    `json:"days"`
	StartDate string `json:"start_date"`
	Waived    bool   `json:"waived"`
}

// InitiateRequest starts an offboarding for an employee.
type InitiateRequest struct {
	EmployeeID     string               `json:"employee_id"`
	Reason         string               `json:"reason"`
	ReasonDetails  string               `json:"reason_details"`
	LastWorkingDay string               `json:"last_working_day"`
	NoticePeriod   *NoticePeriodRequest `json:"notice_period"`
}

// Validate checks if the initiate request is valid.
func (r *InitiateRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.EmployeeID, validation.Required, customValidation.UUID),
		validation.Field(&r.Reason, validation.Required, reasons()),
		validation.Field(&r.ReasonDetails, validation.Length(0, 2000)),
		validation.Field(&r.LastWorkingDay, validation.Required, customValidation.Date),
	)
	if err != nil || r.NoticePeriod == nil {
		return err
	}
	return validation.ValidateStruct(r.NoticePeriod,
		validation.Field(&r.NoticePeriod.Days, validation.Min(0), validation.Max(365)),
		validation.Field(&r.NoticePeriod.StartDate, customValidation.Date),
	)
}

// ToInput converts a validated request into the use case input.
func (r *InitiateRequest) ToInput() (usecase.InitiateInput, error) {
	lwd, err := customValidation.ParseDate(r.LastWorkingDay)
	if err != nil {
		return usecase.InitiateInput{}, err
	}
	input := usecase.InitiateInput{
		EmployeeID:     uuid.MustParse(r.EmployeeID),
		Reason:         domain.Reason(r.Reason),
		ReasonDetails:  r.ReasonDetails,
		LastWorkingDay: lwd,
	}
	if r.NoticePeriod != nil {
		notice := &usecase.NoticePeriodInput{Days: r.NoticePeriod.Days, Waived: r.NoticePeriod.Waived}
		if r.NoticePeriod.StartDate != "" {
			if notice.StartDate, err = customValidation.ParseDate(r.NoticePeriod.StartDate); err != nil {
				return usecase.InitiateInput{}, err
			}
		}
		input.NoticePeriod = notice
	}
	return input, nil
}

// AdvanceRequest moves a request. An empty target stage moves it forward.
type AdvanceRequest struct {
	TargetStage string `json:"target_stage"`
	Comment     string `json:"comment"`
}

// Validate checks if the advance request is valid.
func (r *AdvanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TargetStage, stringIn(domain.Stages...)),
		validation.Field(&r.Comment, validation.Length(0, 2000)),
	)
}

// ToInput converts the request into the use case input.
func (r *AdvanceRequest) ToInput() usecase.AdvanceInput {
	return usecase.AdvanceInput{TargetStage: domain.Stage(r.TargetStage), Comment: r.Comment}
}

// ClearanceRequest records a department sign-off.
type ClearanceRequest struct {
	Department string `json:"department"`
	Cleared    *bool  `json:"cleared"`
	Notes      string `json:"notes"`
}

// Validate checks if the clearance request is valid.
func (r *ClearanceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Department, validation.Required, departments()),
		validation.Field(&r.Cleared, validation.NotNil),
		validation.Field(&r.Notes, validation.Length(0, 2000)),
	)
}

// ToInput converts a validated request into the use case input.
func (r *ClearanceRequest) ToInput() usecase.ClearanceInput {
	return usecase.ClearanceInput{
		Department: domain.Department(r.Department),
		Cleared:    *r.Cleared,
		Notes:      r.Notes,
	}
}

// SettlementRequest updates the final settlement figures. Omitted fields are left unchanged.
type SettlementRequest struct {
	Earnings       *domain.Earnings       `json:"earnings"`
	LeaveDays      *decimal.Decimal       `json:"leave_days"`
	DailyRate      *decimal.Decimal       `json:"daily_rate"`
	Gratuity       *decimal.Decimal       `json:"gratuity"`
	Reimbursements []domain.Reimbursement `json:"reimbursements"`
	Deductions     *domain.Deductions     `json:"deductions"`
	Amount         *decimal.Decimal       `json:"amount"`
	Status         string                 `json:"status"`
}

// Validate checks if the settlement request is valid.
func (r *SettlementRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.LeaveDays, customValidation.NonNegativeAmount),
		validation.Field(&r.DailyRate, customValidation.NonNegativeAmount),
		validation.Field(&r.Gratuity, customValidation.NonNegativeAmount),
		validation.Field(&r.Amount, customValidation.NonNegativeAmount),
		validation.Field(&r.Status, stringIn(
			domain.CalculationDraft, domain.CalculationCalculated, domain.CalculationPendingApproval,
			domain.CalculationApproved, domain.CalculationPaid,
		)),
	)
}

// ToInput converts the request into the use case input.
func (r *SettlementRequest) ToInput() usecase.SettlementInput {
	input := usecase.SettlementInput{
		Earnings:       r.Earnings,
		LeaveDays:      r.LeaveDays,
		DailyRate:      r.DailyRate,
		Gratuity:       r.Gratuity,
		Reimbursements: r.Reimbursements,
		Deductions:     r.Deductions,
		Amount:         r.Amount,
	}
	if r.Status != "" {
		status := domain.CalculationStatus(r.Status)
		input.Status = &status
	}
	return input
}

// SettlementDecisionRequest records one level of the settlement approval chain.
type SettlementDecisionRequest struct {
	Level    string `json:"level"`
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

// Validate checks if the decision request is valid.
func (r *SettlementDecisionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Level, validation.Required,
			validation.In(domain.SettlementLevelFinance, domain.SettlementLevelHR)),
		validation.Field(&r.Decision, validation.Required,
			stringIn(domain.DecisionApproved, domain.DecisionRejected, domain.DecisionPending)),
		validation.Field(&r.Comment, validation.Length(0, 2000)),
	)
}

// ToInput converts the request into the use case input.
func (r *SettlementDecisionRequest) ToInput() usecase.SettlementDecisionInput {
	return usecase.SettlementDecisionInput{
		Level:    r.Level,
		Decision: domain.Decision(r.Decision),
		Comment:  r.Comment,
	}
}

// CloseOrCancelRequest closes or cancels a request.
type CloseOrCancelRequest struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Validate checks if the close or cancel request is valid.
func (r *CloseOrCancelRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Action, validation.Required, validation.In(usecase.ActionClose, usecase.ActionCancel)),
		validation.Field(&r.Reason, validation.Length(0, 2000)),
	)
}

// ToInput converts the request into the use case input.
func (r *CloseOrCancelRequest) ToInput() usecase.CloseOrCancelInput {
	return usecase.CloseOrCancelInput{Action: r.Action, Reason: r.Reason}
}

// TaskUpdateRequest ticks a checklist item, moves the task or edits its notes.
type TaskUpdateRequest struct {
	ChecklistItemID string  `json:"checklist_item_id"`
	Done            bool    `json:"done"`
	Action          string  `json:"action"`
	Notes           *string `json:"notes"`
}

// Validate checks if the task update request is valid.
func (r *TaskUpdateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ChecklistItemID, customValidation.UUID),
		validation.Field(&r.Action, validation.In(
			usecase.TaskActionComplete, usecase.TaskActionReopen, usecase.TaskActionVerify,
		)),
	)
}

// ToInput converts a validated request into the use case input.
func (r *TaskUpdateRequest) ToInput() usecase.TaskInput {
	input := usecase.TaskInput{Done: r.Done, Action: r.Action, Notes: r.Notes}
	if r.ChecklistItemID != "" {
		id := uuid.MustParse(r.ChecklistItemID)
		input.ChecklistItemID = &id
	}
	return input
}

// AssetItemRequest adds or updates one asset clearance item.
type AssetItemRequest struct {
	List           string           `json:"list"`
	ItemID         string           `json:"item_id"`
	Name           string           `json:"name"`
	Identifier     string           `json:"identifier"`
	Status         string           `json:"status"`
	Value          *decimal.Decimal `json:"value"`
	RecoveryAmount *decimal.Decimal `json:"recovery_amount"`
	Remarks        string           `json:"remarks"`
}

// Validate checks if the asset item request is valid.
func (r *AssetItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.List, validation.Required, stringIn(domain.AssetLists...)),
		validation.Field(&r.ItemID, customValidation.UUID),
		validation.Field(&r.Name, validation.When(r.ItemID == "", validation.Required, customValidation.NotBlank)),
		validation.Field(&r.Value, customValidation.NonNegativeAmount),
		validation.Field(&r.RecoveryAmount, customValidation.NonNegativeAmount),
	)
}

// ToInput converts a validated request into the use case input.
func (r *AssetItemRequest) ToInput() usecase.AssetItemInput {
	input := usecase.AssetItemInput{
		List:           domain.AssetList(r.List),
		Name:           r.Name,
		Identifier:     r.Identifier,
		Status:         domain.ItemStatus(r.Status),
		Value:          r.Value,
		RecoveryAmount: r.RecoveryAmount,
		Remarks:        r.Remarks,
	}
	if r.ItemID != "" {
		id := uuid.MustParse(r.ItemID)
		input.ItemID = &id
	}
	return input
}

// HandoverItemRequest adds or updates one handover item.
type HandoverItemRequest struct {
	List        string `json:"list"`
	ItemID      string `json:"item_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	HandoverTo  string `json:"handover_to"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	SuccessorID string `json:"successor_id"`
}

// Validate checks if the handover item request is valid.
func (r *HandoverItemRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.List, validation.Required, stringIn(domain.HandoverLists...)),
		validation.Field(&r.ItemID, customValidation.UUID),
		validation.Field(&r.Name, validation.When(r.ItemID == "", validation.Required, customValidation.NotBlank)),
		validation.Field(&r.HandoverTo, customValidation.UUID),
		validation.Field(&r.SuccessorID, customValidation.UUID),
		validation.Field(&r.Status,
			stringIn(domain.HandoverNotStarted, domain.HandoverInProgress, domain.HandoverCompleted)),
	)
}

// ToInput converts a validated request into the use case input.
func (r *HandoverItemRequest) ToInput() usecase.HandoverItemInput {
	input := usecase.HandoverItemInput{
		List:        domain.HandoverList(r.List),
		Name:        r.Name,
		Description: r.Description,
		Status:      domain.HandoverStatus(r.Status),
		Notes:       r.Notes,
		ItemID:      optionalUUID(r.ItemID),
		HandoverTo:  optionalUUID(r.HandoverTo),
		SuccessorID: optionalUUID(r.SuccessorID),
	}
	return input
}

// FeedbackRequest records the exit interview.
type FeedbackRequest struct {
	PrimaryReason     string                  `json:"primary_reason"`
	SecondaryReasons  []string                `json:"secondary_reasons"`
	SatisfactionScore *int                    `json:"satisfaction_score"`
	Ratings           []domain.FeedbackRating `json:"ratings"`
	Answers           []domain.FeedbackAnswer `json:"answers"`
	WouldRecommend    *bool                   `json:"would_recommend"`
	WouldRejoin       *bool                   `json:"would_rejoin"`
	Confidential      bool                    `json:"confidential"`
}

// Validate checks if the feedback request is valid.
func (r *FeedbackRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.PrimaryReason, validation.Length(0, 500)),
		validation.Field(&r.SatisfactionScore, validation.Min(1), validation.Max(10)),
		validation.Field(&r.Ratings, validation.Each(validation.By(func(value interface{}) error {
			rating, _ := value.(domain.FeedbackRating)
			return validation.ValidateStruct(&rating,
				validation.Field(&rating.Category, validation.Required, customValidation.NotBlank),
				validation.Field(&rating.Score, validation.Required, validation.Min(1), validation.Max(5)),
			)
		}))),
	)
}

// ToInput converts the request into the use case input.
func (r *FeedbackRequest) ToInput() usecase.FeedbackInput {
	return usecase.FeedbackInput{
		PrimaryReason:     r.PrimaryReason,
		SecondaryReasons:  r.SecondaryReasons,
		SatisfactionScore: r.SatisfactionScore,
		Ratings:           r.Ratings,
		Answers:           r.Answers,
		WouldRecommend:    r.WouldRecommend,
		WouldRejoin:       r.WouldRejoin,
		Confidential:      r.Confidential,
	}
}

func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}
