package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/exitflow/internal/httputil"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
)

// RequestResponse represents an offboarding request in API responses.
type RequestResponse struct {
	ID                   string                                            `json:"id"`
	EmployeeID           string                                            `json:"employee_id"`
	EmployeeCode         string                                            `json:"employee_code"`
	EmployeeName         string                                            `json:"employee_name"`
	Department           string                                            `json:"department,omitempty"`
	Reason               string                                            `json:"reason"`
	ReasonDetails        string                                            `json:"reason_details,omitempty"`
	LastWorkingDay       string                                            `json:"last_working_day"`
	NoticePeriod         domain.NoticePeriod                               `json:"notice_period"`
	Status               string                                            `json:"status"`
	CurrentStage         string                                            `json:"current_stage"`
	Approvals            []domain.Approval                                 `json:"approvals"`
	StatusHistory        []domain.StatusHistoryEntry                       `json:"status_history"`
	Clearances           map[domain.Department]*domain.DepartmentClearance `json:"clearances"`
	CompletionPercentage int                                               `json:"completion_percentage"`
	IsCompleted          bool                                              `json:"is_completed"`
	CompletedAt          *time.Time                                        `json:"completed_at,omitempty"`
	CancelledAt          *time.Time                                        `json:"cancelled_at,omitempty"`
	CancellationReason   string                                            `json:"cancellation_reason,omitempty"`
	EmployeeSnapshot     *domain.EmployeeSnapshot                          `json:"employee_snapshot,omitempty"`
	InitiatedBy          string                                            `json:"initiated_by"`
	Version              int                                               `json:"version"`
	CreatedAt            time.Time                                         `json:"created_at"`
	UpdatedAt            time.Time                                         `json:"updated_at"`
}

// OffboardingResponse is the aggregate returned by every mutating call.
type OffboardingResponse struct {
	Request        RequestResponse           `json:"request"`
	Tasks          []*domain.OffboardingTask `json:"tasks"`
	AssetClearance *domain.AssetClearance    `json:"asset_clearance,omitempty"`
	Handover       *domain.HandoverDetail    `json:"handover,omitempty"`
	Settlement     *domain.FinalSettlement   `json:"settlement,omitempty"`
	Feedback       *domain.ExitFeedback      `json:"feedback,omitempty"`
	Progress       domain.Progress           `json:"progress"`
	Warnings       []string                  `json:"warnings,omitempty"`
}

// ListRequestsResponse represents a page of offboarding requests.
type ListRequestsResponse struct {
	Data       []RequestResponse `json:"data"`
	Page       httputil.Page     `json:"page"`
	NextOffset *int              `json:"next_offset,omitempty"`
}

// ListTasksResponse represents the tasks of a request.
type ListTasksResponse struct {
	Data []*domain.OffboardingTask `json:"data"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// MapRequestToResponse converts a domain request to an API response.
func MapRequestToResponse(req *domain.OffboardingRequest) RequestResponse {
	return RequestResponse{
		ID:                   req.ID.String(),
		EmployeeID:           req.EmployeeID.String(),
		EmployeeCode:         req.EmployeeCode,
		EmployeeName:         req.EmployeeName,
		Department:           req.Department,
		Reason:               string(req.Reason),
		ReasonDetails:        req.ReasonDetails,
		LastWorkingDay:       formatDate(req.LastWorkingDay),
		NoticePeriod:         req.NoticePeriod,
		Status:               string(req.Status),
		CurrentStage:         string(req.CurrentStage),
		Approvals:            req.Approvals,
		StatusHistory:        req.StatusHistory,
		Clearances:           req.Clearances,
		CompletionPercentage: req.CompletionPercentage,
		IsCompleted:          req.IsCompleted,
		CompletedAt:          req.CompletedAt,
		CancelledAt:          req.CancelledAt,
		CancellationReason:   req.CancellationReason,
		EmployeeSnapshot:     req.EmployeeSnapshot,
		InitiatedBy:          idString(req.InitiatedBy),
		Version:              req.Version,
		CreatedAt:            req.CreatedAt,
		UpdatedAt:            req.UpdatedAt,
	}
}

// MapResultToResponse converts a workflow result to an API response.
func MapResultToResponse(result *usecase.Result) OffboardingResponse {
	tasks := result.Records.Tasks
	if tasks == nil {
		tasks = []*domain.OffboardingTask{}
	}
	return OffboardingResponse{
		Request:        MapRequestToResponse(result.Request),
		Tasks:          tasks,
		AssetClearance: result.Records.Assets,
		Handover:       result.Records.Handover,
		Settlement:     result.Records.Settlement,
		Feedback:       result.Records.Feedback,
		Progress:       result.Progress,
		Warnings:       result.Warnings,
	}
}

// MapRequestsToListResponse converts a page of requests to an API response.
func MapRequestsToListResponse(requests []*domain.OffboardingRequest, page httputil.Page) ListRequestsResponse {
	data := make([]RequestResponse, 0, len(requests))
	for _, req := range requests {
		data = append(data, MapRequestToResponse(req))
	}
	return ListRequestsResponse{
		Data:       data,
		Page:       page,
		NextOffset: page.NextOffset(len(requests)),
	}
}

// MapTasksToListResponse converts tasks to an API response.
func MapTasksToListResponse(tasks []*domain.OffboardingTask) ListTasksResponse {
	if tasks == nil {
		tasks = []*domain.OffboardingTask{}
	}
	return ListTasksResponse{Data: tasks}
}
