// Package http provides HTTP handlers for the offboarding workflow.
// Every handler resolves the tenant and the actor from the authenticated token.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	authHTTP "github.com/allisson/exitflow/internal/auth/http"
	"github.com/allisson/exitflow/internal/httputil"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/http/dto"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
	customValidation "github.com/allisson/exitflow/internal/validation"
)

// validatable is implemented by every request DTO.
type validatable interface {
	Validate() error
}

// OffboardingHandler handles HTTP requests for the offboarding workflow.
type OffboardingHandler struct {
	useCase usecase.OffboardingUseCase
	logger  *slog.Logger
}

// NewOffboardingHandler creates a new offboarding handler.
func NewOffboardingHandler(useCase usecase.OffboardingUseCase, logger *slog.Logger) *OffboardingHandler {
	return &OffboardingHandler{
		useCase: useCase,
		logger:  logger,
	}
}

// RegisterRoutes mounts the offboarding endpoints on group.
func (h *OffboardingHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("", h.InitiateHandler)
	group.GET("", h.ListHandler)
	group.GET("/:id", h.GetHandler)
	group.GET("/:id/legacy", h.GetLegacyHandler)
	group.POST("/:id/advance", h.AdvanceHandler)
	group.POST("/:id/clearance", h.SetClearanceHandler)
	group.PUT("/:id/settlement", h.UpdateSettlementHandler)
	group.POST("/:id/settlement/approvals", h.DecideSettlementHandler)
	group.POST("/:id/close-or-cancel", h.CloseOrCancelHandler)
	group.POST("/:id/complete", h.CompleteHandler)
	group.GET("/:id/tasks", h.ListTasksHandler)
	group.PATCH("/:id/tasks/:taskId", h.UpdateTaskHandler)
	group.PUT("/:id/assets/items", h.UpdateAssetItemHandler)
	group.PUT("/:id/handover/items", h.UpdateHandoverItemHandler)
	group.PUT("/:id/feedback", h.SubmitFeedbackHandler)
}

// actor returns the authenticated actor or writes a 401 response.
func (h *OffboardingHandler) actor(c *gin.Context) (*authDomain.Actor, bool) {
	actor, ok := authHTTP.GetActor(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, authDomain.ErrMissingActor, h.logger)
		return nil, false
	}
	return actor, true
}

// uuidParam parses a path parameter or writes a 400 response.
func (h *OffboardingHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid %s format: must be a valid UUID", name), h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes and validates a JSON body or writes a 400 response.
func (h *OffboardingHandler) bind(c *gin.Context, req validatable) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return false
	}
	return true
}

// respond writes a workflow result or maps its error.
func (h *OffboardingHandler) respond(c *gin.Context, status int, result *usecase.Result, err error) {
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(status, dto.MapResultToResponse(result))
}

// InitiateHandler starts an offboarding and submits it for approval.
// POST /v1/offboarding - Returns 201 Created with the aggregate.
func (h *OffboardingHandler) InitiateHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req dto.InitiateRequest
	if !h.bind(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	result, err := h.useCase.Initiate(c.Request.Context(), actor.TenantID, actor, input)
	h.respond(c, http.StatusCreated, result, err)
}

// ListHandler lists requests of the actor's tenant.
// GET /v1/offboarding?status=&stage=&employee_id=&offset=0&limit=50
func (h *OffboardingHandler) ListHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	page, err := httputil.ParsePage(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	filter := usecase.ListFilter{
		Status: domain.Status(c.Query("status")),
		Stage:  domain.Stage(c.Query("stage")),
		Offset: page.Offset,
		Limit:  page.Limit,
	}
	if filter.Stage != "" && !filter.Stage.Valid() {
		httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid stage %q", filter.Stage), h.logger)
		return
	}
	if raw := c.Query("employee_id"); raw != "" {
		employeeID, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c, fmt.Errorf("invalid employee_id format: must be a valid UUID"), h.logger)
			return
		}
		filter.EmployeeID = &employeeID
	}

	requests, err := h.useCase.List(c.Request.Context(), actor.TenantID, actor, filter)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapRequestsToListResponse(requests, page))
}

// GetHandler returns the aggregate with its satellites and progress.
// GET /v1/offboarding/:id
func (h *OffboardingHandler) GetHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.useCase.Get(c.Request.Context(), actor.TenantID, actor, id)
	h.respond(c, http.StatusOK, result, err)
}

// GetLegacyHandler returns the deprecated simple record shape.
// GET /v1/offboarding/:id/legacy
func (h *OffboardingHandler) GetLegacyHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	view, err := h.useCase.GetLegacy(c.Request.Context(), actor.TenantID, actor, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.Header("Deprecation", "true")
	c.JSON(http.StatusOK, view)
}

// AdvanceHandler moves a request to its next stage or back to an earlier one.
// POST /v1/offboarding/:id/advance
func (h *OffboardingHandler) AdvanceHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.AdvanceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.Advance(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// SetClearanceHandler records a department sign-off.
// POST /v1/offboarding/:id/clearance
func (h *OffboardingHandler) SetClearanceHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.ClearanceRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.SetClearance(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// UpdateSettlementHandler updates the final settlement figures.
// PUT /v1/offboarding/:id/settlement
func (h *OffboardingHandler) UpdateSettlementHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.SettlementRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.UpdateSettlement(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// DecideSettlementHandler records a settlement approval decision.
// POST /v1/offboarding/:id/settlement/approvals
func (h *OffboardingHandler) DecideSettlementHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.SettlementDecisionRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.DecideSettlement(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// CloseOrCancelHandler closes a request from the exit interview or cancels it.
// POST /v1/offboarding/:id/close-or-cancel
func (h *OffboardingHandler) CloseOrCancelHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.CloseOrCancelRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.CloseOrCancel(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// CompleteHandler is the deprecated "mark completed" entry point.
// POST /v1/offboarding/:id/complete
func (h *OffboardingHandler) CompleteHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	result, err := h.useCase.Complete(c.Request.Context(), actor.TenantID, actor, id)
	h.respond(c, http.StatusOK, result, err)
}

// ListTasksHandler lists the generated tasks of a request.
// GET /v1/offboarding/:id/tasks
func (h *OffboardingHandler) ListTasksHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	tasks, err := h.useCase.ListTasks(c.Request.Context(), actor.TenantID, actor, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, dto.MapTasksToListResponse(tasks))
}

// UpdateTaskHandler updates one task of a request.
// PATCH /v1/offboarding/:id/tasks/:taskId
func (h *OffboardingHandler) UpdateTaskHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	taskID, ok := h.uuidParam(c, "taskId")
	if !ok {
		return
	}

	var req dto.TaskUpdateRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.UpdateTask(c.Request.Context(), actor.TenantID, actor, id, taskID, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// UpdateAssetItemHandler adds or updates one asset clearance item.
// PUT /v1/offboarding/:id/assets/items
func (h *OffboardingHandler) UpdateAssetItemHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.AssetItemRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.UpdateAssetItem(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// UpdateHandoverItemHandler adds or updates one handover item.
// PUT /v1/offboarding/:id/handover/items
func (h *OffboardingHandler) UpdateHandoverItemHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.HandoverItemRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.UpdateHandoverItem(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}

// SubmitFeedbackHandler records the exit interview.
// PUT /v1/offboarding/:id/feedback
func (h *OffboardingHandler) SubmitFeedbackHandler(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}

	var req dto.FeedbackRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.useCase.SubmitFeedback(c.Request.Context(), actor.TenantID, actor, id, req.ToInput())
	h.respond(c, http.StatusOK, result, err)
}
