package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	apperrors "github.com/allisson/exitflow/internal/errors"
	"github.com/allisson/exitflow/internal/httputil"
	"github.com/allisson/exitflow/internal/offboarding/domain"
	"github.com/allisson/exitflow/internal/offboarding/http/dto"
	"github.com/allisson/exitflow/internal/offboarding/http/mocks"
	"github.com/allisson/exitflow/internal/offboarding/usecase"
)

// setupTestHandler creates a test offboarding handler with a mocked use case.
func setupTestHandler(t *testing.T) (*OffboardingHandler, *mocks.MockOffboardingUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockOffboardingUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewOffboardingHandler(mockUseCase, logger), mockUseCase
}

func testActor() *authDomain.Actor {
	return &authDomain.Actor{
		UserID:   uuid.New(),
		TenantID: "acme",
		Name:     "Dana HR",
		Role:     authDomain.RoleHRManager,
	}
}

func testResult(id uuid.UUID) *usecase.Result {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &usecase.Result{
		Request: &domain.OffboardingRequest{
			ID:             id,
			TenantID:       "acme",
			EmployeeID:     uuid.New(),
			EmployeeCode:   "E-100",
			EmployeeName:   "Sam Lee",
			Reason:         domain.ReasonResignation,
			LastWorkingDay: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
			Status:         domain.StatusApprovalsPending,
			CurrentStage:   domain.StageManagerApproval,
			Version:        2,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}
}

func decodeResponse(t *testing.T, body []byte) dto.OffboardingResponse {
	t.Helper()
	var response dto.OffboardingResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func decodeError(t *testing.T, body []byte) httputil.ErrorResponse {
	t.Helper()
	var response httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &response))
	return response
}

func TestOffboardingHandler_InitiateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		employeeID := uuid.New()
		id := uuid.New()

		request := dto.InitiateRequest{
			EmployeeID:     employeeID.String(),
			Reason:         "resignation",
			LastWorkingDay: "2026-03-31",
			NoticePeriod:   &dto.NoticePeriodRequest{Days: 30, StartDate: "2026-03-01"},
		}

		mockUseCase.On("Initiate", mock.Anything, "acme", actor, mock.MatchedBy(func(in usecase.InitiateInput) bool {
			return in.EmployeeID == employeeID &&
				in.Reason == domain.ReasonResignation &&
				in.LastWorkingDay.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) &&
				in.NoticePeriod != nil && in.NoticePeriod.Days == 30
		})).Return(testResult(id), nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/offboarding", request, actor)
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		response := decodeResponse(t, w.Body.Bytes())
		assert.Equal(t, id.String(), response.Request.ID)
		assert.Equal(t, "manager_approval", response.Request.CurrentStage)
		assert.Equal(t, "2026-03-31", response.Request.LastWorkingDay)
		assert.NotNil(t, response.Tasks)
	})

	t.Run("Error_MissingActor", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/offboarding", dto.InitiateRequest{}, nil)
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "unauthorized", decodeError(t, w.Body.Bytes()).Error)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/offboarding", "{invalid", testActor())
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w.Body.Bytes()).Error)
	})

	t.Run("Error_ValidationFailed", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		request := dto.InitiateRequest{
			EmployeeID:     "not-a-uuid",
			Reason:         "vacation",
			LastWorkingDay: "31/03/2026",
		}

		c, w := createTestContext(http.MethodPost, "/v1/offboarding", request, testActor())
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeError(t, w.Body.Bytes()).Error)
	})

	t.Run("Error_ActiveRequestExists", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()

		request := dto.InitiateRequest{
			EmployeeID:     uuid.New().String(),
			Reason:         "termination",
			LastWorkingDay: "2026-03-31",
		}

		mockUseCase.On("Initiate", mock.Anything, "acme", actor, mock.Anything).
			Return(nil, domain.ErrActiveRequestExists).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/offboarding", request, actor)
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "conflict", decodeError(t, w.Body.Bytes()).Error)
	})
}

func TestOffboardingHandler_ListHandler(t *testing.T) {
	t.Run("Success_WithFilters", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		employeeID := uuid.New()
		result := testResult(uuid.New())

		expected := usecase.ListFilter{
			Status:     domain.StatusApprovalsPending,
			Stage:      domain.StageManagerApproval,
			EmployeeID: &employeeID,
			Offset:     10,
			Limit:      20,
		}
		mockUseCase.On("List", mock.Anything, "acme", actor, expected).
			Return([]*domain.OffboardingRequest{result.Request}, nil).
			Once()

		path := "/v1/offboarding?status=approvals_pending&stage=manager_approval&employee_id=" +
			employeeID.String() + "&offset=10&limit=20"
		c, w := createTestContext(http.MethodGet, path, nil, actor)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListRequestsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, result.Request.ID.String(), response.Data[0].ID)
		assert.Equal(t, 20, response.Page.Limit)
		assert.Nil(t, response.NextOffset)
	})

	t.Run("Success_Empty", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()

		mockUseCase.On("List", mock.Anything, "acme", actor, usecase.ListFilter{Limit: 50}).
			Return([]*domain.OffboardingRequest{}, nil).
			Once()

		c, w := createTestContext(http.MethodGet, "/v1/offboarding", nil, actor)
		handler.ListHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[],"page":{"offset":0,"limit":50}}`, w.Body.String())
	})

	t.Run("Error_InvalidStage", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/offboarding?stage=onboarding", nil, testActor())
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidEmployeeID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/offboarding?employee_id=42", nil, testActor())
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidPagination", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/offboarding?limit=1000", nil, testActor())
		handler.ListHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOffboardingHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("Get", mock.Anything, "acme", actor, id).Return(testResult(id), nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/offboarding/"+id.String(), nil, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, id.String(), decodeResponse(t, w.Body.Bytes()).Request.ID)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)

		c, w := createTestContext(http.MethodGet, "/v1/offboarding/abc", nil, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: "abc"}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w.Body.Bytes()).Message, "invalid id format")
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("Get", mock.Anything, "acme", actor, id).Return(nil, domain.ErrRequestNotFound).Once()

		c, w := createTestContext(http.MethodGet, "/v1/offboarding/"+id.String(), nil, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_Forbidden", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		permErr := &authDomain.PermissionError{
			Role:       authDomain.RoleEmployee,
			Action:     "view",
			Permission: authDomain.PermOffboardingView,
		}
		mockUseCase.On("Get", mock.Anything, "acme", actor, id).Return(nil, permErr).Once()

		c, w := createTestContext(http.MethodGet, "/v1/offboarding/"+id.String(), nil, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.GetHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		response := decodeError(t, w.Body.Bytes())
		assert.Equal(t, "forbidden", response.Error)
		assert.Equal(t, "view", response.Details["action"])
	})
}

func TestOffboardingHandler_GetLegacyHandler(t *testing.T) {
	handler, mockUseCase := setupTestHandler(t)
	actor := testActor()
	id := uuid.New()

	view := &domain.LegacyOffboarding{
		ID:     id,
		Status: domain.LegacyInProgress,
		Stage:  "approvals",
	}
	mockUseCase.On("GetLegacy", mock.Anything, "acme", actor, id).Return(view, nil).Once()

	c, w := createTestContext(http.MethodGet, "/v1/offboarding/"+id.String()+"/legacy", nil, actor)
	c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
	handler.GetLegacyHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("Deprecation"))
	assert.Contains(t, w.Body.String(), `"status":"in_progress"`)
}

func TestOffboardingHandler_AdvanceHandler(t *testing.T) {
	t.Run("Success_Forward", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		input := usecase.AdvanceInput{Comment: "approved"}
		mockUseCase.On("Advance", mock.Anything, "acme", actor, id, input).Return(testResult(id), nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/advance",
			dto.AdvanceRequest{Comment: "approved"}, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.AdvanceHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_UnknownTargetStage", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()

		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/advance",
			dto.AdvanceRequest{TargetStage: "nowhere"}, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.AdvanceHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeError(t, w.Body.Bytes()).Error)
	})

	t.Run("Error_InvalidTransition", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("Advance", mock.Anything, "acme", actor, id, mock.Anything).
			Return(nil, domain.ErrRequestClosed).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/advance",
			dto.AdvanceRequest{}, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.AdvanceHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_transition", decodeError(t, w.Body.Bytes()).Error)
	})

	t.Run("Error_StaleRequest", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("Advance", mock.Anything, "acme", actor, id, mock.Anything).
			Return(nil, domain.ErrStaleRequest).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/advance",
			dto.AdvanceRequest{}, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.AdvanceHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestOffboardingHandler_SetClearanceHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()
		cleared := true

		input := usecase.ClearanceInput{Department: domain.DepartmentIT, Cleared: true, Notes: "laptop returned"}
		mockUseCase.On("SetClearance", mock.Anything, "acme", actor, id, input).Return(testResult(id), nil).Once()

		request := dto.ClearanceRequest{Department: "it", Cleared: &cleared, Notes: "laptop returned"}
		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/clearance", request, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.SetClearanceHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Error_MissingCleared", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()

		request := dto.ClearanceRequest{Department: "it"}
		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/clearance", request, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.SetClearanceHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOffboardingHandler_SettlementHandlers(t *testing.T) {
	t.Run("UpdateSettlement_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("UpdateSettlement", mock.Anything, "acme", actor, id,
			mock.MatchedBy(func(in usecase.SettlementInput) bool {
				return in.Status != nil && *in.Status == domain.CalculationCalculated
			})).Return(testResult(id), nil).Once()

		body := `{"leave_days":"10","daily_rate":"150.50","status":"calculated"}`
		c, w := createTestContext(http.MethodPut, "/v1/offboarding/"+id.String()+"/settlement", body, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.UpdateSettlementHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UpdateSettlement_NegativeAmount", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()

		body := `{"gratuity":"-1"}`
		c, w := createTestContext(http.MethodPut, "/v1/offboarding/"+id.String()+"/settlement", body, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.UpdateSettlementHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("DecideSettlement_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		input := usecase.SettlementDecisionInput{
			Level:    domain.SettlementLevelFinance,
			Decision: domain.DecisionApproved,
		}
		mockUseCase.On("DecideSettlement", mock.Anything, "acme", actor, id, input).
			Return(testResult(id), nil).
			Once()

		request := dto.SettlementDecisionRequest{Level: "finance", Decision: "approved"}
		path := "/v1/offboarding/" + id.String() + "/settlement/approvals"
		c, w := createTestContext(http.MethodPost, path, request, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.DecideSettlementHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOffboardingHandler_CloseOrCancelHandler(t *testing.T) {
	t.Run("Success_Cancel", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		result := testResult(id)
		result.Request.Status = domain.StatusCancelled
		result.Warnings = []string{"notification failed"}

		input := usecase.CloseOrCancelInput{Action: usecase.ActionCancel, Reason: "withdrawn"}
		mockUseCase.On("CloseOrCancel", mock.Anything, "acme", actor, id, input).Return(result, nil).Once()

		request := dto.CloseOrCancelRequest{Action: "cancel", Reason: "withdrawn"}
		c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/close-or-cancel", request, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.CloseOrCancelHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decodeResponse(t, w.Body.Bytes())
		assert.Equal(t, "cancelled", response.Request.Status)
		assert.Equal(t, []string{"notification failed"}, response.Warnings)
	})

	t.Run("Error_UnknownAction", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()

		request := dto.CloseOrCancelRequest{Action: "archive"}
		path := "/v1/offboarding/" + id.String() + "/close-or-cancel"
		c, w := createTestContext(http.MethodPost, path, request, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.CloseOrCancelHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOffboardingHandler_CompleteHandler(t *testing.T) {
	handler, mockUseCase := setupTestHandler(t)
	actor := testActor()
	id := uuid.New()

	mockUseCase.On("Complete", mock.Anything, "acme", actor, id).
		Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, "request is not at the exit interview")).
		Once()

	c, w := createTestContext(http.MethodPost, "/v1/offboarding/"+id.String()+"/complete", nil, actor)
	c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
	handler.CompleteHandler(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decodeError(t, w.Body.Bytes()).Error)
}

func TestOffboardingHandler_TaskHandlers(t *testing.T) {
	t.Run("ListTasks_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		tasks := []*domain.OffboardingTask{
			{ID: uuid.New(), RequestID: id, Department: domain.DepartmentIT, Title: "Revoke access"},
		}
		mockUseCase.On("ListTasks", mock.Anything, "acme", actor, id).Return(tasks, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/offboarding/"+id.String()+"/tasks", nil, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.ListTasksHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListTasksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "Revoke access", response.Data[0].Title)
	})

	t.Run("UpdateTask_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()
		taskID := uuid.New()

		input := usecase.TaskInput{Action: usecase.TaskActionComplete}
		mockUseCase.On("UpdateTask", mock.Anything, "acme", actor, id, taskID, input).
			Return(testResult(id), nil).
			Once()

		path := "/v1/offboarding/" + id.String() + "/tasks/" + taskID.String()
		c, w := createTestContext(http.MethodPatch, path, dto.TaskUpdateRequest{Action: "complete"}, actor)
		c.Params = gin.Params{
			gin.Param{Key: "id", Value: id.String()},
			gin.Param{Key: "taskId", Value: taskID.String()},
		}
		handler.UpdateTaskHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UpdateTask_InvalidTaskID", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()

		path := "/v1/offboarding/" + id.String() + "/tasks/nope"
		c, w := createTestContext(http.MethodPatch, path, dto.TaskUpdateRequest{}, testActor())
		c.Params = gin.Params{
			gin.Param{Key: "id", Value: id.String()},
			gin.Param{Key: "taskId", Value: "nope"},
		}
		handler.UpdateTaskHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w.Body.Bytes()).Message, "invalid taskId format")
	})

	t.Run("UpdateTask_NotFound", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()
		taskID := uuid.New()

		mockUseCase.On("UpdateTask", mock.Anything, "acme", actor, id, taskID, mock.Anything).
			Return(nil, domain.ErrTaskNotFound).
			Once()

		path := "/v1/offboarding/" + id.String() + "/tasks/" + taskID.String()
		c, w := createTestContext(http.MethodPatch, path, dto.TaskUpdateRequest{Action: "verify"}, actor)
		c.Params = gin.Params{
			gin.Param{Key: "id", Value: id.String()},
			gin.Param{Key: "taskId", Value: taskID.String()},
		}
		handler.UpdateTaskHandler(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOffboardingHandler_SatelliteHandlers(t *testing.T) {
	t.Run("UpdateAssetItem_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("UpdateAssetItem", mock.Anything, "acme", actor, id,
			mock.MatchedBy(func(in usecase.AssetItemInput) bool {
				return in.List == domain.AssetListPhysical && in.ItemID == nil && in.Name == "Laptop"
			})).Return(testResult(id), nil).Once()

		request := dto.AssetItemRequest{List: "physical_assets", Name: "Laptop", Status: "returned"}
		c, w := createTestContext(http.MethodPut, "/v1/offboarding/"+id.String()+"/assets/items", request, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.UpdateAssetItemHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("UpdateAssetItem_MissingName", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()

		request := dto.AssetItemRequest{List: "physical_assets"}
		path := "/v1/offboarding/" + id.String() + "/assets/items"
		c, w := createTestContext(http.MethodPut, path, request, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.UpdateAssetItemHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UpdateHandoverItem_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()

		mockUseCase.On("UpdateHandoverItem", mock.Anything, "acme", actor, id, mock.Anything).
			Return(testResult(id), nil).
			Once()

		request := dto.HandoverItemRequest{List: "projects", Name: "Billing revamp", Status: "in_progress"}
		path := "/v1/offboarding/" + id.String() + "/handover/items"
		c, w := createTestContext(http.MethodPut, path, request, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.UpdateHandoverItemHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("SubmitFeedback_Success", func(t *testing.T) {
		handler, mockUseCase := setupTestHandler(t)
		actor := testActor()
		id := uuid.New()
		score := 8

		mockUseCase.On("SubmitFeedback", mock.Anything, "acme", actor, id,
			mock.MatchedBy(func(in usecase.FeedbackInput) bool {
				return in.SatisfactionScore != nil && *in.SatisfactionScore == 8 && in.PrimaryReason == "growth"
			})).Return(testResult(id), nil).Once()

		request := dto.FeedbackRequest{PrimaryReason: "growth", SatisfactionScore: &score}
		c, w := createTestContext(http.MethodPut, "/v1/offboarding/"+id.String()+"/feedback", request, actor)
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.SubmitFeedbackHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("SubmitFeedback_ScoreOutOfRange", func(t *testing.T) {
		handler, _ := setupTestHandler(t)
		id := uuid.New()
		score := 11

		request := dto.FeedbackRequest{PrimaryReason: "growth", SatisfactionScore: &score}
		path := "/v1/offboarding/" + id.String() + "/feedback"
		c, w := createTestContext(http.MethodPut, path, request, testActor())
		c.Params = gin.Params{gin.Param{Key: "id", Value: id.String()}}
		handler.SubmitFeedbackHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOffboardingHandler_RegisterRoutes(t *testing.T) {
	handler, _ := setupTestHandler(t)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/v1/offboarding"))

	routes := make(map[string]bool)
	for _, r := range router.Routes() {
		routes[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /v1/offboarding",
		"GET /v1/offboarding",
		"GET /v1/offboarding/:id",
		"GET /v1/offboarding/:id/legacy",
		"POST /v1/offboarding/:id/advance",
		"POST /v1/offboarding/:id/clearance",
		"PUT /v1/offboarding/:id/settlement",
		"POST /v1/offboarding/:id/settlement/approvals",
		"POST /v1/offboarding/:id/close-or-cancel",
		"POST /v1/offboarding/:id/complete",
		"GET /v1/offboarding/:id/tasks",
		"PATCH /v1/offboarding/:id/tasks/:taskId",
		"PUT /v1/offboarding/:id/assets/items",
		"PUT /v1/offboarding/:id/handover/items",
		"PUT /v1/offboarding/:id/feedback",
	} {
		assert.True(t, routes[want], "missing route %s", want)
	}
}
