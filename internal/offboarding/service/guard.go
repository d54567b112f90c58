package service

import (
	authDomain "github.com/allisson/exitflow/internal/auth/domain"
	"github.com/allisson/exitflow/internal/offboarding/domain"
)

// Action is an operation gated by the guard.
type Action string

const (
	ActionView              Action = "view"
	ActionInitiate          Action = "initiate"
	ActionAdvance           Action = "advance"
	ActionClearDepartment   Action = "clear_department"
	ActionUpdateTask        Action = "update_task"
	ActionUpdateAssets      Action = "update_assets"
	ActionUpdateHandover    Action = "update_handover"
	ActionUpdateSettlement  Action = "update_settlement"
	ActionApproveSettlement Action = "approve_settlement"
	ActionSubmitFeedback    Action = "submit_feedback"
	ActionClose             Action = "close"
	ActionCancel            Action = "cancel"
	ActionComplete          Action = "complete"
)

// DepartmentPermissions maps each clearing department to the only permission that may clear it.
var DepartmentPermissions = map[domain.Department]authDomain.Permission{
	domain.DepartmentHR:       authDomain.PermOffboardingClearanceHR,
	domain.DepartmentIT:       authDomain.PermOffboardingClearanceIT,
	domain.DepartmentFinance:  authDomain.PermOffboardingClearanceFin,
	domain.DepartmentAdmin:    authDomain.PermOffboardingClearanceAdmin,
	domain.DepartmentSecurity: authDomain.PermOffboardingClearanceSec,
}

// RBACGuard implements Guard on top of the role permission table.
type RBACGuard struct{}

// NewRBACGuard creates a new RBACGuard.
func NewRBACGuard() *RBACGuard {
	return &RBACGuard{}
}

// CanPerformAction implements Guard.
func (g *RBACGuard) CanPerformAction(
	actor *authDomain.Actor,
	action Action,
	req *domain.OffboardingRequest,
	dept domain.Department,
) error {
	if actor == nil {
		return authDomain.ErrMissingActor
	}

	deny := func(perm authDomain.Permission, reason string) error {
		err := &authDomain.PermissionError{
			Role:       actor.Role,
			Action:     string(action),
			Permission: perm,
			Reason:     reason,
		}
		if req != nil {
			err.Stage = string(req.CurrentStage)
		}
		if dept != "" {
			err.Department = string(dept)
		}
		return err
	}

	switch action {
	case ActionView:
		if actor.Has(authDomain.PermOffboardingView) || g.isSubject(actor, req) || g.isManager(actor, req) {
			return nil
		}
		return deny(authDomain.PermOffboardingView, "")

	case ActionInitiate:
		if !actor.Has(authDomain.PermOffboardingInitiate) {
			return deny(authDomain.PermOffboardingInitiate, "")
		}
		if actor.Has(authDomain.PermOffboardingManage) || g.isSubject(actor, req) || g.isManager(actor, req) {
			return nil
		}
		return deny(authDomain.PermOffboardingManage, "may only initiate for self or direct reports")

	case ActionAdvance:
		return g.canAdvance(actor, req, deny)

	case ActionClearDepartment:
		perm, ok := DepartmentPermissions[dept]
		if !ok {
			return deny("", "unknown department")
		}
		if !actor.Has(perm) {
			return deny(perm, "")
		}
		return nil

	case ActionUpdateTask, ActionUpdateAssets:
		if perm, ok := DepartmentPermissions[dept]; ok && actor.Has(perm) {
			return nil
		}
		if actor.Has(authDomain.PermOffboardingManage) {
			return nil
		}
		return deny(DepartmentPermissions[dept], "")

	case ActionUpdateHandover:
		if actor.Has(authDomain.PermOffboardingManage) || g.isSubject(actor, req) || g.isManager(actor, req) {
			return nil
		}
		return deny(authDomain.PermOffboardingManage, "only the employee, their manager or HR may update the handover")

	case ActionUpdateSettlement:
		if !actor.Has(authDomain.PermOffboardingSettlement) {
			return deny(authDomain.PermOffboardingSettlement, "")
		}
		return nil

	case ActionSubmitFeedback:
		if actor.Has(authDomain.PermOffboardingManage) || g.isSubject(actor, req) {
			return nil
		}
		return deny(authDomain.PermOffboardingManage, "only the employee or HR may submit exit feedback")

	case ActionClose, ActionComplete:
		if !actor.Has(authDomain.PermOffboardingClose) {
			return deny(authDomain.PermOffboardingClose, "")
		}
		return nil

	case ActionCancel:
		if actor.Has(authDomain.PermOffboardingCancel) {
			return nil
		}
		if req != nil && req.InitiatedBy == actor.UserID &&
			(req.CurrentStage == domain.StageInitiation || req.CurrentStage == domain.StageManagerApproval) {
			return nil
		}
		return deny(authDomain.PermOffboardingCancel, "initiators may only withdraw before manager approval")
	}

	return deny("", "unknown action")
}

// canAdvance applies the gate of the request's current stage.
func (g *RBACGuard) canAdvance(
	actor *authDomain.Actor,
	req *domain.OffboardingRequest,
	deny func(authDomain.Permission, string) error,
) error {
	if req == nil {
		return deny("", "request is required")
	}

	switch req.CurrentStage {
	case domain.StageInitiation:
		if req.InitiatedBy == actor.UserID || g.isSubject(actor, req) || actor.Has(authDomain.PermOffboardingManage) {
			return nil
		}
		return deny(authDomain.PermOffboardingManage, "only the initiator, the employee or HR may submit")

	case domain.StageManagerApproval:
		if g.isManager(actor, req) {
			return nil
		}
		return deny("", "only the employee's reporting manager may decide")

	case domain.StageHRApproval:
		if !actor.Has(authDomain.PermOffboardingApproveHR) {
			return deny(authDomain.PermOffboardingApproveHR, "")
		}
		return nil

	case domain.StageFinanceApproval:
		if !actor.Has(authDomain.PermOffboardingApproveFinance) {
			return deny(authDomain.PermOffboardingApproveFinance, "")
		}
		return nil

	case domain.StageExitInterview:
		if !actor.Has(authDomain.PermOffboardingClose) {
			return deny(authDomain.PermOffboardingClose, "")
		}
		return nil
	}

	if !actor.Has(authDomain.PermOffboardingManage) {
		return deny(authDomain.PermOffboardingManage, "")
	}
	return nil
}

// CanDecideSettlement implements Guard.
func (g *RBACGuard) CanDecideSettlement(actor *authDomain.Actor, req *domain.OffboardingRequest, level string) error {
	if actor == nil {
		return authDomain.ErrMissingActor
	}

	var perm authDomain.Permission
	switch level {
	case domain.SettlementLevelFinance:
		perm = authDomain.PermOffboardingSettlementApprv
	case domain.SettlementLevelHR:
		perm = authDomain.PermOffboardingApproveHR
	}

	if perm != "" && actor.Has(perm) {
		return nil
	}

	err := &authDomain.PermissionError{
		Role:       actor.Role,
		Action:     string(ActionApproveSettlement),
		Department: level,
		Permission: perm,
	}
	if req != nil {
		err.Stage = string(req.CurrentStage)
	}
	if perm == "" {
		err.Reason = "unknown approval level"
	}
	return err
}

func (g *RBACGuard) isSubject(actor *authDomain.Actor, req *domain.OffboardingRequest) bool {
	return req != nil && actor.IsEmployee(req.EmployeeID)
}

func (g *RBACGuard) isManager(actor *authDomain.Actor, req *domain.OffboardingRequest) bool {
	return req != nil && req.ReportingManagerID != nil && actor.IsEmployee(*req.ReportingManagerID)
}
