package domain

// Permission is a named capability checked by the workflow guard.
type Permission string

const (
	PermOffboardingView            Permission = "OFFBOARDING_VIEW"
	PermOffboardingInitiate        Permission = "OFFBOARDING_INITIATE"
	PermOffboardingManage          Permission = "OFFBOARDING_MANAGE"
	PermOffboardingApproveHR       Permission = "OFFBOARDING_APPROVE_HR"
	PermOffboardingApproveFinance  Permission = "OFFBOARDING_APPROVE_FINANCE"
	PermOffboardingClearanceHR     Permission = "OFFBOARDING_CLEARANCE_HR"
	PermOffboardingClearanceIT     Permission = "OFFBOARDING_CLEARANCE_IT"
	PermOffboardingClearanceFin    Permission = "OFFBOARDING_CLEARANCE_FINANCE"
	PermOffboardingClearanceAdmin  Permission = "OFFBOARDING_CLEARANCE_ADMIN"
	PermOffboardingClearanceSec    Permission = "OFFBOARDING_CLEARANCE_SECURITY"
	PermOffboardingSettlement      Permission = "OFFBOARDING_SETTLEMENT"
	PermOffboardingSettlementApprv Permission = "OFFBOARDING_SETTLEMENT_APPROVE"
	PermOffboardingClose           Permission = "OFFBOARDING_CLOSE"
	PermOffboardingCancel          Permission = "OFFBOARDING_CANCEL"
)

// RolePermissions maps roles to their default permissions.
var RolePermissions = map[Role][]Permission{
	RoleEmployee: {
		PermOffboardingView,
		PermOffboardingInitiate,
	},
	RoleManager: {
		PermOffboardingView,
		PermOffboardingInitiate,
	},
	RoleHRExecutive: {
		PermOffboardingView,
		PermOffboardingInitiate,
		PermOffboardingManage,
		PermOffboardingClearanceHR,
	},
	RoleHRManager: {
		PermOffboardingView,
		PermOffboardingInitiate,
		PermOffboardingManage,
		PermOffboardingApproveHR,
		PermOffboardingClearanceHR,
		PermOffboardingClose,
		PermOffboardingCancel,
	},
	RoleFinanceManager: {
		PermOffboardingView,
		PermOffboardingApproveFinance,
		PermOffboardingClearanceFin,
		PermOffboardingSettlement,
		PermOffboardingSettlementApprv,
	},
	RoleITAdmin: {
		PermOffboardingView,
		PermOffboardingClearanceIT,
	},
	RoleAdminOfficer: {
		PermOffboardingView,
		PermOffboardingClearanceAdmin,
	},
	RoleSecurityOfficer: {
		PermOffboardingView,
		PermOffboardingClearanceSec,
	},
	RoleTenantAdmin: {
		PermOffboardingView,
		PermOffboardingInitiate,
		PermOffboardingManage,
		PermOffboardingApproveHR,
		PermOffboardingApproveFinance,
		PermOffboardingSettlement,
		PermOffboardingSettlementApprv,
		PermOffboardingClose,
		PermOffboardingCancel,
	},
}

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	switch p {
	case PermOffboardingView, PermOffboardingInitiate, PermOffboardingManage,
		PermOffboardingApproveHR, PermOffboardingApproveFinance,
		PermOffboardingClearanceHR, PermOffboardingClearanceIT, PermOffboardingClearanceFin,
		PermOffboardingClearanceAdmin, PermOffboardingClearanceSec,
		PermOffboardingSettlement, PermOffboardingSettlementApprv,
		PermOffboardingClose, PermOffboardingCancel:
		return true
	}
	return false
}
