package auth

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleEmployee   = "employee"
)

// RoleDisplayNames are the Arabic labels used by the hotel staff.
var RoleDisplayNames = map[string]string{
	RoleAdmin:      "مدير",
	RoleSupervisor: "مشرف",
	RoleEmployee:   "موظف",
}

const (
	PermOrgRead            = "org.read"
	PermOrgWrite           = "org.write"
	PermUsersManage        = "users.manage"
	PermCriteriaRead       = "criteria.read"
	PermCriteriaWrite      = "criteria.write"
	PermEvaluationsRead    = "evaluations.read"
	PermEvaluationsWrite   = "evaluations.write"
	PermEvaluationsSign    = "evaluations.sign"
	PermEvaluationsApprove = "evaluations.approve"
	PermKPIsRead           = "kpis.read"
	PermKPIsWrite          = "kpis.write"
	PermAuditRead          = "audit.read"
)

var DefaultPermissions = []string{
	PermOrgRead,
	PermOrgWrite,
	PermUsersManage,
	PermCriteriaRead,
	PermCriteriaWrite,
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermEvaluationsSign,
	PermEvaluationsApprove,
	PermKPIsRead,
	PermKPIsWrite,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermOrgRead,
		PermCriteriaRead,
		PermEvaluationsRead,
		PermEvaluationsSign,
		PermKPIsRead,
	},
	RoleSupervisor: {
		PermOrgRead,
		PermCriteriaRead,
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsSign,
		PermKPIsRead,
		PermKPIsWrite,
	},
	RoleAdmin: DefaultPermissions,
}
