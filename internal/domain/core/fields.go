package core

import "hotelperf/internal/domain/auth"

// FilterEmployeeFields strips contact details the caller may not see. Admins see
// everything, supervisors see their own department and employees see themselves.
func FilterEmployeeFields(emp *Employee, user auth.UserContext, isSelf bool) {
	if user.RoleName == auth.RoleAdmin || isSelf {
		return
	}
	if user.RoleName == auth.RoleSupervisor && user.DepartmentID != "" && user.DepartmentID == emp.DepartmentID {
		return
	}
	emp.Email = ""
	emp.Phone = ""
}
