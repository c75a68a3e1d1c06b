package auth

import "context"

const (
	RoleAdmin      = "admin"
	RolePrincipal  = "principal"
	RoleAccountant = "accountant"
	RoleStaff      = "staff"
)

const (
	PermAttendanceRead    = "attendance.read"
	PermAttendanceWrite   = "attendance.write"
	PermAttendanceApprove = "attendance.approve"
	PermPayrollRead       = "payroll.read"
	PermPayrollWrite      = "payroll.write"
	PermPayrollExport     = "payroll.export"
	PermAuditRead         = "audit.read"
)

var DefaultPermissions = []string{
	PermAttendanceRead,
	PermAttendanceWrite,
	PermAttendanceApprove,
	PermPayrollRead,
	PermPayrollWrite,
	PermPayrollExport,
	PermAuditRead,
}

var RolePermissions = map[string][]string{
	RoleAdmin: DefaultPermissions,
	RolePrincipal: {
		PermAttendanceRead,
		PermAttendanceWrite,
		PermAttendanceApprove,
		PermPayrollRead,
		PermAuditRead,
	},
	RoleAccountant: {
		PermAttendanceRead,
		PermPayrollRead,
		PermPayrollWrite,
		PermPayrollExport,
	},
	RoleStaff: {
		PermAttendanceRead,
	},
}

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID   string
	SchoolID string
	RoleName string
}

func HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}

// StaticPermissions answers permission checks from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(_ context.Context, role, permission string) (bool, error) {
	return HasPermission(role, permission), nil
}
