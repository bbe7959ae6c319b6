package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleHR       = "hr"
)

const (
	PermEmployeesRead  = "core.employees.read"
	PermEmployeesWrite = "core.employees.write"
	PermLeaveRead      = "leave.read"
	PermLeaveWrite     = "leave.write"
	PermLeaveApprove   = "leave.approve"
	PermLeaveConfigure = "leave.configure"
	PermReportsRead    = "reports.read"
)

var DefaultPermissions = []string{
	PermEmployeesRead,
	PermEmployeesWrite,
	PermLeaveRead,
	PermLeaveWrite,
	PermLeaveApprove,
	PermLeaveConfigure,
	PermReportsRead,
}

// RolePermissions is the seed mapping; runtime checks go through the
// role_permissions table so tenants can be adjusted without a redeploy.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
	},
	RoleManager: {
		PermEmployeesRead,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermReportsRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermLeaveRead,
		PermLeaveWrite,
		PermLeaveApprove,
		PermLeaveConfigure,
		PermReportsRead,
	},
}
