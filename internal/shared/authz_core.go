package shared

// Core access-control permissions.
const (
	PermRolesView       = "MODULO_ROLES_VER"
	PermRolesManage     = "MODULO_ROLES_GESTIONAR"
	PermUsersView       = "MODULO_USUARIOS_VER"
	PermUsersManage     = "MODULO_USUARIOS_GESTIONAR"
	PermPermissionsView = "MODULO_PERMISOS_VER"
	PermAuditView       = "MODULO_AUDITORIA_VER"
	PermDashboardView   = "MODULO_DASHBOARD_VER"
)

// CoreScopes lists all permissions related to access control and platform views.
func CoreScopes() []string {
	return []string{
		PermRolesView,
		PermRolesManage,
		PermUsersView,
		PermUsersManage,
		PermPermissionsView,
		PermAuditView,
		PermDashboardView,
	}
}
