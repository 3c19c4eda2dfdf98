package shared

// Catalogue and people permissions.
const (
	PermCategoriesView   = "MODULO_CATEGORIAS_PRODUCTOS_VER"
	PermCategoriesManage = "MODULO_CATEGORIAS_PRODUCTOS_GESTIONAR"
	PermProductsView     = "MODULO_PRODUCTOS_VER"
	PermProductsManage   = "MODULO_PRODUCTOS_GESTIONAR"
	PermServicesView     = "MODULO_SERVICIOS_VER"
	PermServicesManage   = "MODULO_SERVICIOS_GESTIONAR"
	PermSuppliersView    = "MODULO_PROVEEDORES_VER"
	PermSuppliersManage  = "MODULO_PROVEEDORES_GESTIONAR"
	PermClientsView      = "MODULO_CLIENTES_VER"
	PermClientsManage    = "MODULO_CLIENTES_GESTIONAR"
	PermEmployeesView    = "MODULO_EMPLEADOS_VER"
	PermEmployeesManage  = "MODULO_EMPLEADOS_GESTIONAR"
	PermNoveltiesView    = "MODULO_NOVEDADES_EMPLEADOS_VER"
	PermNoveltiesManage  = "MODULO_NOVEDADES_EMPLEADOS_GESTIONAR"
)

// CatalogScopes lists permissions over catalogue and people records.
func CatalogScopes() []string {
	return []string{
		PermCategoriesView,
		PermCategoriesManage,
		PermProductsView,
		PermProductsManage,
		PermServicesView,
		PermServicesManage,
		PermSuppliersView,
		PermSuppliersManage,
		PermClientsView,
		PermClientsManage,
		PermEmployeesView,
		PermEmployeesManage,
		PermNoveltiesView,
		PermNoveltiesManage,
	}
}
