package shared

// Appointment, sales and purchase permissions.
const (
	// Appointment permissions
	PermAppointmentsView    = "MODULO_CITAS_VER"
	PermAppointmentsViewAll = "MODULO_CITAS_VER_TODAS"
	PermAppointmentsManage  = "MODULO_CITAS_GESTIONAR"

	// Sales permissions
	PermSalesView   = "MODULO_VENTAS_VER"
	PermSalesCreate = "MODULO_VENTAS_CREAR"
	PermSalesVoid   = "MODULO_VENTAS_ANULAR"

	// Purchase permissions
	PermPurchasesView   = "MODULO_COMPRAS_VER"
	PermPurchasesCreate = "MODULO_COMPRAS_CREAR"
	PermPurchasesVoid   = "MODULO_COMPRAS_ANULAR"
)

// AgendaScopes lists all appointment permissions.
func AgendaScopes() []string {
	return []string{
		PermAppointmentsView,
		PermAppointmentsViewAll,
		PermAppointmentsManage,
	}
}

// CommerceScopes lists all sales and purchase permissions.
func CommerceScopes() []string {
	return []string{
		PermSalesView,
		PermSalesCreate,
		PermSalesVoid,
		PermPurchasesView,
		PermPurchasesCreate,
		PermPurchasesVoid,
	}
}

// AllScopes aggregates every permission declared by the application.
func AllScopes() []string {
	var all []string
	all = append(all, CoreScopes()...)
	all = append(all, CatalogScopes()...)
	all = append(all, AgendaScopes()...)
	all = append(all, CommerceScopes()...)
	return all
}
