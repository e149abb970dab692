package entity

import "time"

// Product es la vista de solo lectura que el motor de movimientos necesita del
// catálogo de productos. El catálogo (CRUD, categorías, proveedores) es un
// colaborador externo; este motor nunca muta productos.
type Product struct {
	ID              string
	TenantID        string
	Name            string
	RFIDTag         string // vacío si el producto no tiene etiqueta; único por empresa
	MinimumQuantity int64
	UnitMeasure     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
