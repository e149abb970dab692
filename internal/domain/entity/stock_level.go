package entity

import "time"

// StockLevel representa la cantidad actual de un producto para una empresa.
// Es una proyección materializada del ledger de movimientos, nunca una fuente
// de verdad independiente: quantity == suma firmada de los deltas confirmados.
// La fila se crea con el primer movimiento y solo el motor la escribe.
type StockLevel struct {
	TenantID  string
	ProductID string
	Quantity  int64 // invariante: >= 0 en todo estado confirmado
	UpdatedAt time.Time
}

// StockItem es la fila del listado de stock: nivel actual junto con los datos
// del producto que la vista necesita.
type StockItem struct {
	ProductID       string
	ProductName     string
	RFIDTag         string
	Quantity        int64
	MinimumQuantity int64
	BelowMinimum    bool
	UpdatedAt       time.Time
}
