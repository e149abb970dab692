package entity

import "time"

// Tipos de movimiento. Los valores son los del dominio de la aplicación
// (portugués, como los maneja el picking en bodega) y se persisten tal cual.
const (
	KindEntrada   = "entrada"   // ingreso de mercancía
	KindSaida     = "saida"     // retiro de bodega
	KindDevolucao = "devolucao" // retorno de un cliente o de producción
	KindAjuste    = "ajuste"    // corrección manual, con justificación
)

// ValidKind indica si kind es uno de los tipos aceptados.
func ValidKind(kind string) bool {
	switch kind {
	case KindEntrada, KindSaida, KindDevolucao, KindAjuste:
		return true
	}
	return false
}

// JustificationRequired indica si el tipo exige justificación (mínimo 5 caracteres).
func JustificationRequired(kind string) bool {
	return kind == KindDevolucao || kind == KindAjuste
}

// Movement es una entrada inmutable del ledger: un cambio atómico y auditable
// de la cantidad de un producto. Quantity es siempre positiva; Delta lleva el
// signo (+ entrada/devolucao/ajuste que aumenta, - saida/ajuste que disminuye)
// y es lo que la proyección acumula. Nunca se actualiza ni se borra: una
// corrección es un nuevo movimiento compensatorio.
type Movement struct {
	ID            int64
	TenantID      string
	ProductID     string
	ActorID       string
	Kind          string
	Quantity      int64 // siempre > 0
	Delta         int64 // +Quantity o -Quantity según dirección
	Unit          string
	Justification string
	CreatedAt     time.Time
}

// HistoryEntry es una fila del histórico: movimiento más los nombres ya
// resueltos y la cantidad actual del producto, como la consume la vista.
type HistoryEntry struct {
	Movement
	ProductName     string
	ActorName       string
	CurrentQuantity int64
}

// HistoryFilter filtros opcionales para consultar el histórico.
type HistoryFilter struct {
	Kind      string
	ProductID string
	ActorID   string
	Limit     int
	Offset    int
}
