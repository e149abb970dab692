package repository

import (
	"context"

	"github.com/nowstock/nowstock-api/internal/domain/entity"
)

// StockLevelRepository define el puerto de la proyección de stock por
// (empresa, producto). Las escrituras solo ocurren dentro de la transacción
// que también inserta el movimiento; el repositorio nunca hace commit por su cuenta.
type StockLevelRepository interface {
	// Get devuelve el nivel actual. Fila ausente = cantidad 0, nunca un error.
	Get(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) y devuelve el nivel.
	// Fila ausente = cantidad 0; en ese caso no hay fila que bloquear y la
	// serialización de la primera escritura la resuelve ApplyDelta.
	GetForUpdate(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error)
	// ApplyDelta aplica un incremento relativo (upsert) y devuelve la cantidad
	// resultante. Relativo, no absoluto: dos primeras escrituras concurrentes
	// no pueden perderse mutuamente.
	ApplyDelta(ctx context.Context, tenantID, productID string, delta int64) (int64, error)
	// ListByTenant lista el stock de la empresa con los datos de producto de la vista.
	ListByTenant(ctx context.Context, tenantID string) ([]*entity.StockItem, error)
}
