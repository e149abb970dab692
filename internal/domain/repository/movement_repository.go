package repository

import (
	"context"

	"github.com/nowstock/nowstock-api/internal/domain/entity"
)

// MovementRepository define el puerto del ledger de movimientos (DIP).
// Solo inserta y lista: el ledger es append-only por contrato, no expone
// update ni delete.
type MovementRepository interface {
	// Append inserta el movimiento y devuelve el id autoincremental asignado.
	// Debe ejecutarse en la misma transacción que el delta de la proyección.
	Append(ctx context.Context, movement *entity.Movement) (int64, error)
	// ListHistory devuelve el histórico de la empresa, filtrado y más reciente primero.
	ListHistory(ctx context.Context, tenantID string, filter entity.HistoryFilter) ([]*entity.HistoryEntry, error)
}
