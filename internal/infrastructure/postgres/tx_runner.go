package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nowstock/nowstock-api/internal/application/movement"
	"github.com/nowstock/nowstock-api/internal/domain/repository"
)

// Ensure TxRunner implements movement.TxRunner.
var _ movement.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Es la frontera de atomicidad del motor: o el movimiento y su delta de
// proyección se confirman juntos, o ninguno queda visible.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// El Rollback diferido cubre todos los caminos de salida, incluida la
// cancelación del ctx cuando el caller abandona la request a mitad de camino.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	levelRepo repository.StockLevelRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	movRepo := NewMovementRepository(tx)
	levelRepo := NewStockLevelRepository(tx)
	productRepo := NewProductRepository(tx)

	if err := fn(movRepo, levelRepo, productRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
