package movement

import (
	"context"
	"fmt"

	"github.com/nowstock/nowstock-api/internal/domain"
	"github.com/nowstock/nowstock-api/internal/domain/entity"
)

// GetHistory devuelve el histórico de movimientos de la empresa, filtrado por
// tipo, producto o actor, más reciente primero. Lectura pura contra el ledger.
func (e *Engine) GetHistory(ctx context.Context, tenantID string, f entity.HistoryFilter) ([]*entity.HistoryEntry, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant es obligatorio", domain.ErrValidation)
	}
	if f.Kind != "" && !entity.ValidKind(f.Kind) {
		return nil, fmt.Errorf("%w: tipo de movimento inválido %q", domain.ErrValidation, f.Kind)
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	list, err := e.movements.ListHistory(ctx, tenantID, f)
	if err != nil {
		return nil, &domain.StorageError{Op: "list history", Err: err}
	}
	return list, nil
}

// ListStock devuelve el stock actual de la empresa por producto, con el umbral
// mínimo ya comparado. Lectura pura contra la proyección.
func (e *Engine) ListStock(ctx context.Context, tenantID string) ([]*entity.StockItem, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenant es obligatorio", domain.ErrValidation)
	}
	list, err := e.levels.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, &domain.StorageError{Op: "list stock", Err: err}
	}
	return list, nil
}

// GetCurrent devuelve la cantidad actual de un producto. Producto sin fila de
// stock = 0, nunca un error; el producto debe existir y ser de la empresa.
func (e *Engine) GetCurrent(ctx context.Context, tenantID, productID string) (int64, error) {
	if tenantID == "" || productID == "" {
		return 0, fmt.Errorf("%w: tenant y producto son obligatorios", domain.ErrValidation)
	}
	product, err := e.products.GetByID(ctx, tenantID, productID)
	if err != nil {
		return 0, &domain.StorageError{Op: "get product", Err: err}
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	level, err := e.levels.Get(ctx, tenantID, productID)
	if err != nil {
		return 0, &domain.StorageError{Op: "get stock level", Err: err}
	}
	return level.Quantity, nil
}
