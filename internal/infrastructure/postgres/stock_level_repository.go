package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nowstock/nowstock-api/internal/domain"
	"github.com/nowstock/nowstock-api/internal/domain/entity"
	"github.com/nowstock/nowstock-api/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL
// (usable con pool o tx). Las escrituras deben llegar vía tx del TxRunner.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene el nivel actual. Fila ausente = cantidad 0.
func (r *StockLevelRepo) Get(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	query := `
		SELECT tenant_id, product_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND product_id = $2`
	return r.scanLevel(ctx, query, tenantID, productID)
}

// GetForUpdate obtiene el nivel y bloquea la fila (SELECT FOR UPDATE).
// Serializa los movimientos concurrentes del mismo producto sin bloquear
// productos distintos. Fila ausente = cantidad 0 (nada que bloquear; la
// primera escritura la arbitra el ON CONFLICT de ApplyDelta).
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, tenantID, productID string) (*entity.StockLevel, error) {
	query := `
		SELECT tenant_id, product_id, quantity, updated_at
		FROM stock_levels WHERE tenant_id = $1 AND product_id = $2
		FOR UPDATE`
	return r.scanLevel(ctx, query, tenantID, productID)
}

func (r *StockLevelRepo) scanLevel(ctx context.Context, query, tenantID, productID string) (*entity.StockLevel, error) {
	var l entity.StockLevel
	err := r.q.QueryRow(ctx, query, tenantID, productID).Scan(
		&l.TenantID, &l.ProductID, &l.Quantity, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.StockLevel{TenantID: tenantID, ProductID: productID, Quantity: 0}, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return &l, nil
}

// ApplyDelta aplica un incremento relativo con upsert y devuelve la cantidad
// resultante. El incremento es relativo (quantity + delta), no una escritura
// absoluta: dos primeros movimientos concurrentes del mismo producto quedan
// ambos aplicados. El CHECK (quantity >= 0) de la tabla respalda el guard que
// el motor ya validó sobre la fila bloqueada.
func (r *StockLevelRepo) ApplyDelta(ctx context.Context, tenantID, productID string, delta int64) (int64, error) {
	query := `
		INSERT INTO stock_levels (tenant_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (tenant_id, product_id)
		DO UPDATE SET quantity = stock_levels.quantity + $3, updated_at = now()
		RETURNING quantity`
	var newQty int64
	err := r.q.QueryRow(ctx, query, tenantID, productID, delta).Scan(&newQty)
	if err != nil {
		if isCheckViolation(err) {
			return 0, domain.ErrInsufficientStock
		}
		return 0, fmt.Errorf("apply stock delta: %w", err)
	}
	return newQty, nil
}

// ListByTenant lista el stock de la empresa con nombre, etiqueta y umbral mínimo
// del producto. Incluye productos sin movimientos (cantidad 0).
func (r *StockLevelRepo) ListByTenant(ctx context.Context, tenantID string) ([]*entity.StockItem, error) {
	query := `
		SELECT
			p.id,
			p.name,
			COALESCE(p.rfid_tag, ''),
			COALESCE(s.quantity, 0)              AS quantity,
			p.minimum_quantity,
			COALESCE(s.quantity, 0) < p.minimum_quantity AS below_minimum,
			COALESCE(s.updated_at, p.created_at) AS updated_at
		FROM products p
		LEFT JOIN stock_levels s ON s.tenant_id = p.tenant_id AND s.product_id = p.id
		WHERE p.tenant_id = $1
		ORDER BY p.name`
	rows, err := r.q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockItem
	for rows.Next() {
		var it entity.StockItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.RFIDTag,
			&it.Quantity, &it.MinimumQuantity, &it.BelowMinimum, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
