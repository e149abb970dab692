package postgres

import (
	"context"
	"fmt"

	"github.com/nowstock/nowstock-api/internal/domain/entity"
	"github.com/nowstock/nowstock-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: el append-only del ledger no es convención, es la
// superficie completa del repositorio.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento y devuelve el id asignado por la secuencia.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) (int64, error) {
	query := `
		INSERT INTO movements (tenant_id, product_id, actor_id, kind, quantity, delta, unit, justification, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	justification := (*string)(nil)
	if m.Justification != "" {
		justification = &m.Justification
	}
	var id int64
	err := r.q.QueryRow(ctx, query,
		m.TenantID, m.ProductID, m.ActorID, m.Kind, m.Quantity, m.Delta,
		m.Unit, justification, m.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append movement: %w", err)
	}
	m.ID = id
	return id, nil
}

// ListHistory devuelve los movimientos de la empresa con nombres de producto y
// usuario resueltos y la cantidad actual del producto, más reciente primero.
func (r *MovementRepo) ListHistory(ctx context.Context, tenantID string, f entity.HistoryFilter) ([]*entity.HistoryEntry, error) {
	query := `
		SELECT
			m.id, m.tenant_id, m.product_id, m.actor_id, m.kind,
			m.quantity, m.delta, m.unit, COALESCE(m.justification, ''), m.created_at,
			p.name AS product_name,
			u.name AS actor_name,
			COALESCE(s.quantity, 0) AS current_quantity
		FROM movements m
		JOIN products p ON p.id = m.product_id
		JOIN users u ON u.id = m.actor_id
		LEFT JOIN stock_levels s ON s.tenant_id = m.tenant_id AND s.product_id = m.product_id
		WHERE m.tenant_id = $1`
	args := []any{tenantID}
	pos := 2
	if f.Kind != "" {
		query += fmt.Sprintf(" AND m.kind = $%d", pos)
		args = append(args, f.Kind)
		pos++
	}
	if f.ProductID != "" {
		query += fmt.Sprintf(" AND m.product_id = $%d", pos)
		args = append(args, f.ProductID)
		pos++
	}
	if f.ActorID != "" {
		query += fmt.Sprintf(" AND m.actor_id = $%d", pos)
		args = append(args, f.ActorID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.created_at DESC, m.id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movement history: %w", err)
	}
	defer rows.Close()
	var list []*entity.HistoryEntry
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(
			&e.ID, &e.TenantID, &e.ProductID, &e.ActorID, &e.Kind,
			&e.Quantity, &e.Delta, &e.Unit, &e.Justification, &e.CreatedAt,
			&e.ProductName, &e.ActorName, &e.CurrentQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
