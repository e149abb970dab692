package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nowstock/nowstock-api/internal/domain/entity"
	"github.com/nowstock/nowstock-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo lectura del catálogo de productos sobre PostgreSQL (usable con pool o tx).
// Solo lectura: el catálogo lo escribe el servicio de productos.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, tenant_id, name, COALESCE(rfid_tag, ''), minimum_quantity, unit_measure, created_at, updated_at`

// ResolveTag mapea (empresa, etiqueta RFID) a un producto. nil = etiqueta no registrada.
func (r *ProductRepo) ResolveTag(ctx context.Context, tenantID, rfidTag string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE tenant_id = $1 AND rfid_tag = $2`
	return r.scanOne(ctx, query, tenantID, rfidTag)
}

// GetByID obtiene un producto por id, acotado a la empresa. nil si no existe
// o pertenece a otra empresa.
func (r *ProductRepo) GetByID(ctx context.Context, tenantID, productID string) (*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products WHERE tenant_id = $1 AND id = $2`
	return r.scanOne(ctx, query, tenantID, productID)
}

func (r *ProductRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.RFIDTag, &p.MinimumQuantity, &p.UnitMeasure,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}
