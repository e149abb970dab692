package repository

import (
	"context"

	"github.com/nowstock/nowstock-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura del catálogo de productos (DIP).
// El motor solo lee: identidad, etiqueta y umbral mínimo. El CRUD vive en el
// servicio de catálogo.
type ProductRepository interface {
	// ResolveTag mapea (empresa, etiqueta RFID) a un producto. Devuelve nil sin
	// error si la etiqueta no está registrada: es un resultado esperado, los
	// callers deben ramificar explícitamente sobre él.
	ResolveTag(ctx context.Context, tenantID, rfidTag string) (*entity.Product, error)
	// GetByID obtiene un producto por id, acotado a la empresa. Un producto de
	// otra empresa es indistinguible de uno inexistente (nil).
	GetByID(ctx context.Context, tenantID, productID string) (*entity.Product, error)
}
