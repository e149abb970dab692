package movement

import (
	"context"

	"github.com/nowstock/nowstock-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del motor: insertar el
// movimiento y aplicar el delta de proyección se confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		levelRepo repository.StockLevelRepository,
		productRepo repository.ProductRepository,
	) error) error
}
