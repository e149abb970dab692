package movement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nowstock/nowstock-api/internal/domain"
	"github.com/nowstock/nowstock-api/internal/domain/entity"
	"github.com/nowstock/nowstock-api/internal/domain/repository"
	"github.com/nowstock/nowstock-api/internal/metrics"
	"github.com/nowstock/nowstock-api/pkg/logger"
)

// DefaultUnit unidad registrada cuando el caller no indica una.
const DefaultUnit = "unidade"

// MinJustificationLen mínimo de caracteres de la justificación en devolucao y ajuste.
const MinJustificationLen = 5

// Engine es el motor de movimientos de stock: clasifica el evento entrante,
// valida contra el stock actual, inserta la entrada del ledger y aplica el
// delta de la proyección como una sola unidad transaccional. Es el único
// escritor de stock_levels y movements.
type Engine struct {
	tx        TxRunner
	products  repository.ProductRepository
	levels    repository.StockLevelRepository
	movements repository.MovementRepository
	log       *logger.Logger
	metrics   *metrics.MovementMetrics
}

// NewEngine construye el motor. metrics puede ser nil (no-op).
func NewEngine(
	tx TxRunner,
	products repository.ProductRepository,
	levels repository.StockLevelRepository,
	movements repository.MovementRepository,
	log *logger.Logger,
	m *metrics.MovementMetrics,
) *Engine {
	return &Engine{
		tx:        tx,
		products:  products,
		levels:    levels,
		movements: movements,
		log:       log,
		metrics:   m,
	}
}

// Outcome resultado de un movimiento aceptado.
type Outcome struct {
	MovementID  int64
	ProductID   string
	ProductName string
	Kind        string
	Quantity    int64
	NewQuantity int64
}

// ManualInput entrada para RecordManual. El producto llega por etiqueta RFID o
// por id directo de un caller confiable; la etiqueta tiene precedencia si
// vienen ambos. Decrease solo aplica a ajuste (una corrección que resta).
type ManualInput struct {
	TenantID      string
	ActorID       string
	Kind          string
	ProductID     string
	RFIDTag       string
	Quantity      int64
	Unit          string
	Justification string
	Decrease      bool
}

// RecordScan procesa una lectura RFID. Una lectura no trae dirección: si la
// cantidad actual es 0 el movimiento es entrada, si es > 0 es saida. El toggle
// se decide sobre el valor leído con la fila ya bloqueada dentro de la
// transacción, así dos lecturas concurrentes del mismo producto quedan
// totalmente ordenadas. Una etiqueta = una unidad física.
func (e *Engine) RecordScan(ctx context.Context, tenantID, rfidTag, actorID string) (*Outcome, error) {
	rfidTag = strings.TrimSpace(rfidTag)
	if tenantID == "" || rfidTag == "" || actorID == "" {
		return nil, fmt.Errorf("%w: tenant, etiqueta y actor son obligatorios", domain.ErrValidation)
	}

	product, err := e.products.ResolveTag(ctx, tenantID, rfidTag)
	if err != nil {
		return nil, e.fail("", &domain.StorageError{Op: "resolve tag", Err: err})
	}
	if product == nil {
		e.metrics.IncOutcome("scan", "unregistered_tag")
		return nil, domain.ErrUnregisteredTag
	}

	var out *Outcome
	err = e.runTx(ctx, func(
		movs repository.MovementRepository,
		levels repository.StockLevelRepository,
		_ repository.ProductRepository,
	) error {
		level, err := levels.GetForUpdate(ctx, tenantID, product.ID)
		if err != nil {
			return err
		}
		kind, delta := entity.KindEntrada, int64(1)
		if level.Quantity > 0 {
			kind, delta = entity.KindSaida, int64(-1)
		}
		mov := &entity.Movement{
			TenantID:      tenantID,
			ProductID:     product.ID,
			ActorID:       actorID,
			Kind:          kind,
			Quantity:      1,
			Delta:         delta,
			Unit:          DefaultUnit,
			Justification: fmt.Sprintf("leitura RFID (%s)", kind),
			CreatedAt:     time.Now(),
		}
		out, err = e.appendAndApply(ctx, movs, levels, level, product, mov)
		return err
	})
	if err != nil {
		return nil, e.fail("scan", err)
	}
	e.accepted(out, actorID)
	return out, nil
}

// RecordManual registra un movimiento manual (entrada, saida, devolucao,
// ajuste). Toda la validación ocurre antes de abrir la transacción: un
// rechazo de validación nunca llega a tocar la base de datos.
func (e *Engine) RecordManual(ctx context.Context, in ManualInput) (*Outcome, error) {
	if err := in.validate(); err != nil {
		e.metrics.IncOutcome(in.Kind, "validation")
		return nil, err
	}

	product, err := e.resolveProduct(ctx, in)
	if err != nil {
		return nil, e.fail(in.Kind, err)
	}

	delta := in.Quantity
	if in.Kind == entity.KindSaida || (in.Kind == entity.KindAjuste && in.Decrease) {
		delta = -in.Quantity
	}
	unit := in.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	var out *Outcome
	err = e.runTx(ctx, func(
		movs repository.MovementRepository,
		levels repository.StockLevelRepository,
		_ repository.ProductRepository,
	) error {
		level, err := levels.GetForUpdate(ctx, in.TenantID, product.ID)
		if err != nil {
			return err
		}
		mov := &entity.Movement{
			TenantID:      in.TenantID,
			ProductID:     product.ID,
			ActorID:       in.ActorID,
			Kind:          in.Kind,
			Quantity:      in.Quantity,
			Delta:         delta,
			Unit:          unit,
			Justification: strings.TrimSpace(in.Justification),
			CreatedAt:     time.Now(),
		}
		out, err = e.appendAndApply(ctx, movs, levels, level, product, mov)
		return err
	})
	if err != nil {
		return nil, e.fail(in.Kind, err)
	}
	e.accepted(out, in.ActorID)
	return out, nil
}

func (in ManualInput) validate() error {
	if in.TenantID == "" || in.ActorID == "" {
		return fmt.Errorf("%w: tenant y actor son obligatorios", domain.ErrValidation)
	}
	if !entity.ValidKind(in.Kind) {
		return fmt.Errorf("%w: tipo de movimento inválido %q", domain.ErrValidation, in.Kind)
	}
	if in.Quantity <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser un entero positivo", domain.ErrValidation)
	}
	if in.Kind == entity.KindAjuste && in.ProductID == "" {
		return fmt.Errorf("%w: ajuste requiere el id del producto", domain.ErrValidation)
	}
	if in.ProductID == "" && strings.TrimSpace(in.RFIDTag) == "" {
		return fmt.Errorf("%w: etiqueta RFID o id del producto es obligatorio", domain.ErrValidation)
	}
	if in.Decrease && in.Kind != entity.KindAjuste {
		return fmt.Errorf("%w: direction=decrease solo aplica a ajuste", domain.ErrValidation)
	}
	if entity.JustificationRequired(in.Kind) && len(strings.TrimSpace(in.Justification)) < MinJustificationLen {
		return fmt.Errorf("%w: la justificación es obligatoria para devolucao o ajuste (mínimo %d caracteres)",
			domain.ErrValidation, MinJustificationLen)
	}
	return nil
}

// resolveProduct identifica el producto del movimiento: por etiqueta si viene
// (precede al id), si no por id directo, siempre acotado a la empresa.
func (e *Engine) resolveProduct(ctx context.Context, in ManualInput) (*entity.Product, error) {
	if tag := strings.TrimSpace(in.RFIDTag); tag != "" {
		product, err := e.products.ResolveTag(ctx, in.TenantID, tag)
		if err != nil {
			return nil, &domain.StorageError{Op: "resolve tag", Err: err}
		}
		if product == nil {
			return nil, domain.ErrUnregisteredTag
		}
		return product, nil
	}
	product, err := e.products.GetByID(ctx, in.TenantID, in.ProductID)
	if err != nil {
		return nil, &domain.StorageError{Op: "get product", Err: err}
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// appendAndApply es la primitiva compartida de §append+apply: con la fila ya
// bloqueada, re-valida el guard de no-negatividad contra el valor fresco,
// inserta la entrada del ledger y aplica el delta. Corre siempre dentro de la
// transacción abierta por el caller.
func (e *Engine) appendAndApply(
	ctx context.Context,
	movs repository.MovementRepository,
	levels repository.StockLevelRepository,
	level *entity.StockLevel,
	product *entity.Product,
	mov *entity.Movement,
) (*Outcome, error) {
	if mov.Delta < 0 && level.Quantity+mov.Delta < 0 {
		return nil, &domain.InsufficientStockError{Current: level.Quantity, Requested: -mov.Delta}
	}
	id, err := movs.Append(ctx, mov)
	if err != nil {
		return nil, err
	}
	newQty, err := levels.ApplyDelta(ctx, mov.TenantID, mov.ProductID, mov.Delta)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		MovementID:  id,
		ProductID:   product.ID,
		ProductName: product.Name,
		Kind:        mov.Kind,
		Quantity:    mov.Quantity,
		NewQuantity: newQty,
	}, nil
}

// runTx ejecuta fn en una transacción y mide la duración del commit.
func (e *Engine) runTx(ctx context.Context, fn func(
	repository.MovementRepository,
	repository.StockLevelRepository,
	repository.ProductRepository,
) error) error {
	start := time.Now()
	err := e.tx.Run(ctx, fn)
	if err == nil {
		e.metrics.ObserveCommit(time.Since(start))
	}
	return err
}

// fail clasifica el error, actualiza métricas y deja pasar los resultados de
// negocio tal cual. Cualquier error desconocido se envuelve como StorageError:
// la única clase que el adaptador puede reintentar. El motor no reintenta
// nunca, porque el resultado del commit sería ambiguo.
func (e *Engine) fail(kind string, err error) error {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		e.metrics.IncOutcome(kind, "insufficient_stock")
		return err
	case errors.Is(err, domain.ErrUnregisteredTag):
		e.metrics.IncOutcome(kind, "unregistered_tag")
		return err
	case errors.Is(err, domain.ErrValidation):
		e.metrics.IncOutcome(kind, "validation")
		return err
	case errors.Is(err, domain.ErrNotFound):
		e.metrics.IncOutcome(kind, "not_found")
		return err
	case errors.Is(err, domain.ErrStorage):
		e.metrics.IncOutcome(kind, "storage")
		e.log.Error().Err(err).Msg("movimiento no confirmado por fallo de almacenamiento")
		return err
	}
	e.metrics.IncOutcome(kind, "storage")
	e.log.Error().Err(err).Msg("movimiento no confirmado por fallo de almacenamiento")
	return &domain.StorageError{Op: "register movement", Err: err}
}

func (e *Engine) accepted(out *Outcome, actorID string) {
	e.metrics.IncOutcome(out.Kind, "accepted")
	e.log.Info().
		Int64("movement_id", out.MovementID).
		Str("product_id", out.ProductID).
		Str("actor_id", actorID).
		Str("kind", out.Kind).
		Int64("quantity", out.Quantity).
		Int64("new_quantity", out.NewQuantity).
		Msg("movimiento registrado")
}
