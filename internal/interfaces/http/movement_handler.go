package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/nowstock/nowstock-api/internal/application/dto"
	"github.com/nowstock/nowstock-api/internal/application/movement"
	"github.com/nowstock/nowstock-api/internal/domain"
	"github.com/nowstock/nowstock-api/internal/domain/entity"
)

// MovementHandler maneja las peticiones HTTP del motor de movimientos (protegido).
type MovementHandler struct {
	engine *movement.Engine
}

// NewMovementHandler construye el handler.
func NewMovementHandler(engine *movement.Engine) *MovementHandler {
	return &MovementHandler{engine: engine}
}

// Register godoc
// @Summary      Registrar movimiento manual de stock
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "kind, product_id o rfid_tag, quantity, unit, justification"
// @Success      201   {object}  dto.MovementOutcomeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.RecordManual(c.Context(), movement.ManualInput{
		TenantID:      tenantID,
		ActorID:       userID,
		Kind:          in.Kind,
		ProductID:     in.ProductID,
		RFIDTag:       in.RFIDTag,
		Quantity:      in.Quantity,
		Unit:          in.Unit,
		Justification: in.Justification,
		Decrease:      in.Direction == "decrease",
	})
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOutcome(out))
}

// SimulateScan godoc
// @Summary      Simular una lectura RFID
// @Description  Mismo camino que el listener de hardware: resuelve la etiqueta
//	y registra entrada o saida según el stock actual.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SimulateScanRequest  true  "rfid_tag"
// @Success      201   {object}  dto.MovementOutcomeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/simulate-rfid [post]
func (h *MovementHandler) SimulateScan(c *fiber.Ctx) error {
	tenantID, userID := GetTenantID(c), GetUserID(c)
	if tenantID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.SimulateScanRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.engine.RecordScan(c.Context(), tenantID, in.RFIDTag, userID)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromOutcome(out))
}

// History godoc
// @Summary      Histórico de movimientos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        kind        query  string  false  "entrada | saida | devolucao | ajuste"
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        actor_id    query  string  false  "Filtrar por usuario"
// @Success      200  {array}   dto.HistoryItemDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/history [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	list, err := h.engine.GetHistory(c.Context(), tenantID, entity.HistoryFilter{
		Kind:      c.Query("kind"),
		ProductID: c.Query("product_id"),
		ActorID:   c.Query("actor_id"),
		Limit:     page.Limit,
		Offset:    page.Offset,
	})
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(dto.FromHistory(list))
}

// writeEngineError traduce la taxonomía del motor a HTTP. Los resultados de
// negocio nunca se degradan a 500: cada clase tiene su código, y solo STORAGE
// (503) es candidata a retry del lado del cliente.
func writeEngineError(c *fiber.Ctx, err error) error {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		current := insufficient.Current
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:            "INSUFFICIENT_STOCK",
			Message:         insufficient.Error(),
			CurrentQuantity: &current,
		})
	}
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrUnregisteredTag):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNREGISTERED_TAG", Message: err.Error()})
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	case errors.Is(err, domain.ErrStorage):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE", Message: "fallo transitorio de almacenamiento, reintente"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
