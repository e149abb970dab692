package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nowstock/nowstock-api/internal/application/dto"
	"github.com/nowstock/nowstock-api/internal/application/movement"
)

// StockHandler maneja las lecturas de la proyección de stock (protegido).
type StockHandler struct {
	engine *movement.Engine
}

// NewStockHandler construye el handler.
func NewStockHandler(engine *movement.Engine) *StockHandler {
	return &StockHandler{engine: engine}
}

// List godoc
// @Summary      Stock actual por producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.StockItemDTO
// @Router       /api/stock [get]
func (h *StockHandler) List(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	list, err := h.engine.ListStock(c.Context(), tenantID)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(dto.FromStock(list))
}

// GetCurrent godoc
// @Summary      Cantidad actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  path  string  true  "ID del producto"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{product_id} [get]
func (h *StockHandler) GetCurrent(c *fiber.Ctx) error {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	productID := c.Params("product_id")
	qty, err := h.engine.GetCurrent(c.Context(), tenantID, productID)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(fiber.Map{"product_id": productID, "quantity": qty})
}
