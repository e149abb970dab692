package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/nowstock/nowstock-api/internal/application/movement"
	"github.com/nowstock/nowstock-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine    *movement.Engine
	JWTSecret string
}

// Router registra las rutas de la API. Todo va detrás del Bearer Token; las
// escrituras exigen admin u operador, las lecturas admiten también consulta.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	canWrite := RequireRole(jwt.RoleAdmin, jwt.RoleOperador)
	canRead := RequireRole(jwt.RoleAdmin, jwt.RoleOperador, jwt.RoleConsulta)

	movementHandler := NewMovementHandler(deps.Engine)
	movements := api.Group("/movements")
	movements.Post("/", canWrite, movementHandler.Register)
	movements.Get("/history", canRead, movementHandler.History)

	// Misma entrada que usa el listener de hardware, expuesta para pruebas
	inventory := api.Group("/inventory")
	inventory.Post("/simulate-rfid", canWrite, movementHandler.SimulateScan)

	stockHandler := NewStockHandler(deps.Engine)
	stock := api.Group("/stock")
	stock.Get("/", canRead, stockHandler.List)
	stock.Get("/:product_id", canRead, stockHandler.GetCurrent)
}
