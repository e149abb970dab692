package dto

import (
	"time"

	"github.com/nowstock/nowstock-api/internal/application/movement"
	"github.com/nowstock/nowstock-api/internal/domain/entity"
)

// RegisterMovementRequest body para POST /api/movements.
// El producto llega por rfid_tag o por product_id; direction "decrease" solo
// aplica a ajuste.
type RegisterMovementRequest struct {
	Kind          string `json:"kind"`
	ProductID     string `json:"product_id,omitempty"`
	RFIDTag       string `json:"rfid_tag,omitempty"`
	Quantity      int64  `json:"quantity"`
	Unit          string `json:"unit,omitempty"`
	Justification string `json:"justification,omitempty"`
	Direction     string `json:"direction,omitempty"` // "decrease" para ajuste que resta
}

// SimulateScanRequest body para POST /api/inventory/simulate-rfid.
type SimulateScanRequest struct {
	RFIDTag string `json:"rfid_tag"`
}

// MovementOutcomeResponse resultado de un movimiento aceptado.
type MovementOutcomeResponse struct {
	MovementID  int64  `json:"movement_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Kind        string `json:"kind"`
	Quantity    int64  `json:"quantity"`
	NewQuantity int64  `json:"new_quantity"`
}

// FromOutcome construye la respuesta desde el resultado del motor.
func FromOutcome(out *movement.Outcome) MovementOutcomeResponse {
	return MovementOutcomeResponse{
		MovementID:  out.MovementID,
		ProductID:   out.ProductID,
		ProductName: out.ProductName,
		Kind:        out.Kind,
		Quantity:    out.Quantity,
		NewQuantity: out.NewQuantity,
	}
}

// HistoryItemDTO fila del histórico de movimientos.
type HistoryItemDTO struct {
	MovementID      int64     `json:"movement_id"`
	Kind            string    `json:"kind"`
	Quantity        int64     `json:"quantity"`
	Delta           int64     `json:"delta"`
	Unit            string    `json:"unit"`
	Justification   string    `json:"justification,omitempty"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ActorID         string    `json:"actor_id"`
	ActorName       string    `json:"actor_name"`
	CurrentQuantity int64     `json:"current_quantity"`
	CreatedAt       time.Time `json:"created_at"`
}

// FromHistory convierte las filas del motor al shape de la API.
func FromHistory(list []*entity.HistoryEntry) []HistoryItemDTO {
	out := make([]HistoryItemDTO, 0, len(list))
	for _, e := range list {
		out = append(out, HistoryItemDTO{
			MovementID:      e.ID,
			Kind:            e.Kind,
			Quantity:        e.Quantity,
			Delta:           e.Delta,
			Unit:            e.Unit,
			Justification:   e.Justification,
			ProductID:       e.ProductID,
			ProductName:     e.ProductName,
			ActorID:         e.ActorID,
			ActorName:       e.ActorName,
			CurrentQuantity: e.CurrentQuantity,
			CreatedAt:       e.CreatedAt,
		})
	}
	return out
}

// StockItemDTO fila del listado de stock.
type StockItemDTO struct {
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	RFIDTag         string    `json:"rfid_tag,omitempty"`
	Quantity        int64     `json:"quantity"`
	MinimumQuantity int64     `json:"minimum_quantity"`
	BelowMinimum    bool      `json:"below_minimum"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// FromStock convierte el listado de stock al shape de la API.
func FromStock(list []*entity.StockItem) []StockItemDTO {
	out := make([]StockItemDTO, 0, len(list))
	for _, it := range list {
		out = append(out, StockItemDTO{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			RFIDTag:         it.RFIDTag,
			Quantity:        it.Quantity,
			MinimumQuantity: it.MinimumQuantity,
			BelowMinimum:    it.BelowMinimum,
			UpdatedAt:       it.UpdatedAt,
		})
	}
	return out
}
