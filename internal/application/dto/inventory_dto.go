package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddProductRequest alta de producto en el catálogo.
type AddProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Category string          `json:"category"`
}

// EditPriceRequest cambio de precio (no genera asiento en el historial).
type EditPriceRequest struct {
	NewPrice decimal.Decimal `json:"newPrice"`
}

// AdjustQuantityRequest ajuste de cantidad; delta negativo inicia una
// reducción pendiente de motivo.
type AdjustQuantityRequest struct {
	Delta int `json:"delta"`
}

// CommitReductionRequest confirma la reducción pendiente con su motivo.
type CommitReductionRequest struct {
	ReasonCode   string `json:"reasonCode"`
	CustomReason string `json:"customReason"`
	Notes        string `json:"notes"`
}

// ProductFilter filtros de listado: búsqueda por subcadena (nombre o código,
// sin distinguir mayúsculas) y categoría exacta; se combinan con AND.
type ProductFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
}

// ProductResponse instantánea de solo lectura de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StatsResponse estadísticas del catálogo.
type StatsResponse struct {
	ProductCount int `json:"productCount"`
	TotalUnits   int `json:"totalUnits"`
}

// Resultados posibles de un ajuste de cantidad.
const (
	AdjustApplied  = "aplicado"            // delta >= 0, cantidad actualizada
	AdjustStaged   = "reduccion_pendiente" // delta < 0, a la espera de motivo
	AdjustRejected = "rechazado"           // dejaría la cantidad negativa; sin cambios
)

// AdjustResult resultado de AdjustQuantity.
type AdjustResult struct {
	Outcome string           `json:"outcome"`
	Product *ProductResponse `json:"product,omitempty"`
	Pending *PendingReduction `json:"pending,omitempty"`
}

// PendingReduction reducción en espera de motivo.
type PendingReduction struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Amount      int    `json:"amount"`
}

// ReductionResponse asiento del historial de reducciones.
type ReductionResponse struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"productId"`
	ProductName      string    `json:"productName"`
	ProductCode      string    `json:"productCode"`
	QuantityReduced  int       `json:"quantityReduced"`
	PreviousQuantity int       `json:"previousQuantity"`
	NewQuantity      int       `json:"newQuantity"`
	Reason           string    `json:"reason"`
	ReasonCode       string    `json:"reasonCode"`
	Notes            string    `json:"notes"`
	Date             time.Time `json:"date"`
	Timestamp        int64     `json:"timestamp"`
}

// ExportResult documento de exportación generado.
type ExportResult struct {
	FileName string `json:"fileName"`
	Bytes    []byte `json:"-"`
}

// ImportPreview resumen de un payload decodificado, previo a confirmar.
type ImportPreview struct {
	TotalProducts    int      `json:"totalProducts"`
	TotalUnits       int      `json:"totalUnits"`
	ReductionRecords int      `json:"reductionRecords"`
	SampleProducts   []string `json:"sampleProducts"`
	Message          string   `json:"message"`
}

// ImportResult resultado de la importación (reemplazo total del estado).
type ImportResult struct {
	Imported         bool `json:"imported"`
	ProductCount     int  `json:"productCount"`
	TotalUnits       int  `json:"totalUnits"`
	ReductionRecords int  `json:"reductionRecords"`
}
