package entity

import "time"

// Motivos de reducción de cantidad. ReasonOther exige texto libre.
const (
	ReasonSold    = "vendido"
	ReasonBroken  = "roto"
	ReasonExpired = "caducado"
	ReasonLost    = "perdido"
	ReasonOther   = "otro"
)

var reasonLabels = map[string]string{
	ReasonSold:    "Vendido",
	ReasonBroken:  "Roto o dañado",
	ReasonExpired: "Caducado",
	ReasonLost:    "Perdido",
	ReasonOther:   "Otro",
}

// ResolveReason texto del motivo: para "otro" es el texto libre del usuario,
// para el resto la etiqueta del catálogo (passthrough si el código no es conocido).
func ResolveReason(code, customText string) string {
	if code == ReasonOther {
		return customText
	}
	if label, ok := reasonLabels[code]; ok {
		return label
	}
	return code
}

// ReductionRecord asiento inmutable del historial de reducciones.
// Guarda nombre y código del producto desnormalizados: el asiento sobrevive
// a la eliminación del producto que referencia.
// Invariante: NewQuantity = PreviousQuantity - QuantityReduced, QuantityReduced > 0.
type ReductionRecord struct {
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
