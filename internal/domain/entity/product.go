package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo en memoria.
// Code es único entre los productos vivos e inmutable tras la creación;
// Price y Quantity nunca son negativos (los casos de uso lo garantizan).
type Product struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"createdAt"`
}

// TotalValue valor total de la posición (precio × cantidad).
func (p *Product) TotalValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
