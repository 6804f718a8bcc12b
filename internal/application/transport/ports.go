package transport

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ExportRow fila legible de la exportación.
type ExportRow struct {
	Code     string
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

// ExportDocument instrucciones para el escritor de documentos: las páginas
// legibles y el bloque de texto oculto con el payload.
type ExportDocument struct {
	GeneratedAt   time.Time
	ProductCount  int
	TotalUnits    int
	TotalValue    decimal.Decimal
	Rows          []ExportRow
	HiddenPayload string // texto delimitado por centinelas; debe sobrevivir byte a byte
}

// DocumentWriter produce el documento binario de exportación. El contrato del
// códec depende de que HiddenPayload quede intacto dentro de los bytes
// producidos; los tests de integración lo verifican contra la salida real.
type DocumentWriter interface {
	WriteExport(ctx context.Context, doc ExportDocument) ([]byte, error)
}

// Document contenedor abierto: número de páginas y bytes crudos para el
// escaneo de centinelas.
type Document struct {
	Pages int
	Raw   []byte
}

// DocumentReader abre un contenedor binario. Error si el documento no puede
// abrirse como tal.
type DocumentReader interface {
	Open(raw []byte) (*Document, error)
}

// ConfirmPrompt confirmación síncrona del usuario. La importación es un
// reemplazo total del estado; el decodificado no tiene efectos hasta que el
// usuario acepta.
type ConfirmPrompt interface {
	Ask(message string) bool
}
