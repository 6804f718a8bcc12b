// Package pdf implementa el escritor y el lector de documentos de
// exportación del inventario.
//
// Layout del documento de exportación (A4):
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  EXPORTACIÓN DE INVENTARIO                                   │
//	│  Archivo de respaldo para importación                        │
//	│  Fecha de exportación / Total de productos                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: productos únicos / items / valor total             │
//	│  TABLA: Código | Nombre | Categoría | Precio | Cant | Total  │
//	└─────────────────────────────────────────────────────────────┘
//
// Además de las páginas legibles, el documento transporta el payload oculto
// delimitado por DATA_START/DATA_END. Los flujos de contenido del PDF van
// comprimidos, así que un texto dibujado no sobreviviría a un escaneo de
// bytes crudos: el payload se agrega como línea de comentario tras el cierre
// del documento, repitiendo el tráiler para que el archivo siga siendo un
// PDF válido (los lectores localizan startxref escaneando desde el final).
package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/inventario-local/internal/application/transport"
	"github.com/tu-usuario/inventario-local/internal/domain/entity"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// MarotoDocumentWriter implementa transport.DocumentWriter usando Maroto v2.
type MarotoDocumentWriter struct{}

// NewMarotoDocumentWriter construye el escritor.
func NewMarotoDocumentWriter() *MarotoDocumentWriter { return &MarotoDocumentWriter{} }

// WriteExport genera el PDF de exportación y devuelve sus bytes, con el
// payload oculto embebido intacto.
func (w *MarotoDocumentWriter) WriteExport(_ context.Context, doc transport.ExportDocument) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Exportación de Inventario", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(doc)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRows(doc)...)
	m.AddRows(tableHeaderRow())
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range doc.Rows {
		m.AddRows(productRow(r))
	}

	generated, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return appendHiddenPayload(generated.GetBytes(), doc.HiddenPayload)
}

// appendHiddenPayload agrega el payload como comentario PDF al final del
// archivo y repite el tráiler original (startxref + %%EOF), de modo que el
// texto delimitado queda byte a byte en el archivo y el documento sigue
// abriéndose con cualquier lector.
func appendHiddenPayload(pdf []byte, payload string) ([]byte, error) {
	if payload == "" {
		return pdf, nil
	}
	i := bytes.LastIndex(pdf, []byte("startxref"))
	if i < 0 {
		return nil, errors.New("pdf: documento generado sin startxref")
	}
	trailer := pdf[i:]

	var b bytes.Buffer
	b.Grow(len(pdf) + len(payload) + len(trailer) + 4)
	b.Write(pdf)
	if pdf[len(pdf)-1] != '\n' {
		b.WriteByte('\n')
	}
	b.WriteByte('%')
	b.WriteString(payload)
	b.WriteByte('\n')
	b.Write(trailer)
	if trailer[len(trailer)-1] != '\n' {
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRows(doc transport.ExportDocument) []core.Row {
	return []core.Row{
		row.New(10).Add(
			col.New(12).Add(
				text.New("EXPORTACIÓN DE INVENTARIO", props.Text{
					Style: fontstyle.Bold, Size: 16, Align: align.Center, Color: colorPrimary,
				}),
			),
		),
		row.New(6).Add(
			col.New(12).Add(
				text.New("Archivo de respaldo para importación", props.Text{
					Size: 10, Align: align.Center, Color: colorGray,
				}),
			),
		),
		row.New(10).Add(
			col.New(6).Add(
				text.New("Fecha de exportación: "+doc.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
					Size: 8, Top: 2, Color: colorGray,
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Total de productos: %d", doc.ProductCount), props.Text{
					Size: 8, Top: 2, Align: align.Right, Color: colorGray,
				}),
			),
		),
	}
}

func summaryRows(doc transport.ExportDocument) []core.Row {
	return []core.Row{
		row.New(8).Add(
			col.New(12).Add(
				text.New("RESUMEN", props.Text{Style: fontstyle.Bold, Size: 10, Top: 2, Color: colorPrimary}),
			),
		),
		row.New(12).Add(
			col.New(4).Add(
				text.New(fmt.Sprintf("Productos únicos: %d", doc.ProductCount), props.Text{Size: 9}),
			),
			col.New(4).Add(
				text.New(fmt.Sprintf("Total de items: %d", doc.TotalUnits), props.Text{Size: 9}),
			),
			col.New(4).Add(
				text.New("Valor total: $"+doc.TotalValue.StringFixed(2), props.Text{Size: 9}),
			),
		),
	}
}

func tableHeaderRow() core.Row {
	header := props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary}
	headerRight := props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary}
	return row.New(7).Add(
		col.New(2).Add(text.New("Código", header)),
		col.New(4).Add(text.New("Nombre", header)),
		col.New(2).Add(text.New("Categoría", header)),
		col.New(1).Add(text.New("Precio", headerRight)),
		col.New(1).Add(text.New("Cant.", headerRight)),
		col.New(2).Add(text.New("Total", headerRight)),
	)
}

func productRow(r transport.ExportRow) core.Row {
	cell := props.Text{Size: 8}
	cellRight := props.Text{Size: 8, Align: align.Right}
	total := r.Price.Mul(decimalFromInt(r.Quantity))
	return row.New(6).Add(
		col.New(2).Add(text.New(r.Code, cell)),
		col.New(4).Add(text.New(truncate(r.Name, 40), cell)),
		col.New(2).Add(text.New(entity.CategoryLabel(r.Category), cell)),
		col.New(1).Add(text.New("$"+r.Price.StringFixed(2), cellRight)),
		col.New(1).Add(text.New(fmt.Sprintf("%d", r.Quantity), cellRight)),
		col.New(2).Add(text.New("$"+total.StringFixed(2), cellRight)),
	)
}

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
