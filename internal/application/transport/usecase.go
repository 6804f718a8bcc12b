package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-local/internal/application/dto"
	"github.com/tu-usuario/inventario-local/internal/application/inventory"
	"github.com/tu-usuario/inventario-local/internal/domain"
)

// UseCase orquesta exportación e importación del estado completo.
type UseCase struct {
	inv    *inventory.UseCase
	writer DocumentWriter
	reader DocumentReader
	prompt ConfirmPrompt
	prefix string // prefijo del nombre de archivo de exportación
}

// NewUseCase construye el caso de uso con sus colaboradores inyectados.
func NewUseCase(inv *inventory.UseCase, writer DocumentWriter, reader DocumentReader, prompt ConfirmPrompt, filePrefix string) *UseCase {
	return &UseCase{inv: inv, writer: writer, reader: reader, prompt: prompt, prefix: filePrefix}
}

// Export serializa {catálogo, historial} y lo entrega al escritor de
// documentos junto con la vista legible. Nombre de archivo:
// <prefijo>_<AAAA>-<MM>-<DD>.pdf con fecha local.
func (uc *UseCase) Export(ctx context.Context) (*dto.ExportResult, error) {
	products, history := uc.inv.Snapshot()
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no hay productos para exportar", domain.ErrValidation)
	}

	now := time.Now()
	payload := BuildPayload(products, history, now)
	hidden, err := EncodePayload(payload)
	if err != nil {
		return nil, err
	}

	doc := ExportDocument{
		GeneratedAt:   now,
		ProductCount:  len(products),
		HiddenPayload: hidden,
		Rows:          make([]ExportRow, 0, len(products)),
	}
	totalValue := decimal.Zero
	for _, p := range products {
		doc.TotalUnits += p.Quantity
		totalValue = totalValue.Add(p.TotalValue())
		doc.Rows = append(doc.Rows, ExportRow{
			Code:     p.Code,
			Name:     p.Name,
			Category: p.Category,
			Price:    p.Price,
			Quantity: p.Quantity,
		})
	}
	doc.TotalValue = totalValue

	raw, err := uc.writer.WriteExport(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("generar documento de exportación: %w", err)
	}
	return &dto.ExportResult{
		FileName: fmt.Sprintf("%s_%s.pdf", uc.prefix, now.Format("2006-01-02")),
		Bytes:    raw,
	}, nil
}

// Decode abre el contenedor, extrae y valida el payload. Sin efectos sobre el
// estado vivo: sirve como vista previa antes de confirmar.
func (uc *UseCase) Decode(raw []byte) (*DecodedState, *dto.ImportPreview, error) {
	document, err := uc.reader.Open(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrFormat, err)
	}
	if document.Pages == 0 {
		return nil, nil, fmt.Errorf("%w: el archivo está vacío", domain.ErrFormat)
	}

	text, err := ExtractPayload(document.Raw)
	if err != nil {
		return nil, nil, err
	}
	state, err := ParsePayload(text)
	if err != nil {
		return nil, nil, err
	}
	return state, buildPreview(state), nil
}

// Import decodifica y, tras la confirmación del usuario, reemplaza el estado
// al completo. Si el usuario declina no hay ningún efecto.
func (uc *UseCase) Import(ctx context.Context, raw []byte) (*dto.ImportResult, error) {
	state, preview, err := uc.Decode(raw)
	if err != nil {
		return nil, err
	}

	if !uc.prompt.Ask(preview.Message) {
		return &dto.ImportResult{Imported: false}, nil
	}

	stats := uc.inv.ReplaceAll(state.Products, state.History)
	return &dto.ImportResult{
		Imported:         true,
		ProductCount:     stats.ProductCount,
		TotalUnits:       stats.TotalUnits,
		ReductionRecords: len(state.History),
	}, nil
}

// buildPreview arma el resumen mostrado al usuario antes de confirmar:
// hasta cinco productos y los totales, con la advertencia de reemplazo.
func buildPreview(state *DecodedState) *dto.ImportPreview {
	preview := &dto.ImportPreview{
		TotalProducts:    len(state.Products),
		TotalUnits:       state.TotalUnits(),
		ReductionRecords: len(state.History),
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Se encontraron %d productos:\n", len(state.Products))
	for i, p := range state.Products {
		if i == 5 {
			fmt.Fprintf(&b, "... y %d productos más\n", len(state.Products)-5)
			break
		}
		line := fmt.Sprintf("• %s - $%s (%d unidades)", p.Name, p.Price.StringFixed(2), p.Quantity)
		preview.SampleProducts = append(preview.SampleProducts, line)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nEsta acción reemplazará todos los productos actuales del inventario. ¿Deseas continuar?")
	preview.Message = b.String()
	return preview
}
