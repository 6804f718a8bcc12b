// Package transport implementa el códec de exportación e importación: el
// estado completo {catálogo, historial} serializado como JSON compacto,
// delimitado por centinelas y embebido como texto oculto en un documento PDF,
// y la operación inversa que lo localiza y decodifica sin pérdida.
package transport

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-local/internal/domain"
	"github.com/tu-usuario/inventario-local/internal/domain/entity"
)

// Contrato de interoperabilidad del payload. Los centinelas y el marcador de
// formato son literales exactos: el texto delimitado debe sobrevivir byte a
// byte dentro del contenedor binario que produzca el escritor de documentos.
const (
	PayloadVersion = "2.0"
	FormatMarker   = "PDF_EXPORT"

	SentinelStart = "DATA_START"
	SentinelEnd   = "DATA_END"

	formatMarkerJSON = `"format":"PDF_EXPORT"`
	fallbackPrefix   = `{"exportDate"`
)

// Payload estructura exportada. El orden de los campos fija el orden de las
// claves en el JSON generado (exportDate primero: el escaneo de respaldo del
// importador lo busca como prefijo del objeto).
type Payload struct {
	ExportDate       string                   `json:"exportDate"`
	Version          string                   `json:"version"`
	Format           string                   `json:"format"`
	TotalProducts    int                      `json:"totalProducts"`
	Products         []entity.Product         `json:"products"`
	ReductionHistory []entity.ReductionRecord `json:"reductionHistory"`
}

// BuildPayload arma el payload de exportación para el estado dado.
func BuildPayload(products []entity.Product, history []entity.ReductionRecord, now time.Time) *Payload {
	if history == nil {
		history = []entity.ReductionRecord{}
	}
	return &Payload{
		ExportDate:       now.UTC().Format(time.RFC3339),
		Version:          PayloadVersion,
		Format:           FormatMarker,
		TotalProducts:    len(products),
		Products:         products,
		ReductionHistory: history,
	}
}

// EncodePayload serializa el payload en una sola línea y lo envuelve con los
// centinelas. El resultado no contiene saltos de línea ni caracteres de
// control: JSON compacto escapa cualquier control dentro de cadenas.
func EncodePayload(p *Payload) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("serializar payload: %w", err)
	}
	return SentinelStart + string(data) + SentinelEnd, nil
}

// ExtractPayload localiza el texto del payload dentro de los bytes crudos del
// contenedor. El escaneo es byte a byte (mapeo 1:1 estilo latin1, nunca
// decodificación UTF-8): el payload debe recuperarse aunque el contenedor lo
// rodee de datos binarios.
//
//  1. Busca los centinelas DATA_START/DATA_END; si ambos existen y el fin va
//     después del inicio, toma el tramo intermedio, elimina caracteres de
//     control y verifica el marcador de formato.
//  2. Si no, recorre el documento buscando un objeto JSON que empiece por
//     {"exportDate" y contenga el marcador.
//
// Devuelve ErrFormat si ninguna vía encuentra datos válidos.
func ExtractPayload(raw []byte) (string, error) {
	text := string(raw)

	start := strings.Index(text, SentinelStart)
	end := strings.Index(text, SentinelEnd)
	if start != -1 && end != -1 && end > start {
		segment := stripControl(text[start+len(SentinelStart) : end])
		segment = strings.TrimSpace(segment)
		if strings.Contains(segment, formatMarkerJSON) {
			return segment, nil
		}
	}

	if segment, ok := scanFallback(text); ok {
		return segment, nil
	}
	return "", fmt.Errorf("%w: no se encontraron los marcadores de exportación", domain.ErrFormat)
}

// scanFallback busca objetos JSON que empiecen por {"exportDate" y devuelve
// el primero que contenga el marcador de formato.
func scanFallback(text string) (string, bool) {
	offset := 0
	for {
		i := strings.Index(text[offset:], fallbackPrefix)
		if i == -1 {
			return "", false
		}
		i += offset
		if obj, ok := balancedObject(text[i:]); ok && strings.Contains(obj, formatMarkerJSON) {
			return strings.TrimSpace(stripControl(obj)), true
		}
		offset = i + len(fallbackPrefix)
	}
}

// balancedObject devuelve el objeto JSON completo que comienza en s[0] == '{',
// contando llaves fuera de cadenas y respetando escapes.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// stripControl elimina los bytes de control (0x00–0x1F, 0x7F–0x9F) que el
// contenedor pueda intercalar alrededor del texto.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || (c >= 0x7f && c <= 0x9f) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// DecodedState estado reconstruido desde un payload, listo para reemplazar
// el estado vivo al completo.
type DecodedState struct {
	ExportDate string
	Products   []entity.Product
	History    []entity.ReductionRecord
}

// TotalUnits unidades totales del catálogo decodificado.
func (s *DecodedState) TotalUnits() int {
	total := 0
	for _, p := range s.Products {
		total += p.Quantity
	}
	return total
}

// ParsePayload interpreta y valida el texto extraído.
//   - Fallo de análisis JSON: ErrFormat (datos corruptos, distinto de "no encontrado").
//   - products ausente o no-secuencia, campo requerido faltante en algún
//     producto, o marcador de formato distinto de PDF_EXPORT: ErrSchema.
//   - price y quantity se coercionan tolerando numéricos en cadena
//     (ida y vuelta por contenedores con pérdida de tipos).
func ParsePayload(text string) (*DecodedState, error) {
	var envelope struct {
		ExportDate       string          `json:"exportDate"`
		Format           string          `json:"format"`
		Products         json.RawMessage `json:"products"`
		ReductionHistory json.RawMessage `json:"reductionHistory"`
	}
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return nil, fmt.Errorf("%w: los datos del archivo están corruptos: %s", domain.ErrFormat, err)
	}
	if envelope.Format != FormatMarker {
		return nil, fmt.Errorf("%w: el archivo no es una exportación válida", domain.ErrSchema)
	}
	if len(envelope.Products) == 0 || string(envelope.Products) == "null" {
		return nil, fmt.Errorf("%w: falta la lista de productos", domain.ErrSchema)
	}
	var rawProducts []json.RawMessage
	if err := json.Unmarshal(envelope.Products, &rawProducts); err != nil {
		return nil, fmt.Errorf("%w: la lista de productos no es una secuencia", domain.ErrSchema)
	}

	products := make([]entity.Product, 0, len(rawProducts))
	for i, raw := range rawProducts {
		product, err := parseProduct(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: producto %d: %s", domain.ErrSchema, i, err)
		}
		products = append(products, *product)
	}

	return &DecodedState{
		ExportDate: envelope.ExportDate,
		Products:   products,
		History:    parseHistory(envelope.ReductionHistory),
	}, nil
}

var requiredProductFields = []string{"id", "name", "code", "price", "quantity", "category"}

func parseProduct(raw json.RawMessage) (*entity.Product, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("no es un objeto: %s", err)
	}
	for _, field := range requiredProductFields {
		if _, ok := fields[field]; !ok {
			return nil, fmt.Errorf("falta el campo %q", field)
		}
	}

	var p struct {
		ID        string          `json:"id"`
		Name      string          `json:"name"`
		Code      string          `json:"code"`
		Price     decimal.Decimal `json:"price"`
		Quantity  flexInt         `json:"quantity"`
		Category  string          `json:"category"`
		CreatedAt flexTime        `json:"createdAt"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &entity.Product{
		ID:        p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Price:     p.Price,
		Quantity:  int(p.Quantity),
		Category:  p.Category,
		CreatedAt: time.Time(p.CreatedAt),
	}, nil
}

// parseHistory reconstruye el historial si viene en el payload; ausente o
// ilegible equivale a historial vacío (el catálogo manda en la importación).
func parseHistory(raw json.RawMessage) []entity.ReductionRecord {
	if len(raw) == 0 || string(raw) == "null" {
		return []entity.ReductionRecord{}
	}
	var rows []struct {
		ID               string   `json:"id"`
		ProductID        string   `json:"productId"`
		ProductName      string   `json:"productName"`
		ProductCode      string   `json:"productCode"`
		QuantityReduced  flexInt  `json:"quantityReduced"`
		PreviousQuantity flexInt  `json:"previousQuantity"`
		NewQuantity      flexInt  `json:"newQuantity"`
		Reason           string   `json:"reason"`
		ReasonCode       string   `json:"reasonCode"`
		Notes            string   `json:"notes"`
		Date             flexTime `json:"date"`
		Timestamp        int64    `json:"timestamp"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []entity.ReductionRecord{}
	}
	history := make([]entity.ReductionRecord, len(rows))
	for i, r := range rows {
		history[i] = entity.ReductionRecord{
			ID:               r.ID,
			ProductID:        r.ProductID,
			ProductName:      r.ProductName,
			ProductCode:      r.ProductCode,
			QuantityReduced:  int(r.QuantityReduced),
			PreviousQuantity: int(r.PreviousQuantity),
			NewQuantity:      int(r.NewQuantity),
			Reason:           r.Reason,
			ReasonCode:       r.ReasonCode,
			Notes:            r.Notes,
			Date:             time.Time(r.Date),
			Timestamp:        r.Timestamp,
		}
	}
	return history
}

// flexInt entero que tolera venir como número o como cadena ("7", "7.0").
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("cantidad inválida %q", s)
	}
	*f = flexInt(int(fl))
	return nil
}

// flexTime fecha RFC 3339 que tolera ausencia o formato irreconocible
// (queda en cero; la fecha no participa en ningún invariante).
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = flexTime(time.Time{})
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		*f = flexTime(time.Time{})
		return nil
	}
	*f = flexTime(t)
	return nil
}
