package transport_test

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventario-local/internal/application/transport"
	"github.com/tu-usuario/inventario-local/internal/domain"
	"github.com/tu-usuario/inventario-local/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Constructores de prueba
// ──────────────────────────────────────────────────────────────────────────────

func sampleProducts() []entity.Product {
	return []entity.Product{
		{
			ID:        "id-1",
			Name:      "Widget",
			Code:      "PRD123456001",
			Price:     decimal.NewFromFloat(9.99),
			Quantity:  10,
			Category:  "otros",
			CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:       "id-2",
			Name:     "Jabón «Río»", // latin-1 alto: debe sobrevivir byte a byte
			Code:     "PRD123456002",
			Price:    decimal.NewFromInt(2),
			Quantity: 4,
			Category: "hogar",
		},
	}
}

func sampleHistory() []entity.ReductionRecord {
	return []entity.ReductionRecord{{
		ID:               "red-1",
		ProductID:        "id-1",
		ProductName:      "Widget",
		ProductCode:      "PRD123456001",
		QuantityReduced:  3,
		PreviousQuantity: 10,
		NewQuantity:      7,
		Reason:           "Roto o dañado",
		ReasonCode:       entity.ReasonBroken,
		Notes:            "caja aplastada",
		Date:             time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
		Timestamp:        1785576600000,
	}}
}

func encodeSample(t *testing.T) string {
	t.Helper()
	payload := transport.BuildPayload(sampleProducts(), sampleHistory(), time.Now())
	wrapped, err := transport.EncodePayload(payload)
	require.NoError(t, err)
	return wrapped
}

// embedInBinary rodea el texto con ruido binario al estilo de un contenedor
// real: bytes arbitrarios, no UTF-8 válido, con caracteres de control dentro.
func embedInBinary(wrapped string) []byte {
	var b []byte
	b = append(b, []byte("%PDF-1.4\n\x00\x01\xfe\xff stream \x9f\x80")...)
	b = append(b, []byte(wrapped)...)
	b = append(b, []byte("\x00\x07 endstream\ntrailer\n%%EOF\n")...)
	return b
}

// ──────────────────────────────────────────────────────────────────────────────
// Codificación y extracción
// ──────────────────────────────────────────────────────────────────────────────

func TestEncodePayload_FormaDelTexto(t *testing.T) {
	wrapped := encodeSample(t)

	assert.True(t, strings.HasPrefix(wrapped, transport.SentinelStart))
	assert.True(t, strings.HasSuffix(wrapped, transport.SentinelEnd))
	assert.NotContains(t, wrapped, "\n", "el payload viaja en una sola línea")
	assert.Contains(t, wrapped, `"format":"PDF_EXPORT"`)
	assert.Contains(t, wrapped, `"version":"2.0"`)
	assert.True(t, strings.Index(wrapped, `"exportDate"`) < strings.Index(wrapped, `"format"`),
		"exportDate encabeza el objeto: el escaneo de respaldo lo usa como prefijo")
}

func TestExtractPayload_Centinelas(t *testing.T) {
	wrapped := encodeSample(t)

	text, err := transport.ExtractPayload(embedInBinary(wrapped))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "{"))
	assert.Contains(t, text, `"format":"PDF_EXPORT"`)

	state, err := transport.ParsePayload(text)
	require.NoError(t, err)
	assert.Len(t, state.Products, 2)
}

func TestExtractPayload_SinCentinelasUsaEscaneoDeRespaldo(t *testing.T) {
	wrapped := encodeSample(t)
	// El contenedor perdió los marcadores pero el objeto JSON sigue dentro.
	inner := strings.TrimSuffix(strings.TrimPrefix(wrapped, transport.SentinelStart), transport.SentinelEnd)
	raw := embedInBinary(inner)

	text, err := transport.ExtractPayload(raw)
	require.NoError(t, err)
	state, err := transport.ParsePayload(text)
	require.NoError(t, err)
	assert.Len(t, state.Products, 2)
}

func TestExtractPayload_SinDatos(t *testing.T) {
	cases := []struct {
		name string
		raw  []byte
	}{
		{"bytes sin nada", []byte("%PDF-1.4 nada que ver aquí %%EOF")},
		{"centinelas en orden inverso", []byte("DATA_END{...}DATA_START")},
		{"objeto sin marcador de formato", []byte(`DATA_START{"exportDate":"x","format":"OTRA_COSA"}DATA_END`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transport.ExtractPayload(tc.raw)
			assert.ErrorIs(t, err, domain.ErrFormat)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Análisis y validación de esquema
// ──────────────────────────────────────────────────────────────────────────────

func TestParsePayload_IdaYVuelta(t *testing.T) {
	wrapped := encodeSample(t)
	text, err := transport.ExtractPayload(embedInBinary(wrapped))
	require.NoError(t, err)

	state, err := transport.ParsePayload(text)
	require.NoError(t, err)

	want := sampleProducts()
	require.Len(t, state.Products, len(want))
	for i, got := range state.Products {
		assert.Equal(t, want[i].ID, got.ID)
		assert.Equal(t, want[i].Name, got.Name)
		assert.Equal(t, want[i].Code, got.Code)
		assert.Equal(t, want[i].Quantity, got.Quantity)
		assert.Equal(t, want[i].Category, got.Category)
		assert.True(t, got.Price.Equal(want[i].Price), "precio equivalente módulo coerción")
	}

	require.Len(t, state.History, 1)
	record := state.History[0]
	assert.Equal(t, sampleHistory()[0], record, "el historial se reconstruye sin pérdida")
	assert.Equal(t, 14, state.TotalUnits(), "10+4")
}

func TestParsePayload_DatosCorruptos(t *testing.T) {
	_, err := transport.ParsePayload(`{"exportDate":"x","format":"PDF_EXPORT","products":[{]`)
	require.ErrorIs(t, err, domain.ErrFormat)
	assert.Contains(t, err.Error(), "corruptos", "corrupto se distingue de no encontrado")
}

func TestParsePayload_Esquema(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{
			"products ausente",
			`{"exportDate":"x","version":"2.0","format":"PDF_EXPORT"}`,
		},
		{
			"products no es secuencia",
			`{"exportDate":"x","format":"PDF_EXPORT","products":{"id":"a"}}`,
		},
		{
			"producto sin campo requerido",
			`{"exportDate":"x","format":"PDF_EXPORT","products":[{"id":"a","name":"b","code":"c","price":1,"category":"otros"}]}`,
		},
		{
			"marcador de formato incorrecto",
			`{"exportDate":"x","format":"CSV_EXPORT","products":[]}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := transport.ParsePayload(tc.text)
			assert.ErrorIs(t, err, domain.ErrSchema)
		})
	}
}

func TestParsePayload_CoercionNumerica(t *testing.T) {
	// Numéricos en cadena tras ida y vuelta por contenedores con pérdida de tipos.
	text := `{"exportDate":"2026-08-28T00:00:00Z","version":"2.0","format":"PDF_EXPORT",` +
		`"totalProducts":1,"products":[{"id":"a","name":"Widget","code":"PRD1",` +
		`"price":"9.99","quantity":"10","category":"otros"}]}`

	state, err := transport.ParsePayload(text)
	require.NoError(t, err)
	require.Len(t, state.Products, 1)
	assert.True(t, state.Products[0].Price.Equal(decimal.NewFromFloat(9.99)))
	assert.Equal(t, 10, state.Products[0].Quantity)
}

func TestParsePayload_HistorialAusenteEsVacio(t *testing.T) {
	text := `{"exportDate":"x","version":"2.0","format":"PDF_EXPORT","totalProducts":0,"products":[]}`
	state, err := transport.ParsePayload(text)
	require.NoError(t, err)
	assert.NotNil(t, state.History)
	assert.Empty(t, state.History)
}
