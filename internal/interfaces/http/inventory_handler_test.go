package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/inventario-local/internal/application/dto"
	"github.com/tu-usuario/inventario-local/internal/application/inventory"
	"github.com/tu-usuario/inventario-local/internal/application/transport"
	"github.com/tu-usuario/inventario-local/internal/domain/entity"
	"github.com/tu-usuario/inventario-local/internal/domain/identity"
	"github.com/tu-usuario/inventario-local/internal/infrastructure/prompt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Arnés: app Fiber con dobles de infraestructura
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	data map[string][]byte
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	blob, ok := s.data[key]
	return blob, ok, nil
}

func (s *memStore) Put(_ context.Context, entries map[string][]byte) error {
	for k, v := range entries {
		s.data[k] = v
	}
	return nil
}

// stubWriter devuelve el payload oculto rodeado de bytes de relleno.
type stubWriter struct{}

func (stubWriter) WriteExport(_ context.Context, doc transport.ExportDocument) ([]byte, error) {
	return []byte("%STUB\x00" + doc.HiddenPayload + "\x00%%EOF"), nil
}

// stubReader acepta cualquier cuerpo como documento de una página.
type stubReader struct{}

func (stubReader) Open(raw []byte) (*transport.Document, error) {
	return &transport.Document{Pages: 1, Raw: raw}, nil
}

type harness struct {
	app   *fiber.App
	inv   *inventory.UseCase
	store *memStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := &memStore{data: map[string][]byte{}}
	inv := inventory.NewUseCase(store, identity.New())
	tr := transport.NewUseCase(inv, stubWriter{}, stubReader{}, prompt.Auto{Answer: true}, "inventario_export")

	app := fiber.New()
	Router(app, RouterDeps{InventoryUC: inv, TransportUC: tr})
	return &harness{app: app, inv: inv, store: store}
}

func (h *harness) do(t *testing.T, method, target string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	contentType := ""
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
		contentType = "application/pdf"
	default:
		blob, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(blob)
		contentType = "application/json"
	}

	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func (h *harness) createProduct(t *testing.T, name string, price float64, quantity int) dto.ProductResponse {
	t.Helper()
	status, raw := h.do(t, "POST", "/api/products/", fiber.Map{
		"name": name, "price": price, "quantity": quantity, "category": "otros",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var out dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateProduct(t *testing.T) {
	h := newHarness(t)

	p := h.createProduct(t, "Widget", 9.99, 10)
	assert.NotEmpty(t, p.ID)
	assert.Regexp(t, `^PRD\d{9}$`, p.Code)
	assert.Equal(t, 10, p.Quantity)

	t.Run("validación de dominio", func(t *testing.T) {
		status, raw := h.do(t, "POST", "/api/products/", fiber.Map{
			"name": "  ", "price": 1, "quantity": 1, "category": "otros",
		})
		assert.Equal(t, fiber.StatusBadRequest, status)
		var e dto.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &e))
		assert.Equal(t, "VALIDATION", e.Code)
	})

	t.Run("cuerpo ilegible", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/products/", strings.NewReader("{no es json"))
		req.Header.Set("Content-Type", "application/json")
		resp, err := h.app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestListProducts_Filtros(t *testing.T) {
	h := newHarness(t)
	h.createProduct(t, "Widget", 9.99, 10)
	h.createProduct(t, "Escoba", 4.50, 3)

	status, raw := h.do(t, "GET", "/api/products/?search=wid", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Widget", list[0].Name)
}

func TestStats(t *testing.T) {
	h := newHarness(t)
	h.createProduct(t, "Widget", 9.99, 10)
	h.createProduct(t, "Escoba", 4.50, 3)

	status, raw := h.do(t, "GET", "/api/products/stats", nil)
	require.Equal(t, fiber.StatusOK, status)
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.Equal(t, dto.StatsResponse{ProductCount: 2, TotalUnits: 13}, stats)
}

func TestEditPrice(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t, "Widget", 9.99, 10)

	status, raw := h.do(t, "PUT", "/api/products/"+p.ID+"/price", fiber.Map{"newPrice": 12.50})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var out dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "12.5", out.Price.String())

	t.Run("producto inexistente", func(t *testing.T) {
		status, raw := h.do(t, "PUT", "/api/products/no-existe/price", fiber.Map{"newPrice": 1})
		assert.Equal(t, fiber.StatusNotFound, status)
		var e dto.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &e))
		assert.Equal(t, "NOT_FOUND", e.Code)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Reducciones y eliminación en dos fases
// ──────────────────────────────────────────────────────────────────────────────

func TestReductionFlow(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t, "Widget", 9.99, 10)

	status, raw := h.do(t, "POST", "/api/products/"+p.ID+"/quantity", fiber.Map{"delta": -3})
	require.Equal(t, fiber.StatusOK, status)
	var adjust dto.AdjustResult
	require.NoError(t, json.Unmarshal(raw, &adjust))
	require.Equal(t, dto.AdjustStaged, adjust.Outcome)
	require.NotNil(t, adjust.Pending)
	assert.Equal(t, 3, adjust.Pending.Amount)

	t.Run("otro sin texto se rechaza", func(t *testing.T) {
		status, raw := h.do(t, "POST", "/api/reductions/commit", fiber.Map{"reasonCode": entity.ReasonOther})
		assert.Equal(t, fiber.StatusBadRequest, status)
		var e dto.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &e))
		assert.Equal(t, "VALIDATION", e.Code)
	})

	status, raw = h.do(t, "POST", "/api/reductions/commit", fiber.Map{
		"reasonCode": entity.ReasonSold, "notes": "venta de mostrador",
	})
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var record dto.ReductionResponse
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, 10, record.PreviousQuantity)
	assert.Equal(t, 7, record.NewQuantity)

	status, raw = h.do(t, "GET", "/api/reductions/history", nil)
	require.Equal(t, fiber.StatusOK, status)
	var history []dto.ReductionResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	assert.Len(t, history, 1)
}

func TestDelete_DosFases(t *testing.T) {
	h := newHarness(t)
	p := h.createProduct(t, "Efímero", 2, 5)

	status, _ := h.do(t, "DELETE", "/api/products/"+p.ID, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, _ = h.do(t, "POST", "/api/products/delete/confirm", nil)
	require.Equal(t, fiber.StatusOK, status)

	status, raw := h.do(t, "GET", "/api/products/", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list []dto.ProductResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Empty(t, list)

	t.Run("confirmar sin marca previa", func(t *testing.T) {
		status, _ := h.do(t, "POST", "/api/products/delete/confirm", nil)
		assert.Equal(t, fiber.StatusNotFound, status)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Persistencia y transporte
// ──────────────────────────────────────────────────────────────────────────────

func TestSave(t *testing.T) {
	h := newHarness(t)
	h.createProduct(t, "Widget", 9.99, 10)
	require.True(t, h.inv.Dirty())

	status, raw := h.do(t, "POST", "/api/inventory/save", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	assert.False(t, h.inv.Dirty())
	assert.Contains(t, h.store.data, inventory.StorageKeyProducts)
	assert.Contains(t, h.store.data, inventory.StorageKeyHistory)
}

func TestExportRoute(t *testing.T) {
	h := newHarness(t)

	t.Run("catálogo vacío", func(t *testing.T) {
		status, _ := h.do(t, "GET", "/api/inventory/export", nil)
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	h.createProduct(t, "Widget", 9.99, 10)

	req := httptest.NewRequest("GET", "/api/inventory/export", nil)
	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	disposition := resp.Header.Get(fiber.HeaderContentDisposition)
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, fmt.Sprintf("inventario_export_%s.pdf", time.Now().Format("2006-01-02")))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), transport.SentinelStart)
}

func TestImportRoute(t *testing.T) {
	h := newHarness(t)
	h.createProduct(t, "Condenado", 1, 99)

	// Documento de importación: el payload embebido en bytes arbitrarios.
	payload := transport.BuildPayload([]entity.Product{{
		ID: "imp-1", Name: "Importado", Code: "PRD000000001",
		Price: decimalFrom(t, "5.25"), Quantity: 4, Category: "hogar",
	}}, nil, time.Now())
	hidden, err := transport.EncodePayload(payload)
	require.NoError(t, err)
	body := []byte("%STUB\x00" + hidden + "\x00%%EOF")

	t.Run("cuerpo vacío", func(t *testing.T) {
		status, _ := h.do(t, "POST", "/api/inventory/import", []byte{})
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("sin confirmar solo hay vista previa", func(t *testing.T) {
		status, raw := h.do(t, "POST", "/api/inventory/import", body)
		require.Equal(t, fiber.StatusOK, status, string(raw))
		var preview dto.ImportPreview
		require.NoError(t, json.Unmarshal(raw, &preview))
		assert.Equal(t, 1, preview.TotalProducts)

		list := h.inv.ListProducts(dto.ProductFilter{})
		require.Len(t, list, 1)
		assert.Equal(t, "Condenado", list[0].Name, "la vista previa no toca el estado")
	})

	t.Run("con confirm=1 reemplaza el estado", func(t *testing.T) {
		status, raw := h.do(t, "POST", "/api/inventory/import?confirm=1", body)
		require.Equal(t, fiber.StatusOK, status, string(raw))
		var result dto.ImportResult
		require.NoError(t, json.Unmarshal(raw, &result))
		assert.True(t, result.Imported)
		assert.Equal(t, 1, result.ProductCount)

		list := h.inv.ListProducts(dto.ProductFilter{})
		require.Len(t, list, 1)
		assert.Equal(t, "Importado", list[0].Name)
	})

	t.Run("documento sin datos", func(t *testing.T) {
		status, raw := h.do(t, "POST", "/api/inventory/import", []byte("%STUB sin payload %%EOF"))
		assert.Equal(t, fiber.StatusUnprocessableEntity, status)
		var e dto.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &e))
		assert.Equal(t, "FORMAT", e.Code)
	})
}

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
