// Package inventory implementa el controlador de estado del inventario:
// catálogo de productos, historial de reducciones, bandera de cambios sin
// guardar y persistencia durable de ambas colecciones como una unidad.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/inventario-local/internal/application/dto"
	"github.com/tu-usuario/inventario-local/internal/domain"
	"github.com/tu-usuario/inventario-local/internal/domain/entity"
)

// UseCase posee el catálogo y el historial en memoria. Todas las mutaciones
// pasan por aquí. El mutex serializa las peticiones del adaptador HTTP en el
// modelo de eventos de un solo hilo: ninguna mutación se entrelaza a mitad de paso.
type UseCase struct {
	mu    sync.Mutex
	store BlobStore
	idgen IdentityGenerator

	products []*entity.Product
	history  []entity.ReductionRecord
	dirty    bool

	pendingReduction *pendingReduction
	pendingDeleteID  string
}

// NewUseCase construye el controlador con sus colaboradores inyectados.
func NewUseCase(store BlobStore, idgen IdentityGenerator) *UseCase {
	return &UseCase{store: store, idgen: idgen}
}

// AddProduct valida la entrada, genera código único (con reintentos: el
// espacio de códigos es pequeño y la colisión es posible por diseño), asigna
// ID y agrega el producto al final del catálogo.
func (uc *UseCase) AddProduct(in dto.AddProductRequest) (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("%w: el precio debe ser un valor no negativo", domain.ErrValidation)
	}
	if in.Quantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser un valor no negativo", domain.ErrValidation)
	}
	if in.Category == "" {
		return nil, fmt.Errorf("%w: la categoría es obligatoria", domain.ErrValidation)
	}

	var code string
	for {
		code = uc.idgen.NewCode()
		if !uc.codeExists(code) {
			break
		}
	}

	product := &entity.Product{
		ID:        uc.idgen.NewID(),
		Name:      name,
		Code:      code,
		Price:     in.Price,
		Quantity:  in.Quantity,
		Category:  in.Category,
		CreatedAt: time.Now(),
	}
	uc.products = append(uc.products, product)
	uc.dirty = true
	return toProductResponse(product), nil
}

// ListProducts instantánea filtrada del catálogo, en orden de inserción.
// Search compara subcadenas sobre nombre o código sin distinguir mayúsculas;
// Category es coincidencia exacta; ambos filtros se combinan con AND.
func (uc *UseCase) ListProducts(filter dto.ProductFilter) []dto.ProductResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]dto.ProductResponse, 0, len(uc.products))
	for _, p := range uc.products {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Code), search) {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *toProductResponse(p))
	}
	return out
}

// Stats número de productos y unidades totales del catálogo.
func (uc *UseCase) Stats() dto.StatsResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.statsLocked()
}

func (uc *UseCase) statsLocked() dto.StatsResponse {
	total := 0
	for _, p := range uc.products {
		total += p.Quantity
	}
	return dto.StatsResponse{ProductCount: len(uc.products), TotalUnits: total}
}

// EditPrice cambia el precio en sitio. No genera asiento en el historial:
// los cambios de precio no se auditan.
func (uc *UseCase) EditPrice(productID string, newPrice decimal.Decimal) (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	product := uc.findByID(productID)
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if newPrice.IsNegative() {
		return nil, fmt.Errorf("%w: el precio debe ser un valor no negativo", domain.ErrValidation)
	}
	product.Price = newPrice
	uc.dirty = true
	return toProductResponse(product), nil
}

// AdjustQuantity ajusta la cantidad de un producto.
//   - Dejaría la cantidad negativa: se rechaza sin cambio de estado (no es error).
//   - Delta >= 0: se aplica de inmediato, sin asiento en el historial.
//   - Delta < 0 con existencias: no se aplica todavía; queda una reducción
//     pendiente que exige motivo antes de confirmarse (ver reduction.go).
func (uc *UseCase) AdjustQuantity(productID string, delta int) (*dto.AdjustResult, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	product := uc.findByID(productID)
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if product.Quantity+delta < 0 {
		return &dto.AdjustResult{Outcome: dto.AdjustRejected, Product: toProductResponse(product)}, nil
	}
	if delta < 0 && product.Quantity > 0 {
		uc.pendingReduction = &pendingReduction{productID: product.ID, amount: -delta}
		return &dto.AdjustResult{
			Outcome: dto.AdjustStaged,
			Product: toProductResponse(product),
			Pending: &dto.PendingReduction{
				ProductID:   product.ID,
				ProductName: product.Name,
				Amount:      -delta,
			},
		}, nil
	}
	product.Quantity += delta
	uc.dirty = true
	return &dto.AdjustResult{Outcome: dto.AdjustApplied, Product: toProductResponse(product)}, nil
}

// StageDelete marca un producto para eliminación (primera fase; la
// eliminación es destructiva y exige confirmación explícita).
func (uc *UseCase) StageDelete(productID string) (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	product := uc.findByID(productID)
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	uc.pendingDeleteID = product.ID
	return toProductResponse(product), nil
}

// ConfirmDelete elimina el producto marcado (borrado duro, sin lápida).
// Sus asientos previos en el historial se conservan: los campos
// desnormalizados del asiento no dependen del producto.
func (uc *UseCase) ConfirmDelete() (*dto.ProductResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	id := uc.pendingDeleteID
	uc.pendingDeleteID = ""
	if id == "" {
		return nil, fmt.Errorf("%w: no hay eliminación pendiente", domain.ErrNotFound)
	}
	for i, p := range uc.products {
		if p.ID == id {
			uc.products = append(uc.products[:i], uc.products[i+1:]...)
			uc.dirty = true
			return toProductResponse(p), nil
		}
	}
	return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
}

// CancelDelete descarta la eliminación pendiente sin efectos.
func (uc *UseCase) CancelDelete() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.pendingDeleteID = ""
}

// Dirty indica si el estado en memoria difiere de la copia durable.
func (uc *UseCase) Dirty() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.dirty
}

// Save escribe ambas colecciones al almacén durable como una sola unidad
// transaccional y limpia la bandera de cambios. Es la única operación que
// limpia la bandera.
func (uc *UseCase) Save(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	productsBlob, err := json.Marshal(uc.products)
	if err != nil {
		return fmt.Errorf("%w: serializar productos: %s", domain.ErrStorage, err)
	}
	historyBlob, err := json.Marshal(uc.history)
	if err != nil {
		return fmt.Errorf("%w: serializar historial: %s", domain.ErrStorage, err)
	}
	entries := map[string][]byte{
		StorageKeyProducts: productsBlob,
		StorageKeyHistory:  historyBlob,
	}
	if err := uc.store.Put(ctx, entries); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	uc.dirty = false
	return nil
}

// Load carga el estado desde el almacén durable. Claves ausentes equivalen a
// estado vacío; un blob ilegible es error de almacenamiento.
func (uc *UseCase) Load(ctx context.Context) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	products := []*entity.Product{}
	blob, found, err := uc.store.Get(ctx, StorageKeyProducts)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	if found {
		if err := json.Unmarshal(blob, &products); err != nil {
			return fmt.Errorf("%w: productos corruptos: %s", domain.ErrStorage, err)
		}
	}

	history := []entity.ReductionRecord{}
	blob, found, err = uc.store.Get(ctx, StorageKeyHistory)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorage, err)
	}
	if found {
		if err := json.Unmarshal(blob, &history); err != nil {
			return fmt.Errorf("%w: historial corrupto: %s", domain.ErrStorage, err)
		}
	}

	uc.products = products
	uc.history = history
	uc.dirty = false
	return nil
}

// Snapshot copia de ambas colecciones para el códec de transporte.
func (uc *UseCase) Snapshot() ([]entity.Product, []entity.ReductionRecord) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	products := make([]entity.Product, len(uc.products))
	for i, p := range uc.products {
		products[i] = *p
	}
	history := make([]entity.ReductionRecord, len(uc.history))
	copy(history, uc.history)
	return products, history
}

// ReplaceAll reemplaza catálogo e historial al completo (importación).
// No es una fusión: el estado anterior se descarta.
func (uc *UseCase) ReplaceAll(products []entity.Product, history []entity.ReductionRecord) dto.StatsResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.products = make([]*entity.Product, len(products))
	for i := range products {
		p := products[i]
		uc.products[i] = &p
	}
	uc.history = make([]entity.ReductionRecord, len(history))
	copy(uc.history, history)
	uc.pendingReduction = nil
	uc.pendingDeleteID = ""
	uc.dirty = true
	return uc.statsLocked()
}

func (uc *UseCase) findByID(id string) *entity.Product {
	for _, p := range uc.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (uc *UseCase) codeExists(code string) bool {
	for _, p := range uc.products {
		if p.Code == code {
			return true
		}
	}
	return false
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Price:     p.Price,
		Quantity:  p.Quantity,
		Category:  p.Category,
		CreatedAt: p.CreatedAt,
	}
}
