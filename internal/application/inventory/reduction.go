package inventory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tu-usuario/inventario-local/internal/application/dto"
	"github.com/tu-usuario/inventario-local/internal/domain"
	"github.com/tu-usuario/inventario-local/internal/domain/entity"
)

// Máquina de estados de la reducción pendiente:
//
//	Idle → Staged(producto, cantidad) → {Committed | Cancelled} → Idle
//
// Solo puede existir una reducción pendiente a la vez. Precondición del
// conductor de eventos de un solo hilo: no se inicia una nueva mientras hay
// otra en curso; si ocurre, la nueva sustituye a la anterior.
type pendingReduction struct {
	productID string
	amount    int
}

// PendingReduction reducción pendiente actual, o nil si no hay ninguna.
func (uc *UseCase) PendingReduction() *dto.PendingReduction {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.pendingReduction == nil {
		return nil
	}
	pending := &dto.PendingReduction{
		ProductID: uc.pendingReduction.productID,
		Amount:    uc.pendingReduction.amount,
	}
	if p := uc.findByID(pending.ProductID); p != nil {
		pending.ProductName = p.Name
	}
	return pending
}

// CommitReduction confirma la reducción pendiente: agrega un asiento
// inmutable al historial con la instantánea del producto y descuenta la
// cantidad. Es la única operación que escribe en el historial.
func (uc *UseCase) CommitReduction(in dto.CommitReductionRequest) (*dto.ReductionResponse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if uc.pendingReduction == nil {
		return nil, fmt.Errorf("%w: no hay reducción pendiente", domain.ErrNotFound)
	}
	if in.ReasonCode == "" {
		return nil, fmt.Errorf("%w: selecciona un motivo para la reducción", domain.ErrValidation)
	}
	if in.ReasonCode == entity.ReasonOther && strings.TrimSpace(in.CustomReason) == "" {
		return nil, fmt.Errorf("%w: especifica el motivo personalizado", domain.ErrValidation)
	}

	pending := uc.pendingReduction
	product := uc.findByID(pending.productID)
	if product == nil {
		uc.pendingReduction = nil
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, pending.productID)
	}

	now := time.Now()
	record := entity.ReductionRecord{
		ID:               uc.idgen.NewID(),
		ProductID:        product.ID,
		ProductName:      product.Name,
		ProductCode:      product.Code,
		QuantityReduced:  pending.amount,
		PreviousQuantity: product.Quantity,
		NewQuantity:      product.Quantity - pending.amount,
		Reason:           entity.ResolveReason(in.ReasonCode, strings.TrimSpace(in.CustomReason)),
		ReasonCode:       in.ReasonCode,
		Notes:            strings.TrimSpace(in.Notes),
		Date:             now,
		Timestamp:        now.UnixMilli(),
	}
	uc.history = append(uc.history, record)
	product.Quantity = record.NewQuantity
	uc.dirty = true
	uc.pendingReduction = nil
	return toReductionResponse(record), nil
}

// CancelReduction descarta la reducción pendiente sin efectos.
func (uc *UseCase) CancelReduction() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.pendingReduction = nil
}

// ReductionHistory instantánea del historial, más recientes primero.
func (uc *UseCase) ReductionHistory() []dto.ReductionResponse {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]dto.ReductionResponse, len(uc.history))
	for i, r := range uc.history {
		out[i] = *toReductionResponse(r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out
}

func toReductionResponse(r entity.ReductionRecord) *dto.ReductionResponse {
	return &dto.ReductionResponse{
		ID:               r.ID,
		ProductID:        r.ProductID,
		ProductName:      r.ProductName,
		ProductCode:      r.ProductCode,
		QuantityReduced:  r.QuantityReduced,
		PreviousQuantity: r.PreviousQuantity,
		NewQuantity:      r.NewQuantity,
		Reason:           r.Reason,
		ReasonCode:       r.ReasonCode,
		Notes:            r.Notes,
		Date:             r.Date,
		Timestamp:        r.Timestamp,
	}
}
