package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventario-local/internal/application/dto"
	"github.com/tu-usuario/inventario-local/internal/application/inventory"
)

// InventoryHandler adapta las intenciones del usuario a llamadas tipadas
// sobre el controlador de inventario.
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Create godoc
// @Summary      Agregar producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AddProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.AddProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AddProduct(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar productos (búsqueda por nombre/código y categoría)
// @Tags         products
// @Produce      json
// @Param        search    query  string  false  "Subcadena de nombre o código"
// @Param        category  query  string  false  "Categoría exacta"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	filter := dto.ProductFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
	}
	return c.JSON(h.uc.ListProducts(filter))
}

// Stats godoc
// @Summary      Estadísticas del catálogo
// @Tags         products
// @Produce      json
// @Success      200  {object}  dto.StatsResponse
// @Router       /api/products/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.uc.Stats())
}

// EditPrice godoc
// @Summary      Cambiar precio de un producto
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.EditPriceRequest  true  "Nuevo precio"
// @Success      200   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/price [put]
func (h *InventoryHandler) EditPrice(c *fiber.Ctx) error {
	var in dto.EditPriceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.EditPrice(c.Params("id"), in.NewPrice)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AdjustQuantity godoc
// @Summary      Ajustar cantidad (delta negativo inicia reducción pendiente)
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustQuantityRequest  true  "Delta"
// @Success      200   {object}  dto.AdjustResult
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/quantity [post]
func (h *InventoryHandler) AdjustQuantity(c *fiber.Ctx) error {
	var in dto.AdjustQuantityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.AdjustQuantity(c.Params("id"), in.Delta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// StageDelete marca un producto para eliminar; la eliminación solo ocurre al
// confirmar (dos fases, sin destrucción de un solo clic).
func (h *InventoryHandler) StageDelete(c *fiber.Ctx) error {
	out, err := h.uc.StageDelete(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConfirmDelete elimina el producto marcado.
func (h *InventoryHandler) ConfirmDelete(c *fiber.Ctx) error {
	out, err := h.uc.ConfirmDelete()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CancelDelete descarta la eliminación pendiente.
func (h *InventoryHandler) CancelDelete(c *fiber.Ctx) error {
	h.uc.CancelDelete()
	return c.SendStatus(fiber.StatusNoContent)
}

// CommitReduction godoc
// @Summary      Confirmar la reducción pendiente con su motivo
// @Tags         reductions
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CommitReductionRequest  true  "Motivo y notas"
// @Success      200   {object}  dto.ReductionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reductions/commit [post]
func (h *InventoryHandler) CommitReduction(c *fiber.Ctx) error {
	var in dto.CommitReductionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.CommitReduction(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CancelReduction descarta la reducción pendiente.
func (h *InventoryHandler) CancelReduction(c *fiber.Ctx) error {
	h.uc.CancelReduction()
	return c.SendStatus(fiber.StatusNoContent)
}

// History devuelve el historial de reducciones, más recientes primero.
func (h *InventoryHandler) History(c *fiber.Ctx) error {
	return c.JSON(h.uc.ReductionHistory())
}

// Save persiste ambas colecciones como unidad y limpia la bandera de cambios.
func (h *InventoryHandler) Save(c *fiber.Ctx) error {
	if err := h.uc.Save(c.Context()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"saved": true})
}
