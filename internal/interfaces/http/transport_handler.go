package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventario-local/internal/application/dto"
	"github.com/tu-usuario/inventario-local/internal/application/transport"
)

// TransportHandler exportación e importación del estado completo.
type TransportHandler struct {
	uc *transport.UseCase
}

// NewTransportHandler construye el handler.
func NewTransportHandler(uc *transport.UseCase) *TransportHandler {
	return &TransportHandler{uc: uc}
}

// Export godoc
// @Summary      Exportar el inventario como documento PDF transportable
// @Tags         transport
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/export [get]
func (h *TransportHandler) Export(c *fiber.Ctx) error {
	out, err := h.uc.Export(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+out.FileName+`"`)
	return c.Send(out.Bytes)
}

// Import godoc
// @Summary      Importar un documento de exportación (reemplazo total)
// @Description  Sin confirm=1 solo decodifica y devuelve la vista previa;
// @Description  con confirm=1 reemplaza catálogo e historial al completo.
// @Tags         transport
// @Accept       application/pdf
// @Produce      json
// @Param        confirm  query  bool  false  "Confirmar el reemplazo"
// @Success      200  {object}  dto.ImportResult
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/inventory/import [post]
func (h *TransportHandler) Import(c *fiber.Ctx) error {
	raw := c.Body()
	if len(raw) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "se esperaba el documento PDF en el cuerpo"})
	}

	if !c.QueryBool("confirm", false) {
		_, preview, err := h.uc.Decode(raw)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(preview)
	}

	out, err := h.uc.Import(c.Context(), raw)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
