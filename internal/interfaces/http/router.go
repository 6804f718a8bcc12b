package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/inventario-local/internal/application/inventory"
	"github.com/tu-usuario/inventario-local/internal/application/transport"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	InventoryUC *inventory.UseCase
	TransportUC *transport.UseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	products.Post("/", inventoryHandler.Create)
	products.Get("/", inventoryHandler.List)
	products.Get("/stats", inventoryHandler.Stats)
	products.Put("/:id/price", inventoryHandler.EditPrice)
	products.Post("/:id/quantity", inventoryHandler.AdjustQuantity)

	// Eliminación en dos fases
	products.Delete("/:id", inventoryHandler.StageDelete)
	products.Post("/delete/confirm", inventoryHandler.ConfirmDelete)
	products.Post("/delete/cancel", inventoryHandler.CancelDelete)

	// Reducciones con motivo
	reductions := api.Group("/reductions")
	reductions.Post("/commit", inventoryHandler.CommitReduction)
	reductions.Post("/cancel", inventoryHandler.CancelReduction)
	reductions.Get("/history", inventoryHandler.History)

	// Persistencia y transporte
	inv := api.Group("/inventory")
	transportHandler := NewTransportHandler(deps.TransportUC)
	inv.Post("/save", inventoryHandler.Save)
	inv.Get("/export", transportHandler.Export)
	inv.Post("/import", transportHandler.Import)
}
