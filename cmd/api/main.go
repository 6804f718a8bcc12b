package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tu-usuario/inventario-local/internal/application/inventory"
	"github.com/tu-usuario/inventario-local/internal/application/transport"
	"github.com/tu-usuario/inventario-local/internal/domain/identity"
	infrapdf "github.com/tu-usuario/inventario-local/internal/infrastructure/pdf"
	"github.com/tu-usuario/inventario-local/internal/infrastructure/prompt"
	"github.com/tu-usuario/inventario-local/internal/infrastructure/storage"
	httpRouter "github.com/tu-usuario/inventario-local/internal/interfaces/http"
	"github.com/tu-usuario/inventario-local/pkg/config"
	"github.com/tu-usuario/inventario-local/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	db, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento local")
	}
	store, err := storage.NewGormBlobStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("preparar almacén de blobs")
	}

	inventoryUC := inventory.NewUseCase(store, identity.New())
	if err := inventoryUC.Load(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("cargar estado del inventario")
	}
	stats := inventoryUC.Stats()
	log.Info().
		Int("productos", stats.ProductCount).
		Int("unidades", stats.TotalUnits).
		Msg("estado cargado")

	// La confirmación de importación ocurre del lado del cliente HTTP
	// (confirm=1), por eso el prompt inyectado responde siempre sí.
	transportUC := transport.NewUseCase(
		inventoryUC,
		infrapdf.NewMarotoDocumentWriter(),
		infrapdf.NewPdfcpuDocumentReader(),
		prompt.Auto{Answer: true},
		cfg.Export.FilePrefix,
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		BodyLimit:    32 * 1024 * 1024, // documentos PDF de importación
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "dirty": inventoryUC.Dirty()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		InventoryUC: inventoryUC,
		TransportUC: transportUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	if inventoryUC.Dirty() {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := inventoryUC.Save(saveCtx); err != nil {
			log.Error().Err(err).Msg("guardar estado al apagar")
		} else {
			log.Info().Msg("estado guardado")
		}
		cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
