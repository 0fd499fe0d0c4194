// @title                       Categorías API
// @version                     1.0
// @description                 Árbol de categorías con path materializado.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token>
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/jhoicas/categorias-api/docs"
	appcategory "github.com/jhoicas/categorias-api/internal/application/category"
	infracache "github.com/jhoicas/categorias-api/internal/infrastructure/cache"
	"github.com/jhoicas/categorias-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/categorias-api/internal/infrastructure/pdf"
	"github.com/jhoicas/categorias-api/internal/infrastructure/store"
	"github.com/jhoicas/categorias-api/internal/infrastructure/xmlexport"
	httpRouter "github.com/jhoicas/categorias-api/internal/interfaces/http"
	"github.com/jhoicas/categorias-api/pkg/config"
	"github.com/jhoicas/categorias-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	applied, err := backend.Migrate(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}
	if len(applied) > 0 {
		log.Info().Strs("aplicadas", applied).Msg("migraciones aplicadas")
	}

	treeMetrics := metrics.NewTreeMetrics()
	opts := []appcategory.Option{
		appcategory.WithLogger(log),
		appcategory.WithObserver(treeMetrics),
		appcategory.WithExporters(xmlexport.NewTreeExporter(), infrapdf.NewTreeReportGenerator(cfg.App.Name)),
	}

	// Caché del árbol: opcional, sin REDIS_ADDR se lee siempre del almacenamiento.
	if cfg.Redis.Enabled() {
		redisClient, err := infracache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, caché del árbol deshabilitada")
		} else {
			defer redisClient.Close()
			opts = append(opts, appcategory.WithCache(
				infracache.NewRedisTreeCache(redisClient, cfg.App.Name+":tree", cfg.Redis.TTL()),
			))
		}
	}

	categoryUC := appcategory.NewUseCase(backend.Repo, backend.Tx, opts...)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Categorías API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": backend.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC: categoryUC,
		Logger:     log,
		Metrics:    treeMetrics.Handler(),
		JWTSecret:  cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
