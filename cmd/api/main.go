package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nowstock/nowstock-api/internal/application/movement"
	"github.com/nowstock/nowstock-api/internal/infrastructure/postgres"
	httpRouter "github.com/nowstock/nowstock-api/internal/interfaces/http"
	"github.com/nowstock/nowstock-api/internal/interfaces/rfid"
	"github.com/nowstock/nowstock-api/internal/metrics"
	"github.com/nowstock/nowstock-api/pkg/config"
	"github.com/nowstock/nowstock-api/pkg/logger"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	movementMetrics := metrics.NewMovementMetrics(registry)

	productRepo := postgres.NewProductRepository(pool)
	levelRepo := postgres.NewStockLevelRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	engine := movement.NewEngine(txRunner, productRepo, levelRepo, movementRepo, log, movementMetrics)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	httpRouter.Router(app, httpRouter.RouterDeps{
		Engine:    engine,
		JWTSecret: cfg.JWT.Secret,
	})

	// Listener de lectores RFID: opcional, identidad desde configuración
	if cfg.Scanner.Enabled {
		listener := rfid.NewListener(cfg.Scanner, engine, log)
		go func() {
			if err := listener.Serve(ctx); err != nil {
				log.Error().Err(err).Msg("listener RFID finalizado")
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("apagando aplicación")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown HTTP")
	}
}
