package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"sporeless-reporting/internal/auth"
	"sporeless-reporting/internal/catalog"
	"sporeless-reporting/internal/config"
	"sporeless-reporting/internal/engine"
	"sporeless-reporting/internal/instrument"
	"sporeless-reporting/internal/store"
)

func main() {
	ctx := context.Background()

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Config loaded (port: %d, db: %s:%d/%s, mode: %s, strategy: %s)",
		cfg.Server.Port, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name,
		cfg.Reporting.Mode, cfg.Reporting.Strategy)

	// 2. Connect to database
	db, err := store.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// 3. Data source catalog
	cat := catalog.Default()
	log.Printf("Catalog ready (%d sources)", len(cat.Sources()))

	// 4. Execution history, resolver, executor
	history := instrument.NewHistory(cfg.Reporting.HistorySize)
	resolver := engine.NewResolver(db)
	executor := engine.NewExecutor(db, cat, history, cfg.Reporting)

	// 5. Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))

	// 6. Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// 7. Report routes (auth required)
	authMW := auth.Middleware(cfg.JWTSecret)
	handler := engine.NewHandler(executor, resolver, cat)
	engine.RegisterRoutes(app, handler, authMW)

	// 8. Start server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting server on %s", addr)
	log.Fatal(app.Listen(addr))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}

	var appErr *engine.AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(engine.ErrorResponse{Error: appErr})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(code).JSON(engine.ErrorResponse{
		Error: &engine.AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
