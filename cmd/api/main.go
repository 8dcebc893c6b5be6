package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"

	"github.com/QuestionAndAnswer/vending-api/internal/adapter/handler"
	"github.com/QuestionAndAnswer/vending-api/internal/adapter/memstore"
	"github.com/QuestionAndAnswer/vending-api/internal/adapter/middleware"
	"github.com/QuestionAndAnswer/vending-api/internal/adapter/storage"
	"github.com/QuestionAndAnswer/vending-api/internal/core/config"
	"github.com/QuestionAndAnswer/vending-api/internal/core/domain"
	"github.com/QuestionAndAnswer/vending-api/internal/core/session"
	"github.com/QuestionAndAnswer/vending-api/internal/core/vending"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Pick the store: Postgres when configured, in-memory otherwise
	var store vending.Store
	var pool *pgxpool.Pool
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, running with in-memory store")
		store = memstore.New()
	} else {
		var err error
		pool, err = storage.ConnectDB(cfg.DatabaseURL)
		if err != nil {
			slog.Error("❌ Database connection failed", "error", err)
			os.Exit(1)
		}
		if err := storage.ApplyMigrations(context.Background(), pool, "migrations"); err != nil {
			slog.Error("❌ Migrations failed", "error", err)
			os.Exit(1)
		}
		store = storage.NewStore(pool)
	}

	// 4. Setup Service, Sessions & Handlers
	service := vending.NewService(store)
	sessions := session.NewStore(cfg.SessionMaxAge)

	stopJanitor := make(chan struct{})
	sessions.StartJanitor(time.Minute, stopJanitor)

	authHandler := &handler.AuthHandler{
		Service:  service,
		Sessions: sessions,
		MaxAge:   cfg.SessionMaxAge,
		Secure:   cfg.Env == "production",
	}
	userHandler := &handler.UserHandler{Service: service}
	productHandler := &handler.ProductHandler{Service: service}
	actionsHandler := &handler.ActionsHandler{Service: service}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(helmet.New())
	app.Use(cors.New())

	authn := middleware.Protected(sessions)
	buyerOnly := middleware.RequireRole(domain.RoleBuyer)
	sellerOnly := middleware.RequireRole(domain.RoleSeller)

	// 6. Routes
	// Public
	app.Post("/login", authHandler.Login)
	app.Get("/logout", authHandler.Logout)
	app.Get("/whoami", authHandler.WhoAmI)
	app.Post("/users", userHandler.Register)
	app.Get("/users", userHandler.List)
	app.Get("/products", productHandler.List)

	// Buyers
	app.Post("/deposit", authn, buyerOnly, actionsHandler.Deposit)
	app.Post("/reset", authn, buyerOnly, actionsHandler.Reset)
	app.Post("/buy", authn, buyerOnly, actionsHandler.Buy)

	// Sellers
	app.Post("/products", authn, sellerOnly, productHandler.Create)
	app.Put("/products/:id", authn, sellerOnly, productHandler.Update)
	app.Delete("/products/:id", authn, sellerOnly, productHandler.Delete)

	// Run server in a separate goroutine so shutdown can be coordinated
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	<-stop
	slog.Info("🛑 Shutting down server...")

	close(stopJanitor)

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	if pool != nil {
		pool.Close()
		slog.Info("✅ Database connection closed")
	}

	slog.Info("👋 Server exited successfully")
}
