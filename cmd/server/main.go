package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/restaurant-app/backend/internal/config"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/handlers"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/money"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/repository"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/service"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/session"
	"github.com/Lixing-Zhang/restaurant-app/backend/internal/submission"
	"github.com/Lixing-Zhang/restaurant-app/backend/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
)

// handoff delivers both orders and reservations
type handoff interface {
	service.OrderSubmitter
	service.ReservationSubmitter
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting restaurant api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
		"table_source", cfg.Tables.Source,
		"submission_mode", cfg.Submission.Mode,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	formatter, err := money.NewFormatter(cfg.Restaurant.CurrencyLocale)
	if err != nil {
		return err
	}
	deliveryFee, err := cfg.DeliveryFee()
	if err != nil {
		return err
	}

	// Catalog and default floor plan
	seed, err := repository.LoadSeedFile(cfg.Restaurant.SeedFile)
	if err != nil {
		return err
	}
	log.Info("seed loaded",
		"file", cfg.Restaurant.SeedFile,
		"products", len(seed.Products),
		"tables", len(seed.Tables),
	)

	productRepo := repository.NewInMemoryProductRepository(seed.Products, seed.Categories)
	productService := service.NewProductService(productRepo)

	checks := make(map[string]handlers.CheckFunc)

	tables, closeTables, err := newTableSource(ctx, cfg.Tables, seed, checks, log)
	if err != nil {
		return err
	}
	defer closeTables()

	submitter, closeSubmitter, err := newSubmitter(cfg.Submission, log)
	if err != nil {
		return err
	}
	defer closeSubmitter()

	submitTimeout := cfg.Submission.SubmitTimeout()
	sessionTTL := time.Duration(cfg.SessionTTL) * time.Minute

	store := session.NewStore(session.Factory{
		NewCart: func() *service.Cart {
			return service.NewCart(deliveryFee, submitter,
				service.WithCartLogger(log),
				service.WithCheckoutTimeout(submitTimeout),
			)
		},
		NewSelector: func() *service.ReservationSelector {
			return service.NewReservationSelector(tables, submitter,
				service.WithReservationLogger(log),
				service.WithSubmitTimeout(submitTimeout),
			)
		},
	}, sessionTTL, log)
	go store.Run(ctx, time.Minute)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log, checks)
	productHandler := handlers.NewProductHandler(productService, formatter, log)
	sessionHandler := handlers.NewSessionHandler(store, log)
	cartHandler := handlers.NewCartHandler(productService, formatter, log)
	reservationHandler := handlers.NewReservationHandler(log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.SessionHeader},
		ExposedHeaders:   []string{middleware.SessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Menu endpoints
		r.Get("/product", productHandler.ListProducts)
		r.Get("/product/{productId}", productHandler.GetProduct)
		r.Get("/category", productHandler.ListCategories)

		r.Post("/session", sessionHandler.CreateSession)

		// Staff endpoints; the postgres floor plan is read-only
		if writer, ok := tables.(handlers.TableStatusWriter); ok {
			adminHandler := handlers.NewAdminHandler(writer, log)
			r.Put("/admin/tables/{tableId}/status", adminHandler.SetTableStatus)
		}

		// Session scoped endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(store))

			r.Delete("/session", sessionHandler.DeleteSession)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{itemId}", cartHandler.UpdateItem)
				r.Delete("/items/{itemId}", cartHandler.RemoveItem)
				r.Post("/items/{itemId}/increment", cartHandler.IncrementItem)
				r.Post("/items/{itemId}/decrement", cartHandler.DecrementItem)
				r.Put("/payment", cartHandler.SetPayment)
				r.Post("/checkout", cartHandler.Checkout)
			})

			r.Route("/reservation", func(r chi.Router) {
				r.Get("/", reservationHandler.GetReservation)
				r.Put("/table", reservationHandler.SelectTable)
				r.Delete("/table", reservationHandler.ClearTable)
				r.Patch("/form", reservationHandler.UpdateForm)
				r.Post("/submit", reservationHandler.Submit)
			})
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newTableSource builds the availability source named by cfg and registers
// its health check. The returned func releases its connections.
func newTableSource(ctx context.Context, cfg config.TablesConfig, seed *repository.Seed, checks map[string]handlers.CheckFunc, log *slog.Logger) (service.TableSource, func(), error) {
	switch cfg.Source {
	case config.TableSourceRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		repo := repository.NewRedisTableRepository(client, cfg.RedisKey)
		if err := repo.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		seeded, err := repo.SeedIfEmpty(ctx, seed.Tables)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		if seeded {
			log.Info("redis floor plan seeded", "key", cfg.RedisKey, "tables", len(seed.Tables))
		}

		checks["redis"] = repo.Ping
		return repo, func() { client.Close() }, nil

	case config.TableSourcePostgres:
		repo, err := repository.NewPostgresTableRepository(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		checks["postgres"] = repo.Ping
		return repo, repo.Close, nil

	default:
		return repository.NewInMemoryTableRepository(seed.Tables), func() {}, nil
	}
}

// newSubmitter builds the order and reservation submitter named by cfg
func newSubmitter(cfg config.SubmissionConfig, log *slog.Logger) (handoff, func(), error) {
	switch cfg.Mode {
	case config.SubmissionHTTP:
		client := submission.NewHTTPClient(submission.HTTPConfig{
			OrderURL:       cfg.OrderURL,
			ReservationURL: cfg.ReservationURL,
			Timeout:        cfg.AttemptTimeout(),
			MaxRetries:     uint(cfg.MaxRetries),
		}, log)
		return client, func() {}, nil

	case config.SubmissionAMQP:
		conn, err := submission.Dial(cfg.AMQPURL, log)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := conn.Close(); err != nil {
				log.Warn("failed to close rabbitmq connection", "error", err)
			}
		}
		return submission.NewAMQPSubmitter(conn, log), closer, nil

	default:
		return submission.NewLogSubmitter(log), func() {}, nil
	}
}
