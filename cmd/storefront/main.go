package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazaarly/storefront/internal/api/handlers"
	"github.com/bazaarly/storefront/internal/api/middleware"
	"github.com/bazaarly/storefront/internal/cache"
	"github.com/bazaarly/storefront/internal/config"
	"github.com/bazaarly/storefront/internal/health"
	"github.com/bazaarly/storefront/internal/metrics"
	"github.com/bazaarly/storefront/internal/models"
	repository "github.com/bazaarly/storefront/internal/repositories"
	service "github.com/bazaarly/storefront/internal/services"
	"github.com/bazaarly/storefront/pkg/s3"
	"github.com/joho/godotenv"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// .env is optional; real deployments use the environment directly
	_ = godotenv.Load()

	// Load config
	cfg := config.MustLoad()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	s3Client, err := s3.NewClient(context.Background(), cfg.S3)
	if err != nil {
		slog.Error("❌ Error initializing object storage", "error", err.Error())
		os.Exit(1)
	}

	jwtKey := []byte(cfg.Security.JWTKey)

	cartStore := repository.NewCartStore(redisClient)
	productCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	userService := service.NewUserService(repos.User, cfg.Security, logger)
	cartService := service.NewCartService(cartStore)
	productService := service.NewProductService(repos.Product, productCache, logger)
	catalogService := service.NewCatalogService(repos.Product)
	uploadService := service.NewBulkUploadService(repos.Product, logger)

	// identity changes drive the cart ownership invariant
	userService.OnIdentityChange(func(ctx context.Context, event models.IdentityEvent) {
		if err := cartService.HandleIdentityChange(ctx, event); err != nil {
			slog.Warn("cart identity transition failed", slog.String("error", err.Error()))
		}
	})

	userHandler := handlers.NewUserHandler(userService)
	cartHandler := handlers.NewCartHandler(cartService)
	productHandler := handlers.NewProductHandler(productService, catalogService, s3Client)
	uploadHandler := handlers.NewUploadHandler(uploadService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	healthHandler, err := health.NewHealthHandler(cfg)
	if err != nil {
		slog.Error("❌ Error configuring health checks", "error", err.Error())
		os.Exit(1)
	}

	slog.Info("storefront initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	// Setup router
	routerMux := http.NewServeMux()

	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("POST /api/v1/users/logout", authMiddleware.Authenticate(userHandler.Logout()))
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))

	// public catalog
	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListCatalog())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())

	// seller product management
	routerMux.HandleFunc("POST /api/v1/seller/products", authMiddleware.RequireRole(models.RoleSeller, productHandler.CreateProduct()))
	routerMux.HandleFunc("GET /api/v1/seller/products", authMiddleware.RequireRole(models.RoleSeller, productHandler.ListSellerProducts()))
	routerMux.HandleFunc("PUT /api/v1/seller/products/{id}", authMiddleware.RequireRole(models.RoleSeller, productHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/seller/products/{id}", authMiddleware.RequireRole(models.RoleSeller, productHandler.DeleteProduct()))
	routerMux.HandleFunc("POST /api/v1/seller/products/image", authMiddleware.RequireRole(models.RoleSeller, productHandler.UploadImage()))

	// bulk upload pipeline
	routerMux.HandleFunc("POST /api/v1/seller/upload", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.UploadCSV()))
	routerMux.HandleFunc("GET /api/v1/seller/upload/rows", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.ListRows()))
	routerMux.HandleFunc("POST /api/v1/seller/upload/rows/{rowId}/edit", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.BeginEdit()))
	routerMux.HandleFunc("PATCH /api/v1/seller/upload/rows/{rowId}", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.UpdateRow()))
	routerMux.HandleFunc("POST /api/v1/seller/upload/rows/{rowId}/save", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.SaveEdit()))
	routerMux.HandleFunc("POST /api/v1/seller/upload/rows/{rowId}/cancel", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.CancelEdit()))
	routerMux.HandleFunc("DELETE /api/v1/seller/upload/rows/{rowId}", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.DeleteRow()))
	routerMux.HandleFunc("POST /api/v1/seller/upload/reset", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.Reset()))
	routerMux.HandleFunc("POST /api/v1/seller/upload/submit", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.Submit()))
	routerMux.HandleFunc("GET /api/v1/seller/upload/template", authMiddleware.RequireRole(models.RoleSeller, uploadHandler.Template()))

	// cart; auth is optional so the service can answer guests itself
	routerMux.HandleFunc("GET /api/v1/cart", authMiddleware.Optional(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/cart/items", authMiddleware.Optional(cartHandler.AddItem()))
	routerMux.HandleFunc("PUT /api/v1/cart/items", authMiddleware.Optional(cartHandler.UpdateQuantity()))
	routerMux.HandleFunc("DELETE /api/v1/cart/items/{productId}", authMiddleware.Optional(cartHandler.RemoveItem()))
	routerMux.HandleFunc("POST /api/v1/cart/items/{productId}/decrement", authMiddleware.Optional(cartHandler.RemoveOne()))
	routerMux.HandleFunc("DELETE /api/v1/cart", authMiddleware.Optional(cartHandler.ClearCart()))

	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = middleware.Logging(handler)
	handler = metrics.Middleware(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
