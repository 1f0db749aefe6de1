package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/optica-admin/internal/config"
	authhandler "github.com/jwalitptl/optica-admin/internal/handler/auth"
	discounthandler "github.com/jwalitptl/optica-admin/internal/handler/discount"
	documenthandler "github.com/jwalitptl/optica-admin/internal/handler/document"
	"github.com/jwalitptl/optica-admin/internal/handler/health"
	"github.com/jwalitptl/optica-admin/internal/handler/resource"
	"github.com/jwalitptl/optica-admin/internal/middleware"
	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository/postgres"
	"github.com/jwalitptl/optica-admin/internal/router"
	authservice "github.com/jwalitptl/optica-admin/internal/service/auth"
	"github.com/jwalitptl/optica-admin/internal/service/catalog"
	"github.com/jwalitptl/optica-admin/internal/service/discount"
	"github.com/jwalitptl/optica-admin/internal/service/document"
	"github.com/jwalitptl/optica-admin/internal/service/patient"
	"github.com/jwalitptl/optica-admin/pkg/auth"
	"github.com/jwalitptl/optica-admin/pkg/logger"
	"github.com/jwalitptl/optica-admin/pkg/security"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// bootstrap loads config and opens the database for every subcommand.
func bootstrap(configPath string) (*config.Config, *logger.Logger, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.NewLogger(&cfg.Log)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.NewLogger(&cfg.Log)
	zl := log.Zerolog()
	if cfg.Server.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Server.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
	}

	// Repositories
	base := postgres.NewBaseRepository(db)
	brandRepo := postgres.NewBrandRepository(base)
	categoryRepo := postgres.NewCategoryRepository(base)
	supplierRepo := postgres.NewSupplierRepository(base)
	productRepo := postgres.NewProductRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	discountRepo := postgres.NewDiscountRequestRepository(base)
	userRepo := postgres.NewUserRepository(base)

	// Services
	tokens := auth.NewJWTManager(cfg.JWT)
	brandSvc := catalog.NewBrandService(brandRepo)
	categorySvc := catalog.NewCategoryService(categoryRepo)
	supplierSvc := catalog.NewSupplierService(supplierRepo)
	productSvc := catalog.NewProductService(productRepo)
	patientSvc := patient.NewService(patientRepo)
	discountSvc := discount.NewService(discountRepo)
	authSvc := authservice.NewService(userRepo, security.NewBcryptHasher(0), tokens, zl.With().Str("component", "auth").Logger())
	documentSvc := document.NewService(tokens, document.NewHTTPRenderer(cfg.Renderer), cfg.Server.PublicURL, map[string]document.Loader{
		model.DocumentPatientRecord: func(ctx context.Context, id int64) (interface{}, error) {
			return patientSvc.Get(ctx, id)
		},
		model.DocumentDiscountLetter: func(ctx context.Context, id int64) (interface{}, error) {
			return discountSvc.Get(ctx, id)
		},
	})

	// Handlers
	handlers := router.Handlers{
		Health:    health.NewHandler(db, nil),
		Auth:      authhandler.NewHandler(authSvc),
		Documents: documenthandler.NewHandler(documentSvc),
		Resources: []router.Handler{
			resource.NewHandler[model.Brand, model.BrandInput]("brands", "Brand", brandSvc, postgres.BrandList.Options()),
			resource.NewHandler[model.Category, model.CategoryInput]("categories", "Category", categorySvc, postgres.CategoryList.Options()),
			resource.NewHandler[model.Supplier, model.SupplierInput]("suppliers", "Supplier", supplierSvc, postgres.SupplierList.Options()),
			resource.NewHandler[model.Product, model.ProductInput]("products", "Product", productSvc, postgres.ProductList.Options()),
			resource.NewHandler[model.Patient, model.PatientInput]("patients", "Patient", patientSvc, postgres.PatientList.Options()),
			discounthandler.NewHandler(discountSvc, postgres.DiscountRequestList.Options()),
		},
	}

	routerConfig := router.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     cfg.CORS,
		Production:     cfg.Server.Production,
	}
	if cfg.RateLimit.Enabled {
		routerConfig.RateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
		routerConfig.RateBurst = cfg.RateLimit.Burst
	}
	r := router.NewRouter(middleware.NewAuthMiddleware(tokens), handlers, zl, routerConfig)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited properly")
	return nil
}
