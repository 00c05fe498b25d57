package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/application/usecase"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/inventario-tienda/internal/infrastructure/pdf"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/inventario-tienda/internal/interfaces/http"
	"github.com/jhoicas/inventario-tienda/pkg/config"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
	"github.com/jhoicas/inventario-tienda/pkg/metrics"
)

// txRunner transacciones de inventario y de ventas sobre el mismo almacén.
type txRunner interface {
	inventory.TxRunner
	sales.SalesTxRunner
}

// backend adaptadores del almacén elegido por DB_DRIVER.
type backend struct {
	tx        txRunner
	products  repository.ProductRepository
	stock     repository.StockRepository
	movements repository.InventoryMovementRepository
	sales     repository.SaleRepository
	reports   repository.ReportRepository
	pinger    httpRouter.Pinger
	close     func()
}

func openBackend(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*backend, error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: los datos no sobreviven al reinicio")
		store := memory.NewStore()
		return &backend{
			tx:        store,
			products:  store.Products(),
			stock:     store.Stock(),
			movements: store.Movements(),
			sales:     store.Sales(),
			reports:   store.Reports(),
			pinger:    store,
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &backend{
		tx:        postgres.NewTxRunner(pool),
		products:  postgres.NewProductRepository(pool),
		stock:     postgres.NewStockRepository(pool),
		movements: postgres.NewInventoryMovementRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		reports:   postgres.NewReportRepository(pool),
		pinger:    pool,
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openBackend(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacén")
	}
	defer store.close()

	m := metrics.New()
	opts := inventory.Options{
		TxTimeout: cfg.Inventory.TxTimeout,
		Metrics:   m,
		Logger:    log,
	}

	registerMovementUC := inventory.NewRegisterMovementUseCase(store.tx, store.products, store.stock, store.movements, opts)
	reconcileUC := inventory.NewReconcileUseCase(store.tx, store.products, m, log)
	recordSaleUC := sales.NewRecordSaleUseCase(store.tx, registerMovementUC, store.sales, opts)
	productUC := usecase.NewProductUseCase(store.products)
	reportUC := usecase.NewReportUseCase(store.reports, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: los endpoints de conciliación responderán 401")
	}

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		ProductUC:   productUC,
		Inventory:   registerMovementUC,
		Reconcile:   reconcileUC,
		Sales:       recordSaleUC,
		Reports:     reportUC,
		Store:       store.pinger,
		Metrics:     m,
		Logger:      log,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		ListLimit:   cfg.Inventory.ListLimit,
		CORSOrigins: cfg.HTTP.CORSOrigins,
		AppName:     cfg.App.Name,
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
