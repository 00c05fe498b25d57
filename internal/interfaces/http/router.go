package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/application/sales"
	"github.com/jhoicas/inventario-tienda/internal/application/usecase"
	"github.com/jhoicas/inventario-tienda/pkg/jwt"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
	"github.com/jhoicas/inventario-tienda/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC   *usecase.ProductUseCase
	Inventory   *inventory.RegisterMovementUseCase
	Reconcile   *inventory.ReconcileUseCase
	Sales       *sales.RecordSaleUseCase
	Reports     *usecase.ReportUseCase
	Store       Pinger
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
	JWTSecret   string
	JWTIssuer   string
	ListLimit   int
	CORSOrigins string
	AppName     string
}

// NewApp crea la aplicación Fiber con el middleware común y todas las rutas.
func NewApp(deps RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      deps.AppName,
		ErrorHandler: ErrorHandler,
	})
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	origins := deps.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(recover.New())
	app.Use(AccessLog(log.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	Router(app, deps)
	return app
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", NewHealthHandler(deps.Store).Health)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}

	productHandler := NewProductHandler(deps.ProductUC)
	products := app.Group("/productos")
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Put("/", productHandler.Update)
	products.Delete("/", productHandler.Delete)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Auditoría: registrada antes de /:producto_id para que "reconciliacion" no se lea como ID.
	reconcileHandler := NewReconcileHandler(deps.Reconcile)
	adminOnly := []fiber.Handler{AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), RequireRole(jwt.RoleAdmin)}
	app.Get("/inventario/reconciliacion", append(adminOnly, reconcileHandler.ReconcileAll)...)
	app.Get("/inventario/:producto_id/reconciliacion", append(adminOnly, reconcileHandler.Reconcile)...)

	inventoryHandler := NewInventoryHandler(deps.Inventory, deps.ListLimit)
	inv := app.Group("/inventario")
	inv.Get("/", inventoryHandler.List)
	inv.Post("/", inventoryHandler.RegisterMovement)
	inv.Put("/", inventoryHandler.SetStock)
	inv.Get("/:producto_id", inventoryHandler.GetProjection)
	inv.Get("/:producto_id/movimientos", inventoryHandler.ListProductMovements)

	salesHandler := NewSalesHandler(deps.Sales, deps.ListLimit)
	ventas := app.Group("/ventas")
	ventas.Get("/", salesHandler.List)
	ventas.Post("/", salesHandler.Create)

	reportHandler := NewReportHandler(deps.Reports)
	reportes := app.Group("/reportes")
	reportes.Get("/", reportHandler.SalesByProduct)
	reportes.Get("/pdf", reportHandler.SalesByProductPDF)
}
