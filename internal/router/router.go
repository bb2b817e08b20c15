package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"joyeriapos/internal/config"
	"joyeriapos/internal/handler"
	"joyeriapos/internal/middleware"
	"joyeriapos/internal/repository"
	"joyeriapos/internal/service"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Store ← DocumentStore
// rdb may be nil; jobs is nil when background jobs are disabled.
func New(cfg *config.Config, store *repository.Store, rdb *redis.Client, jobs service.Encolador) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Services ─────────────────────────────────────────────────────────────
	productoSvc := service.NewProductoService(store, store)
	inventarioSvc := service.NewInventarioService(store, store, store)
	ventaSvc := service.NewVentaService(store, store, jobs)
	cajaSvc := service.NewCajaService(store, store, store, jobs)
	reporteSvc := service.NewReporteService(store, store)
	accesoSvc := service.NewAccesoService(cfg)
	documentoSvc := service.NewDocumentoService(store, store, store, cfg.TicketStoragePath, cfg.NombreNegocio)

	// ── Handlers ─────────────────────────────────────────────────────────────
	productosH := handler.NewProductosHandler(productoSvc)
	inventarioH := handler.NewInventarioHandler(inventarioSvc)
	ventasH := handler.NewVentasHandler(ventaSvc, documentoSvc)
	cajaH := handler.NewCajaHandler(cajaSvc, documentoSvc)
	reportesH := handler.NewReportesHandler(reporteSvc)
	accesoH := handler.NewAccesoHandler(accesoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(store, rdb))

	v1 := r.Group("/v1")

	// Gate: brute force is already throttled per area, this caps it per IP too
	v1.POST("/acceso", middleware.RateLimiter(20, time.Minute), accesoH.Verificar)

	// Catalog reads are public (sales screen); writes need the inventario area
	inventarioArea := middleware.RequireArea(cfg.JWTSecret, service.AreaInventario)
	v1.GET("/productos", productosH.Listar)
	v1.GET("/productos/:id", productosH.ObtenerPorID)
	v1.GET("/categorias", productosH.Categorias)
	prods := v1.Group("/productos", inventarioArea)
	{
		prods.POST("", productosH.Crear)
		prods.PUT("/:id", productosH.Actualizar)
		prods.DELETE("/:id", productosH.Eliminar)
	}

	ventas := v1.Group("/ventas")
	{
		ventas.POST("", ventasH.Crear)
		ventas.GET("", ventasH.Listar)
		ventas.GET("/:id", ventasH.Obtener)
		ventas.GET("/:id/ticket", ventasH.Ticket)
		ventas.POST("/:id/anular", ventasH.Anular)
		ventas.DELETE("/:id", ventasH.Eliminar)
		ventas.DELETE("", ventasH.EliminarTodas)
	}

	caja := v1.Group("/caja", middleware.RequireArea(cfg.JWTSecret, service.AreaCaja))
	{
		caja.POST("/abrir", cajaH.Abrir)
		caja.POST("/ingreso", cajaH.Ingreso)
		caja.POST("/retiro", cajaH.Retiro)
		caja.POST("/devolucion", cajaH.Devolucion)
		caja.GET("/activa", cajaH.Activa)
		caja.GET("/historial", cajaH.Historial)
		caja.POST("/:id/cerrar", cajaH.Cerrar)
		caja.GET("/:id/estado", cajaH.Estado)
		caja.GET("/:id/movimientos", cajaH.ListarMovimientos)
		caja.GET("/:id/cierre.pdf", cajaH.CierrePDF)
	}

	inv := v1.Group("/inventario", inventarioArea)
	{
		inv.POST("/ajustes", inventarioH.Ajustar)
		inv.GET("/movimientos", inventarioH.ListarMovimientos)
		inv.GET("/alertas", inventarioH.Alertas)
	}

	rep := v1.Group("/reportes", middleware.RequireArea(cfg.JWTSecret, service.AreaReportes))
	{
		rep.GET("/resumen", reportesH.Resumen)
		rep.GET("/top-productos", reportesH.TopProductos)
		rep.GET("/top-clientes", reportesH.TopClientes)
		rep.GET("/serie", reportesH.Serie)
		rep.GET("/ventas.csv", reportesH.ExportarCSV)
	}

	return r
}
