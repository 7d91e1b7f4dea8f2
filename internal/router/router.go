package router

import (
	"strings"
	"time"

	"veredapos/internal/config"
	"veredapos/internal/handler"
	"veredapos/internal/infra"
	"veredapos/internal/middleware"
	"veredapos/internal/model"
	"veredapos/internal/notify"
	"veredapos/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs. Redis, the cloud database and
// the breaker are nil when their feature is disabled.
type Deps struct {
	Orders    service.OrderService
	Tables    service.TableService
	Catalog   service.CatalogService
	Customers service.CustomerService
	Reports   service.ReportService
	Settings  service.SettingsService
	Auth      service.AuthService
	Feed      *notify.Feed
	Renderer  handler.DocumentRenderer

	StateDB *sqlx.DB
	Redis   *redis.Client
	Cloud   *gorm.DB
	CloudCB *infra.CircuitBreaker
}

// New wires the handlers and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← state.Store / workers
func New(cfg *config.Config, d Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Env, splitOrigins(cfg.CORSOrigins)))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(d.Auth)
	usersH := handler.NewUsersHandler(d.Auth)
	ordersH := handler.NewOrdersHandler(d.Orders, d.Catalog, d.Customers, d.Settings, d.Renderer)
	tablesH := handler.NewTablesHandler(d.Tables)
	catalogH := handler.NewCatalogHandler(d.Catalog)
	customersH := handler.NewCustomersHandler(d.Customers)
	reportsH := handler.NewReportsHandler(d.Reports, d.Settings, d.Renderer)
	settingsH := handler.NewSettingsHandler(d.Settings)
	notificationsH := handler.NewNotificationsHandler(d.Feed)
	publicH := handler.NewPublicHandler(d.Catalog, d.Tables, d.Orders, d.Settings)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(d.StateDB, d.Redis, d.Cloud, d.CloudCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Guest pages (digital menu, customer display, QR ordering)
	public := r.Group("/v1/public")
	{
		public.GET("/menu", publicH.Menu)
		public.GET("/tables/:id", publicH.TableDisplay)
		public.POST("/tables/:id/items", middleware.SelfOrderRateLimiter(), publicH.SelfOrder)
	}

	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		sales := middleware.RequirePermission(model.PermPOSSales)
		void := middleware.RequirePermission(model.PermPOSVoid)
		finance := middleware.RequirePermission(model.PermFinanceView)
		stock := middleware.RequirePermission(model.PermStockManage)
		staff := middleware.RequirePermission(model.PermStaffManage)
		sysConfig := middleware.RequirePermission(model.PermSystemConfig)

		v1.GET("/auth/me", authH.Me)

		orders := v1.Group("/orders", sales)
		{
			orders.POST("", ordersH.Create)
			orders.GET("", ordersH.List)
			orders.POST("/items", ordersH.AddItem)
			orders.GET("/:id", ordersH.Get)
			orders.POST("/:id/transfer", ordersH.Transfer)
			orders.POST("/:id/checkout", ordersH.Checkout)
			orders.PATCH("/:id/items/:index/status", ordersH.ItemStatus)
			orders.POST("/:id/served", ordersH.Served)
			orders.GET("/:id/precheck.pdf", ordersH.PreCheck)
			orders.GET("/:id/invoice.pdf", ordersH.Invoice)
		}
		// Post-close amendments touch issued invoices and customer debt
		v1.PATCH("/orders/:id/payment-method", void, ordersH.AmendPayment)
		v1.PATCH("/orders/:id/customer", void, ordersH.AmendCustomer)

		v1.GET("/selection", sales, ordersH.Selection)
		v1.PUT("/selection", sales, ordersH.SetSelection)

		v1.GET("/tables", sales, tablesH.List)
		v1.GET("/tables/:id", sales, tablesH.Get)
		tables := v1.Group("/tables", sysConfig)
		{
			tables.POST("", tablesH.Create)
			tables.PUT("/:id", tablesH.Update)
			tables.PATCH("/:id/position", tablesH.Move)
			tables.DELETE("/:id", tablesH.Delete)
		}

		v1.GET("/dishes", sales, catalogH.ListDishes)
		v1.GET("/dishes/:id", sales, catalogH.GetDish)
		v1.GET("/categories", sales, catalogH.ListCategories)
		dishes := v1.Group("/dishes", stock)
		{
			dishes.POST("", catalogH.CreateDish)
			dishes.PUT("/:id", catalogH.UpdateDish)
			dishes.PATCH("/:id/visibility", catalogH.ToggleDishVisibility)
			dishes.PATCH("/:id/featured", catalogH.ToggleDishFeatured)
			dishes.DELETE("/:id", catalogH.DeleteDish)
		}
		categories := v1.Group("/categories", stock)
		{
			categories.POST("", catalogH.CreateCategory)
			categories.PUT("/:id", catalogH.UpdateCategory)
			categories.PATCH("/:id/visibility", catalogH.ToggleCategoryVisibility)
			categories.DELETE("/:id", catalogH.DeleteCategory)
		}

		customers := v1.Group("/customers", sales)
		{
			customers.GET("", customersH.List)
			customers.POST("", customersH.Create)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
			customers.GET("/:id/orders", customersH.Orders)
		}
		v1.POST("/customers/:id/payments", finance, customersH.SettleDebt)
		v1.DELETE("/customers/:id", staff, customersH.Delete)

		reports := v1.Group("/reports", finance)
		{
			reports.GET("/metrics", reportsH.Metrics)
			reports.GET("/shift-closing", reportsH.ShiftClosing)
			reports.GET("/ledger", reportsH.VerifyLedger)
		}

		v1.GET("/settings", settingsH.Get)
		v1.PATCH("/settings", sysConfig, settingsH.Patch)

		users := v1.Group("/users", staff)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Delete)
		}

		v1.GET("/notifications", notificationsH.List)
		v1.DELETE("/notifications/:id", notificationsH.Dismiss)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
