package router

import (
	"time"

	"github.com/DataGusIT/EstacaoDoces/internal/config"
	"github.com/DataGusIT/EstacaoDoces/internal/handler"
	"github.com/DataGusIT/EstacaoDoces/internal/infra"
	"github.com/DataGusIT/EstacaoDoces/internal/middleware"
	"github.com/DataGusIT/EstacaoDoces/internal/repository"
	"github.com/DataGusIT/EstacaoDoces/internal/service"
	"github.com/DataGusIT/EstacaoDoces/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// worker handlers for the async pool.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) (*gin.Engine, worker.Handlers) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	tillRepo := repository.NewTillRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	stockMovementRepo := repository.NewStockMovementRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	productSvc := service.NewProductService(productRepo)
	customerSvc := service.NewCustomerService(customerRepo)
	stockSvc := service.NewStockService(productRepo, stockMovementRepo)
	tillSvc := service.NewTillService(tillRepo, dispatcher)
	ledgerSvc := service.NewCashLedger(tillRepo)
	saleSvc := service.NewSaleService(saleRepo, tillSvc, tillRepo, stockSvc, productRepo, customerRepo)
	reportSvc := service.NewReportService(reportRepo, tillRepo, rdb)

	// ── Workers ──────────────────────────────────────────────────────────────
	workers := worker.Handlers{
		ClosingReport: worker.NewClosingReportWorker(
			reportSvc, dispatcher, rdb,
			cfg.PDFStoragePath, cfg.StoreName, cfg.SupervisorEmail,
		),
		Email: worker.NewEmailWorker(mailer, smtpCB, rdb),
	}

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	tillH := handler.NewTillHandler(tillSvc, ledgerSvc, reportSvc)
	saleH := handler.NewSaleHandler(saleSvc)
	reportH := handler.NewReportHandler(reportSvc)
	productH := handler.NewProductHandler(productSvc, stockSvc)
	customerH := handler.NewCustomerHandler(customerSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("cashier", "supervisor", "admin")
	supervisorUp := middleware.RequireRole("supervisor", "admin")
	adminOnly := middleware.RequireRole("admin")

	v1 := r.Group("/v1", jwtMW)
	{
		till := v1.Group("/till")
		{
			till.POST("/open", anyRole, tillH.Open)
			till.POST("/close", anyRole, tillH.Close)
			till.GET("/current", anyRole, tillH.Current)
			till.GET("/history", supervisorUp, tillH.History)
			till.POST("/movements", anyRole, tillH.RecordMovement)
			till.GET("/:id/movements", anyRole, tillH.Movements)
			till.GET("/:id/balance", anyRole, tillH.Balance)
			till.GET("/:id/report", anyRole, tillH.Report)
		}

		v1.POST("/sales", anyRole, saleH.Register)
		v1.GET("/sales", anyRole, saleH.List)
		v1.DELETE("/sales/:id", supervisorUp, saleH.Void)

		v1.GET("/reports/period", supervisorUp, reportH.Period)

		v1.GET("/products", anyRole, productH.List)
		v1.GET("/products/:id", anyRole, productH.Get)
		v1.GET("/products/alerts", anyRole, productH.Alerts)
		v1.GET("/stock/movements", supervisorUp, productH.StockMovements)
		v1.PATCH("/products/:id/stock", supervisorUp, productH.AdjustStock)
		prods := v1.Group("/products", adminOnly)
		{
			prods.POST("", productH.Create)
			prods.PUT("/:id", productH.Update)
			prods.DELETE("/:id", productH.Delete)
		}

		v1.GET("/customers", anyRole, customerH.List)
		v1.GET("/customers/:id", anyRole, customerH.Get)
		customers := v1.Group("/customers", adminOnly)
		{
			customers.POST("", customerH.Create)
			customers.PUT("/:id", customerH.Update)
			customers.DELETE("/:id", customerH.Delete)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}
	}

	return r, workers
}
