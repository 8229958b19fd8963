package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ctoutbank/portal-outbank-sub005/internal/config"
	"github.com/ctoutbank/portal-outbank-sub005/internal/handler"
	"github.com/ctoutbank/portal-outbank-sub005/internal/infra"
	"github.com/ctoutbank/portal-outbank-sub005/internal/middleware"
	"github.com/ctoutbank/portal-outbank-sub005/internal/model"
	"github.com/ctoutbank/portal-outbank-sub005/internal/repository"
	"github.com/ctoutbank/portal-outbank-sub005/internal/service"
	"github.com/ctoutbank/portal-outbank-sub005/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, billingCB *infra.CircuitBreaker) *gin.Engine {
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
	r.Use(middleware.RateLimiter(rdb, 1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	isoRepo := repository.NewIsoRepository(db)
	tableRepo := repository.NewCostTableRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	marginRepo := repository.NewMarginRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	tokenRepo := repository.NewOneTimeTokenRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	accessSvc := service.NewAccessService(userRepo)
	authSvc := service.NewAuthService(userRepo, tokenRepo, dispatcher, cfg)
	isoSvc := service.NewIsoService(isoRepo)
	snapshotSvc := service.NewSnapshotService(snapshotRepo, marginRepo)
	marginSvc := service.NewMarginService(linkRepo, marginRepo, historyRepo, snapshotSvc, accessSvc)
	validationSvc := service.NewValidationService(linkRepo, historyRepo, snapshotSvc, accessSvc, dispatcher)
	linkSvc := service.NewLinkService(linkRepo, tableRepo, isoRepo, marginSvc, accessSvc)
	publicSvc := service.NewPublicRateService(snapshotRepo, marginRepo, linkRepo, historyRepo, apiKeyRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	isosH := handler.NewIsosHandler(isoSvc)
	linksH := handler.NewLinksHandler(linkSvc)
	marginsH := handler.NewMarginsHandler(marginSvc)
	validationH := handler.NewValidationHandler(validationSvc)
	rateTablesH := handler.NewRateTablesHandler(snapshotSvc, isoSvc, accessSvc)
	publicH := handler.NewPublicRatesHandler(publicSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, billingCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(rdb), authH.Login)
		auth.POST("/refresh", authH.Refresh)
		auth.POST("/password-reset/request", middleware.LoginRateLimiter(rdb), authH.RequestPasswordReset)
		auth.POST("/password-reset/confirm", authH.ConfirmPasswordReset)
	}

	// Partner API — key-scoped tenant, no JWT
	public := r.Group("/public", middleware.APIKeyAuth(apiKeyRepo))
	{
		public.PUT("/rates/margin", publicH.UpdateMargins)
	}

	// Operator routes — JWT plus a DB-resolved user in context: access
	// decisions read membership rows, not just token claims.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.LoadUser(userRepo))
	{
		anyOperator := middleware.RequireRole(model.RoleSuperOperator, model.RoleOperator, model.RoleIsoOperator)
		superOnly := middleware.RequireRole(model.RoleSuperOperator)

		isos := v1.Group("/isos")
		{
			isos.POST("", superOnly, isosH.Create)
			isos.GET("", superOnly, isosH.List)
			isos.PATCH("/:id/outbank-margin", superOnly, isosH.SetOutbankMargin)

			isos.GET("/:id/links", anyOperator, linksH.ListByIso)
			isos.GET("/:id/rate-tables", anyOperator, rateTablesH.List)
			isos.GET("/:id/rate-tables/pdf", anyOperator, rateTablesH.PDF)

			isos.PUT("/:id/margins", anyOperator, marginsH.Set)
			isos.PATCH("/:id/margins", anyOperator, marginsH.BatchSet)

			isos.POST("/:id/validation", anyOperator, validationH.Transition)
			isos.POST("/:id/validation/batch", anyOperator, validationH.BatchTransition)
			isos.GET("/:id/validation-history", superOnly, validationH.History)
		}

		links := v1.Group("/iso-links")
		{
			links.POST("", superOnly, linksH.Create)
			links.POST("/:linkId/validity", superOnly, linksH.SetValidity)
		}

		v1.POST("/users", superOnly, usersH.Create)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
