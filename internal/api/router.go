package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cineapp/catalog-api/internal/api/handler"
	"github.com/cineapp/catalog-api/internal/api/middleware"
	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
	"github.com/cineapp/catalog-api/internal/core/service"
	mongodb "github.com/cineapp/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/cineapp/catalog-api/internal/infrastructure/db/redis"
	"github.com/cineapp/catalog-api/internal/infrastructure/http/handlers"
)

// RouterConfig carries everything the router needs beyond the stores.
type RouterConfig struct {
	JWTSecret    string
	FrontendURL  string
	SecureCookie bool
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	mailer ports.Mailer,
	source ports.MovieSource,
	cfg RouterConfig,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("cineapp"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	profileRepo := mongodb.NewProfileRepository(db)
	movieRepo := mongodb.NewMovieRepository(db)
	throttle := redisdb.NewResetThrottle(rdb)

	authService := service.NewAuthService(userRepo, mailer, throttle, cfg.JWTSecret, cfg.FrontendURL, log)
	userService := service.NewUserService(userRepo, log)
	profileService := service.NewProfileService(profileRepo, userRepo, log)
	catalogService := service.NewCatalogService(movieRepo, profileRepo, log)
	importService := service.NewImportService(source, movieRepo, log)

	authHandler := handler.NewAuthHandler(authService, cfg.SecureCookie)
	userHandler := handler.NewUserHandler(userService)
	profileHandler := handler.NewProfileHandler(profileService)
	movieHandler := handler.NewMovieHandler(catalogService)
	importHandler := handler.NewImportHandler(importService)

	auth := middleware.Auth(authService)
	optionalAuth := middleware.OptionalAuth(authService)
	canPublish := middleware.RequireRoles(domain.RoleOwner, domain.RoleStandard)
	ownerOnly := middleware.RequireRoles(domain.RoleOwner)

	// --- Health probes and operational endpoints ---
	healthHandler := handlers.NewHealthHandler()
	readinessHandler := handlers.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// --- Auth ---
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register, optionalAuth)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", authHandler.Logout)
	authGroup.POST("/forgot-password", authHandler.ForgotPassword)
	authGroup.PATCH("/reset-password/:token", authHandler.ResetPassword)

	// The original frontend talks to the auth flow under /api/users; keep
	// those paths alive alongside the /api/auth group.
	api.POST("/users", authHandler.Register, optionalAuth)
	api.POST("/users/login", authHandler.Login)
	api.POST("/users/forgot-password", authHandler.ForgotPassword)
	api.PATCH("/users/reset-password/:token", authHandler.ResetPassword)

	// --- Users ---
	users := api.Group("/users", auth)
	users.GET("", userHandler.List, ownerOnly)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete, ownerOnly)

	// --- Profiles ---
	profiles := api.Group("/profiles", auth)
	profiles.POST("", profileHandler.Create, canPublish)
	profiles.GET("", profileHandler.List)
	profiles.GET("/:id", profileHandler.Get)
	profiles.PATCH("/:id", profileHandler.Update)
	profiles.PUT("/:id", profileHandler.Update)
	profiles.DELETE("/:id", profileHandler.Delete)
	profiles.PATCH("/:id/watchlist", profileHandler.ToggleWatchlist)

	// --- Movies ---
	movies := api.Group("/movies")
	movies.GET("", movieHandler.List)
	movies.GET("/dashboard", movieHandler.Dashboard, auth, canPublish)
	movies.GET("/report/usage", movieHandler.Report, auth, ownerOnly)
	movies.GET("/catalog/:profileId", movieHandler.ListForProfile, auth)
	// Spanish spelling kept for the original frontend.
	movies.GET("/catalogo/:profileId", movieHandler.ListForProfile, auth)
	movies.GET("/search/:field/:value", movieHandler.Search, auth)
	movies.POST("/import", importHandler.Import, auth, canPublish)
	movies.GET("/:id", movieHandler.Get)
	movies.POST("", movieHandler.Create, auth, canPublish)
	movies.PATCH("/:id", movieHandler.Update, auth, canPublish)
	movies.PUT("/:id", movieHandler.Update, auth, canPublish)
	movies.DELETE("/title/:title", movieHandler.DeleteByTitle, auth, ownerOnly)
	movies.DELETE("/:id", movieHandler.Delete, auth, canPublish)

	return e
}
