package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/photo-feed/internal/config"
	"github.com/iliyamo/photo-feed/internal/handler"
	"github.com/iliyamo/photo-feed/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Health   *handler.HealthHandler
	Auth     *handler.AuthHandler
	Feed     *handler.FeedHandler
	Posts    *handler.PostHandler
	Images   *handler.ImageHandler
	Comments *handler.CommentHandler
	Admin    *handler.AdminHandler
}

// Options carries what the shared middleware needs.
type Options struct {
	SessionSecret string
	Users         middleware.SessionUserLoader
	RateLimit     config.RateLimitConfig
	Redis         *redis.Client // nil disables rate limiting
	Log           *zap.Logger
}

// RegisterRoutes registers the ops endpoints that bypass sessions.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterApp registers the application routes. Every route sees the
// session middleware; writes additionally require a login, a matching
// CSRF token and pass the rate limiter.
func RegisterApp(e *echo.Echo, h Handlers, opt Options) {
	app := e.Group("", middleware.Session(opt.SessionSecret, opt.Users, opt.Log))
	limit := middleware.RateLimit(opt.RateLimit, opt.Redis, opt.Log)

	app.GET("/initialize", h.Admin.Initialize)

	app.POST("/register", h.Auth.Register, limit)
	app.POST("/login", h.Auth.Login, limit)
	app.GET("/logout", h.Auth.Logout)
	app.GET("/me", h.Auth.Me, middleware.RequireLogin())

	app.GET("/", h.Feed.Index)
	app.GET("/posts", h.Feed.Posts)
	app.GET("/posts/:id", h.Feed.PostDetail)
	app.GET("/@:account_name", h.Feed.UserPage)
	app.GET("/image/:file", h.Images.Serve)

	write := []echo.MiddlewareFunc{middleware.RequireLogin(), middleware.RequireCSRF(), limit}
	app.POST("/", h.Posts.Create, write...)
	app.POST("/comment", h.Comments.Create, write...)

	admin := app.Group("/admin", middleware.RequireAdmin())
	admin.GET("/banned", h.Admin.Banned)
	admin.POST("/banned", h.Admin.Ban, middleware.RequireCSRF())
}
