package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/omnibothq/omnibot/internal/auth"
	"github.com/omnibothq/omnibot/internal/cache"
	"github.com/omnibothq/omnibot/internal/config"
	"github.com/omnibothq/omnibot/internal/http/handlers"
	"github.com/omnibothq/omnibot/internal/http/middlewares"
	"github.com/omnibothq/omnibot/internal/observability"
	"github.com/omnibothq/omnibot/internal/repo/file"
)

const maxRequestBody = 1 << 20 // 1 MiB, prompts and locations are tiny

// Deps carries everything the routes need; main builds it once.
type Deps struct {
	Users    *file.UsersRepo
	JWT      *auth.Manager
	Crypto   handlers.PriceResolver
	Images   handlers.ImageGenerator
	Geocoder handlers.Geocoder
	Weather  handlers.WeatherReader
	EV       handlers.StationFinder
	Videos   handlers.VideoReader
	Summary  handlers.Summarizer
	Cache    cache.Store
	Prom     *observability.Prom
	Registry *prometheus.Registry
}

func NewRouter(cfg config.Config, log *slog.Logger, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))
	r.Use(otelgin.Middleware("omnibot"))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health + metrics

	health := handlers.NewHealthHandler()
	r.GET("/api/health", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if deps.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	}

	// auth routes, rate limited by IP since they are unauthenticated

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Users, deps.JWT)
	authMw := middlewares.NewAuthMiddleware(deps.JWT)
	authLimiter := middlewares.NewRateLimiter(20, time.Minute)

	authGroup := r.Group("/api/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/login", middlewares.RequireJSON(), authHandler.Login)
		authGroup.POST("/register", middlewares.RequireJSON(), authHandler.Register)
		// OAuth2 password grant, form-encoded body
		authGroup.POST("/token", authHandler.Token)
		authGroup.GET("/me", authMw.RequireAuth(), authHandler.Me)
	}

	// feature routes

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())
	{
		cryptoHandler := handlers.NewCryptoHandler(deps.Crypto, deps.Cache)
		api.POST("/crypto/price", cryptoHandler.Price)

		imageHandler := handlers.NewImageHandler(deps.Images)
		api.POST("/image/generate", imageHandler.Generate)

		weatherHandler := handlers.NewWeatherHandler(deps.Geocoder, deps.Weather, deps.Cache)
		api.POST("/weather/current", weatherHandler.Current)

		evHandler := handlers.NewEVHandler(deps.Geocoder, deps.EV)
		api.POST("/ev/nearby", evHandler.Nearby)

		youtubeHandler := handlers.NewYouTubeHandler(deps.Videos, deps.Summary)
		api.POST("/youtube/summarize", youtubeHandler.Summarize)
	}

	return r
}
