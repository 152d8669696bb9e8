package routers

import (
	"time"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/middleware"
	"github.com/haierkeys/campus-share-service/internal/routers/api_router"
	"github.com/haierkeys/campus-share-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// authLimiter 登录注册接口按分钟限流，perMinute 为 0 时不限
func authLimiter(perMinute int64) limiter.Face {
	l := limiter.NewMethodLimiter()
	if perMinute <= 0 {
		return l
	}
	return l.AddBuckets(limiter.BucketRule{
		Key:          "/api/user",
		FillInterval: time.Minute / time.Duration(perMinute),
		Capacity:     perMinute,
		Quantum:      1,
	})
}

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {
	cfg := appContainer.Config()
	lg := appContainer.Logger()

	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(lg))
	r.Use(middleware.Cors(cfg.Server.CorsAllowOrigins))

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(cfg.Tracer.Enabled, cfg.Tracer.Header))
		api.Use(middleware.Metrics())
		api.Use(middleware.AccessLogWithLogger(lg))
		api.Use(middleware.RateLimiter(authLimiter(cfg.Security.AuthRateLimit)))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))

		systemHandler := api_router.NewSystemHandler(appContainer)
		userHandler := api_router.NewUserHandler(appContainer)
		rideHandler := api_router.NewRideHandler(appContainer)
		foodHandler := api_router.NewFoodOrderHandler(appContainer)

		api.GET("/health", systemHandler.Health)
		api.GET("/version", systemHandler.Version)

		api.POST("/user/register", userHandler.Register)
		api.POST("/user/login", userHandler.Login)
		api.POST("/user/refresh", userHandler.Refresh)

		auth := api.Group("", middleware.UserAuthTokenWithManager(appContainer.TokenManager))
		{
			auth.POST("/user/logout", userHandler.Logout)
			auth.GET("/user/me", userHandler.Me)

			rides := auth.Group("/rides")
			rides.POST("", rideHandler.Create)
			rides.GET("/search", rideHandler.Search)
			rides.GET("/mine", rideHandler.Mine)
			rides.GET("/:id", rideHandler.Get)
			rides.POST("/:id/join", rideHandler.Join)
			rides.POST("/:id/leave", rideHandler.Leave)
			rides.DELETE("/:id", rideHandler.Delete)

			food := auth.Group("/food")
			food.POST("", foodHandler.Create)
			food.GET("/search", foodHandler.Search)
			food.GET("/mine", foodHandler.Mine)
			food.GET("/:id", foodHandler.Get)
			food.POST("/:id/join", foodHandler.Join)
			food.POST("/:id/leave", foodHandler.Leave)
			food.DELETE("/:id", foodHandler.Delete)
		}
	}

	r.NoRoute(middleware.NoFound())

	return r
}
