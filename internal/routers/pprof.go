package routers

import (
	"net/http/pprof"

	"github.com/haierkeys/campus-share-service/internal/app"
	"github.com/haierkeys/campus-share-service/internal/middleware"
	"github.com/haierkeys/campus-share-service/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrefix url prefix of pprof
const DefaultPrefix = "/debug/pprof"

// pprofProfiles 通过 pprof.Handler 暴露的运行时 profile
var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// NewPrivateRouter 创建私有管理路由：prometheus 指标、expvar，以及 debug 模式下的 pprof
// authToken 非空时所有请求都需携带该令牌
func NewPrivateRouter(runMode, authToken string, a *app.App) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RecoveryWithLogger(a.Logger()))
	r.Use(middleware.SimpleAuthTokenWithConfig(authToken))

	api_router.PublishAppVars(a)
	r.GET("/debug/vars", api_router.Expvar)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if runMode != gin.DebugMode {
		return r
	}

	p := r.Group(DefaultPrefix)
	p.GET("/", gin.WrapF(pprof.Index))
	p.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	p.GET("/profile", gin.WrapF(pprof.Profile))
	p.Any("/symbol", gin.WrapF(pprof.Symbol))
	p.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range pprofProfiles {
		p.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
	return r
}
