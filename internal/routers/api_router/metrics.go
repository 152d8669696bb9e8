package api_router

import (
	"expvar"
	"sync"
	"sync/atomic"

	"github.com/haierkeys/campus-share-service/internal/app"

	"github.com/gin-gonic/gin"
)

var (
	publishOnce sync.Once
	currentApp  atomic.Pointer[app.App]
)

// PublishAppVars 将应用容器的运行状态注册到 expvar
// expvar 名称全局唯一，只注册一次，读取时使用最近一次传入的容器
func PublishAppVars(a *app.App) {
	currentApp.Store(a)
	publishOnce.Do(func() {
		expvar.Publish("campus_uptime_seconds", expvar.Func(func() any {
			if a := currentApp.Load(); a != nil {
				return int64(a.Uptime().Seconds())
			}
			return 0
		}))
		expvar.Publish("campus_worker_pool", expvar.Func(func() any {
			a := currentApp.Load()
			if a == nil || a.WorkerPool() == nil {
				return nil
			}
			wp := a.WorkerPool()
			return map[string]any{
				"active": wp.ActiveCount(),
				"queued": wp.QueuedCount(),
				"closed": wp.IsClosed(),
			}
		}))
	})
}

// Expvar 输出 expvar 指标（JSON）
func Expvar(c *gin.Context) {
	expvar.Handler().ServeHTTP(c.Writer, c.Request)
}
