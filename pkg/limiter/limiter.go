package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器接口
type Face interface {
	Key(c *gin.Context) string
	GetBucket(key string) (*ratelimit.Bucket, bool)
	AddBuckets(rules ...BucketRule) Face
}

// Limiter 以 key 保存令牌桶
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// BucketRule 令牌桶规则
type BucketRule struct {
	Key          string        // 键，通常为路由路径
	FillInterval time.Duration // 放置令牌的间隔
	Capacity     int64         // 桶容量
	Quantum      int64         // 每次放置的令牌数
}
