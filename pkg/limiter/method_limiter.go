package limiter

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// MethodLimiter 按请求路径限流，规则 key 作为路径前缀匹配
type MethodLimiter struct {
	*Limiter
	prefixes []string
}

func NewMethodLimiter() Face {
	return MethodLimiter{
		Limiter: &Limiter{limiterBuckets: make(map[string]*ratelimit.Bucket)},
	}
}

func (l MethodLimiter) Key(c *gin.Context) string {
	uri := c.Request.URL.Path
	for _, prefix := range l.prefixes {
		if strings.HasPrefix(uri, prefix) {
			return prefix
		}
	}
	return uri
}

func (l MethodLimiter) GetBucket(key string) (*ratelimit.Bucket, bool) {
	bucket, ok := l.limiterBuckets[key]
	return bucket, ok
}

func (l MethodLimiter) AddBuckets(rules ...BucketRule) Face {
	for _, rule := range rules {
		if _, ok := l.limiterBuckets[rule.Key]; !ok {
			bucket := ratelimit.NewBucketWithQuantum(rule.FillInterval, rule.Capacity, rule.Quantum)
			l.limiterBuckets[rule.Key] = bucket
			l.prefixes = append(l.prefixes, rule.Key)
		}
	}
	return l
}
