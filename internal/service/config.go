// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	User UserServiceConfig // User related config // 用户相关配置
	Pool PoolServiceConfig // Ride and food order config // 拼车与拼单配置
}

// UserServiceConfig user service configuration
// UserServiceConfig 用户服务配置
type UserServiceConfig struct {
	RegisterIsEnable   bool // Whether registration is enabled // 注册是否启用
	DirectoryCacheSize int  // Cached user display entries // 用户展示信息缓存条数
}

// PoolServiceConfig ride and food order service configuration
// PoolServiceConfig 拼车与拼单服务配置
type PoolServiceConfig struct {
	SearchLimit     int           // Max results per search page // 单页搜索结果上限
	RetryAttempts   int           // Attempts for infrastructure failures // 基础设施故障重试次数
	RetryBackoff    time.Duration // Linear backoff step between attempts // 线性退避步长
	ConflictRetries int           // Re-check rounds after a concurrent change // 并发冲突后重新校验的轮数
}

// DefaultServiceConfig returns the defaults used when a field is unset
// DefaultServiceConfig 返回默认配置
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		User: UserServiceConfig{RegisterIsEnable: true, DirectoryCacheSize: 1024},
		Pool: PoolServiceConfig{SearchLimit: 50, RetryAttempts: 3, RetryBackoff: 50 * time.Millisecond, ConflictRetries: 3},
	}
}

func (c *ServiceConfig) normalize() *ServiceConfig {
	def := DefaultServiceConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.User.DirectoryCacheSize <= 0 {
		out.User.DirectoryCacheSize = def.User.DirectoryCacheSize
	}
	if out.Pool.SearchLimit <= 0 {
		out.Pool.SearchLimit = def.Pool.SearchLimit
	}
	if out.Pool.RetryAttempts <= 0 {
		out.Pool.RetryAttempts = def.Pool.RetryAttempts
	}
	if out.Pool.RetryBackoff < 0 {
		out.Pool.RetryBackoff = 0
	}
	if out.Pool.ConflictRetries <= 0 {
		out.Pool.ConflictRetries = def.Pool.ConflictRetries
	}
	return &out
}
