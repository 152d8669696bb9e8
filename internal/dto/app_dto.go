// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// VersionDTO version information for API response
// VersionDTO 版本信息 API 响应对象
type VersionDTO struct {
	Name      string `json:"name"`      // Application name // 应用名称
	Version   string `json:"version"`   // Current version // 当前版本
	GitTag    string `json:"gitTag"`    // Git tag // Git 标签
	BuildTime string `json:"buildTime"` // Build time // 构建时间
}

// HealthDTO liveness check result
// HealthDTO 健康检查结果
type HealthDTO struct {
	Status   string `json:"status"`   // ok, degraded or shutting_down // ok、degraded 或 shutting_down
	Database string `json:"database"` // Database ping result // 数据库连通性
	Uptime   string `json:"uptime"`   // Process uptime // 运行时长
}
