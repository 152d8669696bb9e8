package app

// 构建时通过 -ldflags "-X" 注入
var (
	Version   = "0.1.0"
	GitTag    = "dev"
	BuildTime = "unknown"
)

// Name 服务展示名称
const Name = "Campus Share Service"
