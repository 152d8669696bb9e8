package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration string, accepting a 'd' (day) suffix and bare seconds
// ParseDuration 解析时长字符串，支持 'd' (天) 后缀，纯数字按秒处理
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}
