package domain

import "time"

// Clock 时间来源，测试中可替换
type Clock interface {
	Now() time.Time
}

// ClockFunc 以函数实现 Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock 使用 UTC 的系统时钟
var SystemClock Clock = ClockFunc(func() time.Time {
	return time.Now().UTC()
})
