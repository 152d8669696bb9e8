package domain

import "time"

// EvaluateExpiry 惰性过期判定
//
// 已过期返回 (true, false)；now >= ExpiryTime 时置为过期并返回 (true, true)，
// changed 为 true 时由调用方负责持久化；否则返回 (false, false)。
// Expired 只会从 false 变为 true。
func EvaluateExpiry(pool *Pool, now time.Time) (isExpired bool, changed bool) {
	if pool.Expired {
		return true, false
	}
	if !now.Before(pool.ExpiryTime) {
		pool.Expired = true
		return true, true
	}
	return false, false
}
