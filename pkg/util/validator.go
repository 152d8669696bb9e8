package util

import "regexp"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email looks like an address
// IsValidEmail 验证邮箱格式是否正确
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
