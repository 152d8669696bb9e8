package util

import "golang.org/x/crypto/bcrypt"

// passwordCost bcrypt 计算成本
const passwordCost = 10

// GeneratePasswordHash returns the bcrypt hash of password
// GeneratePasswordHash 生成密码的 bcrypt 哈希
func GeneratePasswordHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether password matches hash
// CheckPasswordHash 校验密码与哈希是否匹配
func CheckPasswordHash(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
