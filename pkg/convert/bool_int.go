package convert

// Bool2Int converts a boolean to 1 or 0
// Bool2Int 将布尔值转换为整数
func Bool2Int(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
