package util

import (
	"os"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineIDOnce sync.Once
	machineID     string
)

// GetMachineID 返回当前主机的稳定标识，用作令牌签名密钥的一部分
// 依次尝试 machineid 库与 DMI 主板序列号，均失败时返回空字符串
func GetMachineID() string {
	machineIDOnce.Do(func() {
		if id, err := machineid.ProtectedID("campus-share"); err == nil && id != "" {
			machineID = id
			return
		}
		if content, err := os.ReadFile("/sys/class/dmi/id/board_serial"); err == nil {
			machineID = strings.TrimSpace(string(content))
		}
	})
	return machineID
}
