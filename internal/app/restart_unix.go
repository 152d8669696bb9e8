//go:build !windows

package app

import "syscall"

// RestartProcess 以相同参数与环境替换当前进程映像，成功时不返回
func RestartProcess(exe string, args []string, env []string) error {
	return syscall.Exec(exe, args, env)
}
