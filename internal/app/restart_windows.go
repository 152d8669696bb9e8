//go:build windows

package app

import (
	"os"
	"os/exec"
)

// RestartProcess 启动一个带相同参数与环境的新进程后退出当前进程
// Windows 不支持 exec 替换进程映像
func RestartProcess(exe string, args []string, env []string) error {
	next := exec.Command(exe, args[1:]...)
	next.Env = env
	next.Stdin, next.Stdout, next.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := next.Start(); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}
