//go:build !windows

package process

import "syscall"

// NewGroupAttr returns a SysProcAttr that puts a spawned process in its own
// process group, so KillProcessGroup can later take down it and every child
// it forked (renderer helpers, zygote processes) with one signal.
func NewGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
