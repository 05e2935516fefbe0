//go:build windows

package process

import "syscall"

// NewGroupAttr returns a SysProcAttr that puts a spawned process in a new
// console/job so KillProcessGroup's taskkill /T can reach its children.
func NewGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}
