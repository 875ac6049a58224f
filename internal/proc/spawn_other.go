//go:build !unix

package proc

import "syscall"

func detachedAttr() *syscall.SysProcAttr {
	return nil
}
