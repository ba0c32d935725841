//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package termtest

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TIOCGETA
