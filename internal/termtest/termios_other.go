//go:build aix || linux || solaris || zos

package termtest

import "golang.org/x/sys/unix"

const ioctlReadTermios = unix.TCGETS
