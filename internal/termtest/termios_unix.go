//go:build unix

package termtest

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// CanonicalMode reports whether the terminal is in canonical echoing
// mode. A program that exits while still holding raw mode leaves both
// flags cleared on the pty.
func (c *Console) CanonicalMode() (bool, error) {
	if c.ptm == nil {
		return false, fmt.Errorf("console not started")
	}
	tio, err := unix.IoctlGetTermios(int(c.ptm.Fd()), ioctlReadTermios)
	if err != nil {
		return false, fmt.Errorf("failed to read terminal attributes: %w", err)
	}
	return tio.Lflag&unix.ICANON != 0 && tio.Lflag&unix.ECHO != 0, nil
}
