package socket

import (
	"golang.org/x/sys/unix"
)

// SetDefaultOptions Apply the socket options every bound socket in
// this module uses
func SetDefaultOptions(fd int) error {
	err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err != nil {
		return err
	}

	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
}
