package socket

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"
)

// ReadStatus Outcome of one readiness-driven read.  End-of-stream
// and I/O failure are distinct results rather than a sentinel length
// and a caught error meaning different things.
type ReadStatus int

const (
	// ReadData Bytes were read into the buffer (possibly zero for
	// an empty datagram)
	ReadData ReadStatus = iota

	// ReadAgain Nothing to read right now; not an error
	ReadAgain

	// ReadClosed The remote end closed the stream
	ReadClosed

	// ReadFailed The read failed with an I/O error
	ReadFailed
)

// ReadStream Read once from a non-blocking stream socket into the
// given buffer
func ReadStream(fd int, buffer []byte) (int, ReadStatus, error) {
	count, err := unix.Read(fd, buffer)
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
		return 0, ReadAgain, nil
	case err != nil:
		return 0, ReadFailed, fmt.Errorf("read: %w", err)
	case count == 0:
		return 0, ReadClosed, nil
	default:
		return count, ReadData, nil
	}
}

// Write Write to a non-blocking socket.  Partial writes are
// reported, not retried: the returned count may be smaller than the
// data length when the socket buffer is full.
func Write(fd int, data []byte) (int, error) {
	count, err := unix.Write(fd, data)
	if err != nil {
		if count < 0 {
			count = 0
		}
		return count, fmt.Errorf("write: %w", err)
	}
	return count, nil
}

// RecvFrom Receive one datagram into the given buffer.  A datagram
// larger than the buffer is delivered truncated to the buffer
// capacity.
func RecvFrom(fd int, buffer []byte) (int, netip.AddrPort, ReadStatus, error) {
	count, sa, err := unix.Recvfrom(fd, buffer, 0)
	switch {
	case err == unix.EAGAIN || err == unix.EINTR:
		return 0, netip.AddrPort{}, ReadAgain, nil
	case err != nil:
		return 0, netip.AddrPort{}, ReadFailed, fmt.Errorf("recvfrom: %w", err)
	default:
		return count, addrPortFromSockaddr(sa), ReadData, nil
	}
}

// SendTo Send one datagram to the given address
func SendTo(fd int, data []byte, addr netip.AddrPort) error {
	err := unix.Sendto(fd, data, 0, sockaddrFromAddrPort(addr))
	if err != nil {
		return fmt.Errorf("sendto %s: %w", addr, err)
	}
	return nil
}

// Close Release a socket descriptor.  Closing also cancels any
// remaining readiness interest for it.
func Close(fd int) error {
	return unix.Close(fd)
}
