package socket

import (
	"fmt"
	"net/netip"

	"golang.org/x/sys/unix"

	"github.com/kaba4cow/net/pkg/neterr"
)

const listenBacklog = 128

// ListenTCP Open a non-blocking TCP listening socket bound to the
// given address
func ListenTCP(addr netip.AddrPort) (int, error) {
	fd, err := newSocket(addr, unix.SOCK_STREAM)
	if err != nil {
		return -1, err
	}

	err = SetDefaultOptions(fd)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	err = unix.Bind(fd, sockaddrFromAddrPort(addr))
	if err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", addr, err)
	}

	err = unix.Listen(fd, listenBacklog)
	if err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("listen %s: %w", addr, err)
	}

	return fd, nil
}

// Accept Accept one pending connection from a listening socket.
// Returns -1 with a nil error when no connection is pending, which
// is a normal condition for a readiness-driven accept.
func Accept(listenFd int) (int, netip.AddrPort, error) {
	fd, sa, err := unix.Accept4(listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR || err == unix.ECONNABORTED {
			return -1, netip.AddrPort{}, nil
		}
		return -1, netip.AddrPort{}, fmt.Errorf("accept: %w", err)
	}

	return fd, addrPortFromSockaddr(sa), nil
}

// ConnectTCP Open a non-blocking TCP socket and initiate a connect
// to the given address.  The in-progress connect completes once the
// socket reports writable readiness; call FinishConnect then.
func ConnectTCP(addr netip.AddrPort) (int, error) {
	fd, err := newSocket(addr, unix.SOCK_STREAM)
	if err != nil {
		return -1, err
	}

	err = unix.Connect(fd, sockaddrFromAddrPort(addr))
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("connect %s: %w", addr, err)
	}

	return fd, nil
}

// FinishConnect Complete a non-blocking connect after the socket
// became writable
func FinishConnect(fd int) error {
	soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return fmt.Errorf("%w : %v", neterr.ErrConnectFailed, err)
	}
	if soErr != 0 {
		return fmt.Errorf("%w : %v", neterr.ErrConnectFailed, unix.Errno(soErr))
	}
	return nil
}

// ListenUDP Open a non-blocking datagram socket bound to the given
// address
func ListenUDP(addr netip.AddrPort) (int, error) {
	fd, err := newSocket(addr, unix.SOCK_DGRAM)
	if err != nil {
		return -1, err
	}

	err = SetDefaultOptions(fd)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	err = unix.Bind(fd, sockaddrFromAddrPort(addr))
	if err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("bind %s: %w", addr, err)
	}

	return fd, nil
}

// NewUDP Open an unbound non-blocking datagram socket suitable for
// exchanging datagrams with the given remote address
func NewUDP(remote netip.AddrPort) (int, error) {
	return newSocket(remote, unix.SOCK_DGRAM)
}

// LocalAddr Address the socket is bound to, known only after the
// kernel has assigned one (bind, connect or first send)
func LocalAddr(fd int) (netip.AddrPort, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return netip.AddrPort{}, err
	}
	return addrPortFromSockaddr(sa), nil
}

func newSocket(addr netip.AddrPort, socketType int) (int, error) {
	domain := unix.AF_INET
	if addr.Addr().Is6() && !addr.Addr().Is4In6() {
		domain = unix.AF_INET6
	}

	fd, err := unix.Socket(domain, socketType|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("socket: %w", err)
	}

	return fd, nil
}

func sockaddrFromAddrPort(addr netip.AddrPort) unix.Sockaddr {
	if addr.Addr().Is6() && !addr.Addr().Is4In6() {
		sa := &unix.SockaddrInet6{Port: int(addr.Port())}
		sa.Addr = addr.Addr().As16()
		return sa
	}

	sa := &unix.SockaddrInet4{Port: int(addr.Port())}
	sa.Addr = addr.Addr().Unmap().As4()
	return sa
}

func addrPortFromSockaddr(sa unix.Sockaddr) netip.AddrPort {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(sa.Addr).Unmap(), uint16(sa.Port))
	default:
		return netip.AddrPort{}
	}
}
