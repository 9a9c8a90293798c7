package transport

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/kaba4cow/net/pkg/neterr"
)

type Type int64

const (
	NotSet Type = iota
	TCP
	UDP
)

// GetTypeFromAddress Classify an address string as an IP transport
// endpoint.  TCP vs UDP cannot be told apart from the address alone;
// the Connectionless config flag makes that choice.
func GetTypeFromAddress(address string) (Type, error) {
	address = strings.TrimSpace(address)

	if address == "" {
		return NotSet, neterr.ErrAddressEmpty
	}

	if address == "localhost" || strings.HasPrefix(address, "localhost:") {
		return TCP, nil
	}

	_, err := netip.ParseAddr(address)
	if err == nil {
		return TCP, nil
	}

	if strings.HasPrefix(address, ":") {
		address = "0.0.0.0" + address
	}

	_, err = netip.ParseAddrPort(address)
	if err == nil {
		return TCP, nil
	}

	return NotSet, neterr.ErrAddressFormatUnknown
}

// ResolveAddrPort Resolve a host string and port to a bindable or
// connectable address
func ResolveAddrPort(host string, port uint16) (netip.AddrPort, error) {
	host = strings.TrimSpace(host)

	switch host {
	case "", "0.0.0.0":
		return netip.AddrPortFrom(netip.IPv4Unspecified(), port), nil
	case "localhost":
		return netip.AddrPortFrom(netip.AddrFrom4([4]byte{127, 0, 0, 1}), port), nil
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w : %s", neterr.ErrAddressFormatUnknown, host)
	}

	return netip.AddrPortFrom(addr.Unmap(), port), nil
}

// GetHostAndPortFromAddress Split a "host:port" address string
func GetHostAndPortFromAddress(address string) (host string, port uint16, err error) {
	addrParts := strings.Split(address, ":")
	if len(addrParts) != 2 {
		return "", 0, neterr.ErrAddressFormatUnknown
	}

	p, err := strconv.ParseUint(addrParts[1], 10, 16)
	if err != nil {
		return "", 0, neterr.ErrAddressFormatUnknown
	}

	port = uint16(p)

	host = addrParts[0]
	if host == "" {
		host = "0.0.0.0"
	}

	return host, port, nil
}

// GetAddressFromHostAndPort Join a host and port into an address
// string
func GetAddressFromHostAndPort(host string, port uint16) (string, error) {
	address := fmt.Sprintf("%s:%d", host, port)
	_, err := GetTypeFromAddress(address)
	return address, err
}
