package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaba4cow/net/pkg/neterr"
)

func TestGetTypeFromAddress(t *testing.T) {
	for _, address := range []string{"localhost", "localhost:8080", "127.0.0.1", "0.0.0.0:9000", ":9000", "::1"} {
		addrType, err := GetTypeFromAddress(address)
		require.NoError(t, err, address)
		assert.Equal(t, TCP, addrType, address)
	}

	_, err := GetTypeFromAddress("")
	assert.ErrorIs(t, err, neterr.ErrAddressEmpty)

	_, err = GetTypeFromAddress("not-an-address")
	assert.ErrorIs(t, err, neterr.ErrAddressFormatUnknown)
}

func TestResolveAddrPort(t *testing.T) {
	addr, err := ResolveAddrPort("127.0.0.1", 8375)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8375", addr.String())

	addr, err = ResolveAddrPort("localhost", 8375)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8375", addr.String())

	addr, err = ResolveAddrPort("", 8375)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8375", addr.String())

	_, err = ResolveAddrPort("nope", 8375)
	assert.ErrorIs(t, err, neterr.ErrAddressFormatUnknown)
}

func TestHostAndPortRoundTrip(t *testing.T) {
	host, port, err := GetHostAndPortFromAddress("127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", host)
	assert.Equal(t, uint16(9000), port)

	host, _, err = GetHostAndPortFromAddress(":9000")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", host)

	_, _, err = GetHostAndPortFromAddress("9000")
	assert.ErrorIs(t, err, neterr.ErrAddressFormatUnknown)

	address, err := GetAddressFromHostAndPort("127.0.0.1", 9000)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", address)
}
