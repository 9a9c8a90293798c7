package socket

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func newStreamPair(t *testing.T) [2]int {
	t.Helper()

	pair, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = unix.Close(pair[0])
		_ = unix.Close(pair[1])
	})
	return [2]int{pair[0], pair[1]}
}

func TestReadStreamClassification(t *testing.T) {
	fds := newStreamPair(t)
	buffer := make([]byte, 16)

	// nothing written yet
	count, status, err := ReadStream(fds[0], buffer)
	require.NoError(t, err)
	assert.Equal(t, ReadAgain, status)
	assert.Zero(t, count)

	// data pending
	_, err = unix.Write(fds[1], []byte("abc"))
	require.NoError(t, err)

	count, status, err = ReadStream(fds[0], buffer)
	require.NoError(t, err)
	assert.Equal(t, ReadData, status)
	assert.Equal(t, "abc", string(buffer[:count]))

	// remote closure
	require.NoError(t, unix.Close(fds[1]))

	_, status, err = ReadStream(fds[0], buffer)
	require.NoError(t, err)
	assert.Equal(t, ReadClosed, status)
}

func TestWriteReportsCount(t *testing.T) {
	fds := newStreamPair(t)

	count, err := Write(fds[0], []byte("ping"))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRecvFromTruncatesToBuffer(t *testing.T) {
	serverFd, err := ListenUDP(netip.MustParseAddrPort("127.0.0.1:0"))
	require.NoError(t, err)
	defer Close(serverFd)

	serverAddr, err := LocalAddr(serverFd)
	require.NoError(t, err)

	clientFd, err := NewUDP(serverAddr)
	require.NoError(t, err)
	defer Close(clientFd)

	payload := []byte("0123456789abcdef0123456789abcdef")
	require.NoError(t, SendTo(clientFd, payload, serverAddr))

	buffer := make([]byte, 8)
	deadline := time.Now().Add(3 * time.Second)

	for {
		count, sender, status, err := RecvFrom(serverFd, buffer)
		if status == ReadAgain {
			require.True(t, time.Now().Before(deadline), "datagram never arrived")
			time.Sleep(10 * time.Millisecond)
			continue
		}

		require.NoError(t, err)
		require.Equal(t, ReadData, status)
		assert.Equal(t, len(buffer), count)
		assert.Equal(t, payload[:len(buffer)], buffer)
		assert.True(t, sender.IsValid())
		return
	}
}

func TestAcceptWithoutPendingConnection(t *testing.T) {
	listenFd, err := ListenTCP(netip.MustParseAddrPort("127.0.0.1:0"))
	require.NoError(t, err)
	defer Close(listenFd)

	fd, _, err := Accept(listenFd)
	require.NoError(t, err)
	assert.Equal(t, -1, fd)
}
