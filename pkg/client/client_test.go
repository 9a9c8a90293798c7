package client_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaba4cow/net/internal/node"
	"github.com/kaba4cow/net/pkg/client"
	"github.com/kaba4cow/net/pkg/neterr"
	"github.com/kaba4cow/net/pkg/packet"
)

const (
	waitTimeout = 3 * time.Second
	waitTick    = 5 * time.Millisecond
)

func TestTcpClientSendBeforeStart(t *testing.T) {
	cli, err := client.New(client.NewConfig("localhost", 9321))
	require.NoError(t, err)
	defer cli.Close()

	assert.Equal(t, node.None, cli.State())
	assert.ErrorIs(t, cli.Send([]byte("early")), neterr.ErrIllegalState)
	assert.ErrorIs(t, cli.SendString("early"), neterr.ErrIllegalState)
}

func TestTcpClientConnectRefused(t *testing.T) {
	// nothing listens on this port
	cli, err := client.New(client.NewConfig("localhost", 9322))
	require.NoError(t, err)

	err = cli.Start()
	require.Error(t, err)
	assert.Equal(t, node.Closed, cli.State())

	assert.ErrorIs(t, cli.Send([]byte("late")), neterr.ErrIllegalState)
}

func TestUdpClientSendBeforeStart(t *testing.T) {
	cli, err := client.New(client.NewConfig("localhost", 9323, true))
	require.NoError(t, err)
	defer cli.Close()

	assert.ErrorIs(t, cli.SendPacket(packet.FromString("early")), neterr.ErrIllegalState)
}

func TestUdpClientSendAfterClose(t *testing.T) {
	cli, err := client.New(client.NewConfig("localhost", 9324, true))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- cli.Start() }()

	require.Eventually(t, func() bool {
		return cli.State() == node.Running
	}, waitTimeout, waitTick)

	require.NoError(t, cli.SendString("alive"))

	cli.Close()
	require.NoError(t, <-done)
	require.Equal(t, node.Closed, cli.State())

	assert.ErrorIs(t, cli.SendString("dead"), neterr.ErrIllegalState)
}

func TestClientAddrIsRemoteEndpoint(t *testing.T) {
	cli, err := client.New(client.NewConfig("127.0.0.1", 9325, true))
	require.NoError(t, err)
	defer cli.Close()

	assert.Equal(t, "127.0.0.1:9325", cli.Addr().String())
}
