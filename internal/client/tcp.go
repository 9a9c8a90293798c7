package client

import (
	"fmt"
	"net/netip"

	"github.com/kaba4cow/net/internal/config"
	_config "github.com/kaba4cow/net/internal/config/client"
	"github.com/kaba4cow/net/internal/node"
	"github.com/kaba4cow/net/internal/poll"
	"github.com/kaba4cow/net/internal/socket"
	"github.com/kaba4cow/net/internal/transport"
)

// TcpClient Establishes one outbound stream connection and exchanges
// data with it as the sole peer.  The channel starts in
// connect-pending state and switches to readable interest once the
// handshake completes.
type TcpClient struct {
	config.DefaultConfigurable[_config.Config]
	node.Node
	node.DefaultSender

	fd        int
	connected bool
}

func NewTcpClient(cfg _config.Config) (*TcpClient, error) {
	c := &TcpClient{fd: -1}
	c.SetConfig(cfg)
	c.ConfigureSender(c.Send)

	remote, err := transport.ResolveAddrPort(cfg.RemoteAddress, cfg.RemotePort)
	if err != nil {
		return nil, err
	}

	err = c.Node.Configure(remote, bufferSize(cfg.BufferSize), errorChanSize(cfg.ErrorChanBufferSize), c, "tcp-client")
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *TcpClient) InitChannel(selector *poll.Selector, addr netip.AddrPort) (int, error) {
	fd, err := socket.ConnectTCP(addr)
	if err != nil {
		return -1, err
	}

	err = selector.Add(fd, poll.Writable)
	if err != nil {
		_ = socket.Close(fd)
		return -1, err
	}

	c.fd = fd
	return fd, nil
}

func (c *TcpClient) Update(events []poll.Event) error {
	for _, event := range events {
		if event.FD != c.fd {
			continue
		}

		if !c.connected {
			if !event.Writable {
				continue
			}
			if err := c.finishConnect(); err != nil {
				return err
			}
			continue
		}

		if event.Readable {
			if done := c.read(); done {
				return nil
			}
		}
	}
	return nil
}

// finishConnect Complete the connect handshake and switch interest
// to readable.  A failed connect is fatal to this node.
func (c *TcpClient) finishConnect() error {
	if err := socket.FinishConnect(c.fd); err != nil {
		return err
	}

	if err := c.Selector().Modify(c.fd, poll.Readable); err != nil {
		return err
	}

	c.connected = true
	c.Logger().WithField("remote", c.Addr()).Debug("connected")

	if onConnected := c.Config().OnConnected; onConnected != nil {
		return onConnected()
	}
	return nil
}

// read One stream chunk.  Remote closure is not an error: it
// triggers a normal client closure.  Returns true when the node
// began closing and the cycle must not process further.
func (c *TcpClient) read() bool {
	count, status, err := socket.ReadStream(c.fd, c.Buffer())
	switch status {
	case socket.ReadAgain:
		return false
	case socket.ReadClosed:
		c.Node.Close()
		return true
	case socket.ReadFailed:
		c.SendError(err)
		c.Node.Close()
		return true
	}

	if onPacket := c.Config().OnPacket; onPacket != nil {
		data := make([]byte, count)
		copy(data, c.Buffer()[:count])

		if err = onPacket(data); err != nil {
			c.SendError(err)
			c.Node.Close()
			return true
		}
	}
	return false
}

func (c *TcpClient) Send(data []byte) error {
	if err := c.RequireState(node.Running); err != nil {
		return err
	}

	_, err := socket.Write(c.fd, data)
	return err
}

func (c *TcpClient) OnStarted() error {
	if onStarted := c.Config().OnStarted; onStarted != nil {
		return onStarted()
	}
	return nil
}

func (c *TcpClient) OnClosing() error {
	if onClosing := c.Config().OnClosing; onClosing != nil {
		return onClosing()
	}
	return nil
}

func (c *TcpClient) OnClosed() error {
	if onClosed := c.Config().OnClosed; onClosed != nil {
		return onClosed()
	}
	return nil
}

func (c *TcpClient) OnError(err error) {
	if onError := c.Config().OnError; onError != nil {
		onError(err)
	}
}

func (c *TcpClient) String() string {
	return fmt.Sprintf("TCPClient [address=%s, state=%s]", c.Addr(), c.State())
}
