package client

import (
	"fmt"
	"net/netip"

	"golang.org/x/text/encoding"

	"github.com/kaba4cow/net/internal/config"
	_config "github.com/kaba4cow/net/internal/config/client"
	"github.com/kaba4cow/net/internal/node"
	"github.com/kaba4cow/net/internal/poll"
	"github.com/kaba4cow/net/internal/socket"
	"github.com/kaba4cow/net/internal/transport"
	"github.com/kaba4cow/net/pkg/packet"
)

// UdpClient Exchanges datagrams with one fixed remote endpoint.  The
// socket is neither bound nor connected; the remote address is
// supplied on every send, and inbound datagrams are delivered
// without their sender address.
type UdpClient struct {
	config.DefaultConfigurable[_config.Config]
	node.Node

	fd int
}

func NewUdpClient(cfg _config.Config) (*UdpClient, error) {
	c := &UdpClient{fd: -1}
	c.SetConfig(cfg)

	remote, err := transport.ResolveAddrPort(cfg.RemoteAddress, cfg.RemotePort)
	if err != nil {
		return nil, err
	}

	err = c.Node.Configure(remote, bufferSize(cfg.BufferSize), errorChanSize(cfg.ErrorChanBufferSize), c, "udp-client")
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *UdpClient) InitChannel(selector *poll.Selector, addr netip.AddrPort) (int, error) {
	fd, err := socket.NewUDP(addr)
	if err != nil {
		return -1, err
	}

	err = selector.Add(fd, poll.Readable)
	if err != nil {
		_ = socket.Close(fd)
		return -1, err
	}

	c.fd = fd
	return fd, nil
}

// Update One datagram per readable event, truncated to the scratch
// buffer capacity when larger.
func (c *UdpClient) Update(events []poll.Event) error {
	for _, event := range events {
		if event.FD != c.fd || !event.Readable {
			continue
		}

		count, _, status, err := socket.RecvFrom(c.fd, c.Buffer())
		switch status {
		case socket.ReadAgain:
			continue
		case socket.ReadFailed:
			return err
		}

		if onReceived := c.Config().OnPacketReceived; onReceived != nil {
			data := make([]byte, count)
			copy(data, c.Buffer()[:count])

			if err = onReceived(packet.FromBytes(data)); err != nil {
				return err
			}
		}
	}
	return nil
}

// SendPacket Write one datagram to the configured remote address
func (c *UdpClient) SendPacket(p *packet.Packet) error {
	if err := c.RequireState(node.Running); err != nil {
		return err
	}

	if err := socket.SendTo(c.fd, p.Bytes(), c.Addr()); err != nil {
		return err
	}

	if onSent := c.Config().OnPacketSent; onSent != nil {
		return onSent(p)
	}
	return nil
}

func (c *UdpClient) Send(data []byte) error {
	return c.SendPacket(packet.FromBytes(data))
}

func (c *UdpClient) SendString(s string) error {
	return c.SendPacket(packet.FromString(s))
}

func (c *UdpClient) SendStringEncoding(s string, enc encoding.Encoding) error {
	p, err := packet.FromStringEncoding(s, enc)
	if err != nil {
		return err
	}
	return c.SendPacket(p)
}

func (c *UdpClient) OnStarted() error {
	if onStarted := c.Config().OnStarted; onStarted != nil {
		return onStarted()
	}
	return nil
}

func (c *UdpClient) OnClosing() error {
	if onClosing := c.Config().OnClosing; onClosing != nil {
		return onClosing()
	}
	return nil
}

func (c *UdpClient) OnClosed() error {
	if onClosed := c.Config().OnClosed; onClosed != nil {
		return onClosed()
	}
	return nil
}

func (c *UdpClient) OnError(err error) {
	if onError := c.Config().OnError; onError != nil {
		onError(err)
	}
}

func (c *UdpClient) String() string {
	return fmt.Sprintf("UDPClient [address=%s]", c.Addr())
}
