package server

import (
	"fmt"
	"net/netip"

	"github.com/kaba4cow/net/internal/config"
	_config "github.com/kaba4cow/net/internal/config/server"
	"github.com/kaba4cow/net/internal/node"
	"github.com/kaba4cow/net/internal/poll"
	"github.com/kaba4cow/net/internal/socket"
	"github.com/kaba4cow/net/internal/transport"
)

// UdpServer Receives datagrams on a bound socket and materializes an
// ephemeral peer per sender address.  No registry is kept: peers are
// transient values, not tracked entities.
type UdpServer struct {
	config.DefaultConfigurable[_config.Config]
	node.Node

	channelFd int
}

func NewUdpServer(cfg _config.Config) (*UdpServer, error) {
	s := &UdpServer{channelFd: -1}
	s.SetConfig(cfg)

	addr, err := transport.ResolveAddrPort(cfg.Address, cfg.Port)
	if err != nil {
		return nil, err
	}

	err = s.Node.Configure(addr, bufferSize(cfg.BufferSize), errorChanSize(cfg.ErrorChanBufferSize), s, "udp-server")
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *UdpServer) InitChannel(selector *poll.Selector, addr netip.AddrPort) (int, error) {
	fd, err := socket.ListenUDP(addr)
	if err != nil {
		return -1, err
	}

	err = selector.Add(fd, poll.Readable)
	if err != nil {
		_ = socket.Close(fd)
		return -1, err
	}

	s.channelFd = fd
	return fd, nil
}

// Update One datagram per readable event.  A datagram larger than
// the scratch buffer is delivered truncated to its capacity.
func (s *UdpServer) Update(events []poll.Event) error {
	for _, event := range events {
		if event.FD != s.channelFd || !event.Readable {
			continue
		}

		count, sender, status, err := socket.RecvFrom(s.channelFd, s.Buffer())
		switch status {
		case socket.ReadAgain:
			continue
		case socket.ReadFailed:
			return err
		}

		if onPacket := s.Config().OnPacket; onPacket != nil {
			peer := &UdpPeer{server: s, addr: sender}
			peer.ConfigureSender(peer.Send)

			data := make([]byte, count)
			copy(data, s.Buffer()[:count])

			if err = onPacket(peer, data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *UdpServer) OnStarted() error {
	if onStarted := s.Config().OnStarted; onStarted != nil {
		return onStarted()
	}
	return nil
}

func (s *UdpServer) OnClosing() error {
	if onClosing := s.Config().OnClosing; onClosing != nil {
		return onClosing()
	}
	return nil
}

func (s *UdpServer) OnClosed() error {
	if onClosed := s.Config().OnClosed; onClosed != nil {
		return onClosed()
	}
	return nil
}

func (s *UdpServer) OnError(err error) {
	if onError := s.Config().OnError; onError != nil {
		onError(err)
	}
}

// PeerCount Needed to implement the Server interface; a UDP server
// tracks no peers
func (s *UdpServer) PeerCount() int {
	return 0
}

// Peers Needed to implement the Server interface
func (s *UdpServer) Peers() []node.Peer {
	return nil
}

func (s *UdpServer) String() string {
	return fmt.Sprintf("UDPServer [address=%s, state=%s]", s.Addr(), s.State())
}

/*******************************************************************************
 PEER
*******************************************************************************/

// UdpPeer Stateless value created fresh for every received datagram;
// no identity persists across datagrams.
type UdpPeer struct {
	node.DefaultSender

	server *UdpServer
	addr   netip.AddrPort
}

func (p *UdpPeer) Addr() netip.AddrPort {
	return p.addr
}

func (p *UdpPeer) Send(data []byte) error {
	if err := p.server.RequireState(node.Running); err != nil {
		return err
	}
	return socket.SendTo(p.server.channelFd, data, p.addr)
}

// Close Needed to implement the Peer interface; an ephemeral peer
// holds no resources
func (p *UdpPeer) Close() error {
	return nil
}

func (p *UdpPeer) String() string {
	return p.addr.String()
}
