package server

import (
	"fmt"
	"net/netip"
	"sync"

	"github.com/kaba4cow/net/internal/config"
	_config "github.com/kaba4cow/net/internal/config/server"
	"github.com/kaba4cow/net/internal/node"
	"github.com/kaba4cow/net/internal/poll"
	"github.com/kaba4cow/net/internal/socket"
	"github.com/kaba4cow/net/internal/transport"
	"github.com/kaba4cow/net/pkg/neterr"
)

// TcpServer Accepts connections on a bound listening socket, tracks
// connected peers and delivers stream data per peer.  Registry
// mutation happens exclusively on the loop thread; calling a peer's
// Close from another thread is not synchronized with it.
type TcpServer struct {
	config.DefaultConfigurable[_config.Config]
	node.Node

	listenFd int

	peersMutex sync.RWMutex
	peers      map[int]*TcpPeer
}

func NewTcpServer(cfg _config.Config) (*TcpServer, error) {
	s := &TcpServer{
		listenFd: -1,
		peers:    make(map[int]*TcpPeer),
	}
	s.SetConfig(cfg)

	addr, err := transport.ResolveAddrPort(cfg.Address, cfg.Port)
	if err != nil {
		return nil, err
	}

	err = s.Node.Configure(addr, bufferSize(cfg.BufferSize), errorChanSize(cfg.ErrorChanBufferSize), s, "tcp-server")
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *TcpServer) InitChannel(selector *poll.Selector, addr netip.AddrPort) (int, error) {
	fd, err := socket.ListenTCP(addr)
	if err != nil {
		return -1, err
	}

	err = selector.Add(fd, poll.Readable)
	if err != nil {
		_ = socket.Close(fd)
		return -1, err
	}

	s.listenFd = fd
	return fd, nil
}

func (s *TcpServer) Update(events []poll.Event) error {
	for _, event := range events {
		if !event.Readable {
			continue
		}

		if event.FD == s.listenFd {
			s.accept()
			continue
		}

		if peer := s.peer(event.FD); peer != nil {
			s.readPeer(peer)
		}
	}
	return nil
}

// accept Accept one pending connection.  The absence of a pending
// connection is not an error; any other accept failure is reported
// and never aborts the server loop.
func (s *TcpServer) accept() {
	fd, remote, err := socket.Accept(s.listenFd)
	if err != nil {
		s.SendError(err)
		return
	}
	if fd < 0 {
		return
	}

	peer := &TcpPeer{server: s, fd: fd, addr: remote}
	peer.ConfigureSender(peer.Send)

	err = s.Selector().Add(fd, poll.Readable)
	if err != nil {
		s.SendError(err)
		_ = socket.Close(fd)
		return
	}

	s.peersMutex.Lock()
	s.peers[fd] = peer
	s.peersMutex.Unlock()

	s.Logger().WithField("peer", remote).Debug("peer connected")

	if onOpened := s.Config().OnPeerOpened; onOpened != nil {
		if err = onOpened(peer); err != nil {
			s.closePeer(peer, err)
		}
	}
}

// readPeer Read one chunk from a peer.  Remote closure and I/O
// failure close that peer only.
func (s *TcpServer) readPeer(peer *TcpPeer) {
	count, status, err := socket.ReadStream(peer.fd, s.Buffer())
	switch status {
	case socket.ReadAgain:
		return
	case socket.ReadClosed:
		s.closePeer(peer, nil)
	case socket.ReadFailed:
		s.closePeer(peer, err)
	case socket.ReadData:
		if onPacket := s.Config().OnPacket; onPacket != nil {
			data := make([]byte, count)
			copy(data, s.Buffer()[:count])
			if err = onPacket(peer, data); err != nil {
				s.closePeer(peer, err)
			}
		}
	}
}

func (s *TcpServer) closePeer(peer *TcpPeer, cause error) {
	if cause != nil {
		s.SendError(cause)
	}
	if err := peer.Close(); err != nil {
		s.SendError(err)
	}
}

func (s *TcpServer) OnStarted() error {
	if onStarted := s.Config().OnStarted; onStarted != nil {
		return onStarted()
	}
	return nil
}

func (s *TcpServer) OnClosing() error {
	for _, peer := range s.peerSnapshot() {
		if err := peer.Close(); err != nil {
			s.SendError(err)
		}
	}

	if onClosing := s.Config().OnClosing; onClosing != nil {
		return onClosing()
	}
	return nil
}

func (s *TcpServer) OnClosed() error {
	if onClosed := s.Config().OnClosed; onClosed != nil {
		return onClosed()
	}
	return nil
}

func (s *TcpServer) OnError(err error) {
	if onError := s.Config().OnError; onError != nil {
		onError(err)
	}
}

func (s *TcpServer) PeerCount() int {
	s.peersMutex.RLock()
	defer s.peersMutex.RUnlock()
	return len(s.peers)
}

func (s *TcpServer) Peers() []node.Peer {
	s.peersMutex.RLock()
	defer s.peersMutex.RUnlock()

	peers := make([]node.Peer, 0, len(s.peers))
	for _, peer := range s.peers {
		peers = append(peers, peer)
	}
	return peers
}

func (s *TcpServer) String() string {
	return fmt.Sprintf("TCPServer [address=%s, state=%s, peers=%d]", s.Addr(), s.State(), s.PeerCount())
}

func (s *TcpServer) peer(fd int) *TcpPeer {
	s.peersMutex.RLock()
	defer s.peersMutex.RUnlock()
	return s.peers[fd]
}

func (s *TcpServer) peerSnapshot() []*TcpPeer {
	s.peersMutex.RLock()
	defer s.peersMutex.RUnlock()

	peers := make([]*TcpPeer, 0, len(s.peers))
	for _, peer := range s.peers {
		peers = append(peers, peer)
	}
	return peers
}

func (s *TcpServer) removePeer(fd int) {
	s.peersMutex.Lock()
	delete(s.peers, fd)
	s.peersMutex.Unlock()
}

/*******************************************************************************
 PEER
*******************************************************************************/

// TcpPeer One accepted connection.  The remote address is captured
// at accept time and immutable; identity is pointer identity, which
// ties a peer to its owning server and channel.
type TcpPeer struct {
	node.DefaultSender

	server *TcpServer
	fd     int
	addr   netip.AddrPort
	closed bool
}

func (p *TcpPeer) Addr() netip.AddrPort {
	return p.addr
}

func (p *TcpPeer) Send(data []byte) error {
	if err := p.server.RequireState(node.Running); err != nil {
		return err
	}
	if p.closed {
		return neterr.ErrPeerClosed
	}

	_, err := socket.Write(p.fd, data)
	return err
}

// Close Run the peer close sequence exactly once: closing hook,
// channel closure, registry removal, closed hook.  Invoked by
// disconnect detection, read failure or an explicit caller request.
func (p *TcpPeer) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	cfg := p.server.Config()

	var hookErr error
	if cfg.OnPeerClosing != nil {
		hookErr = cfg.OnPeerClosing(p)
	}

	_ = p.server.Selector().Remove(p.fd)
	closeErr := socket.Close(p.fd)
	p.server.removePeer(p.fd)

	if cfg.OnPeerClosed != nil {
		if err := cfg.OnPeerClosed(p); err != nil && hookErr == nil {
			hookErr = err
		}
	}

	p.server.Logger().WithField("peer", p.addr).Debug("peer closed")

	if hookErr != nil {
		return hookErr
	}
	return closeErr
}

func (p *TcpPeer) String() string {
	return p.addr.String()
}
