package server

import (
	"net/netip"

	"github.com/kaba4cow/net/internal/config"
	_config "github.com/kaba4cow/net/internal/config/server"
	"github.com/kaba4cow/net/internal/neterr"
	"github.com/kaba4cow/net/internal/node"
	_server "github.com/kaba4cow/net/internal/server"
)

// Peer Addressable endpoint capable of receiving sent data.
// Persistent for TCP servers, ephemeral per datagram for UDP
// servers.
type Peer = node.Peer

// Server Public interface for working with instances of Server.
// Start blocks the calling goroutine in the readiness loop; Close is
// the only method that is safe to call from another goroutine.
type Server interface {
	config.Configurable[_config.Config]
	Start() error
	Close()
	node.Stateful
	RequireState(node.State) error
	Addr() netip.AddrPort
	PeerCount() int
	Peers() []Peer
	neterr.Producer
}

// New Create a new instance of Server.  The multiplexer is opened
// and the channel is bound here: a server that cannot initialize
// never comes into existence.
func New(cfg _config.Config) (Server, error) {
	if cfg.Connectionless {
		s, err := _server.NewUdpServer(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	s, err := _server.NewTcpServer(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
