package client

import (
	"net/netip"

	"golang.org/x/text/encoding"

	_client "github.com/kaba4cow/net/internal/client"
	"github.com/kaba4cow/net/internal/config"
	_config "github.com/kaba4cow/net/internal/config/client"
	"github.com/kaba4cow/net/internal/neterr"
	"github.com/kaba4cow/net/internal/node"
	"github.com/kaba4cow/net/pkg/packet"
)

// Client Public interface for working with instances of Client.  A
// client is the sole peer of its remote endpoint: the send forms
// mirror the Peer contract and require the RUNNING state.  Start
// blocks the calling goroutine in the readiness loop; Close and the
// send methods are safe to call from other goroutines.
type Client interface {
	config.Configurable[_config.Config]
	Start() error
	Close()
	node.Stateful
	RequireState(node.State) error
	Addr() netip.AddrPort
	Send(data []byte) error
	SendPacket(p *packet.Packet) error
	SendString(s string) error
	SendStringEncoding(s string, enc encoding.Encoding) error
	neterr.Producer
}

// New Create a new instance of Client.  The multiplexer and channel
// are opened here; for TCP the non-blocking connect is initiated and
// completes inside the loop once Start runs.
func New(cfg _config.Config) (Client, error) {
	if cfg.Connectionless {
		c, err := _client.NewUdpClient(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	c, err := _client.NewTcpClient(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
