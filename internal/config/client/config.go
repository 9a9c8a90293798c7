package client

import (
	"github.com/kaba4cow/net/pkg/packet"
)

const (
	defaultErrorChanBufferSize = 100   // error count
	defaultBufferSize          = 1500  // byte count, should match transport MTU
	defaultConnectionless      = false // if true uses UDP instead of TCP
)

type Config struct {
	RemoteAddress       string
	RemotePort          uint16
	BufferSize          int
	ErrorChanBufferSize int
	Connectionless      bool

	// Node lifecycle hooks, all optional.  They run on the loop
	// thread; an error returned from one of them aborts the loop.
	OnStarted func() error
	OnClosing func() error
	OnClosed  func() error
	OnError   func(err error)

	// OnConnected TCP only: fires once the connect handshake
	// completes.  The node is already RUNNING, so sending from this
	// hook is valid.
	OnConnected func() error

	// OnPacket TCP only: one raw stream chunk per readable event.
	// Chunk boundaries carry no meaning.  An error returned here
	// closes the client.
	OnPacket func(data []byte) error

	// OnPacketReceived/OnPacketSent UDP only: one packet per
	// datagram.  The sender address is not surfaced; a UDP client
	// exchanges data with its one configured remote endpoint.
	OnPacketReceived func(p *packet.Packet) error
	OnPacketSent     func(p *packet.Packet) error
}

func NewConfig(remoteAddress string, remotePort uint16) Config {
	cfg := Config{
		RemoteAddress:       remoteAddress,
		RemotePort:          remotePort,
		BufferSize:          defaultBufferSize,
		ErrorChanBufferSize: defaultErrorChanBufferSize,
		Connectionless:      defaultConnectionless,
	}
	return cfg
}
