package server

import (
	"github.com/kaba4cow/net/internal/node"
)

const (
	defaultErrorChanBufferSize = 100   // error count
	defaultBufferSize          = 1500  // byte count, should match transport MTU
	defaultConnectionless      = false // if true uses UDP instead of TCP
)

type Config struct {
	Address             string
	Port                uint16
	BufferSize          int
	ErrorChanBufferSize int
	Connectionless      bool

	// Node lifecycle hooks, all optional.  They run on the loop
	// thread; an error returned from one of them aborts the loop.
	OnStarted func() error
	OnClosing func() error
	OnClosed  func() error
	OnError   func(err error)

	// Peer hooks.  For TCP every accepted connection passes through
	// opened/closing/closed exactly once; for UDP peers are
	// ephemeral per-datagram values and only OnPacket fires.  An
	// error returned from a TCP peer hook or OnPacket closes that
	// peer only, it never aborts the server loop.
	OnPeerOpened  func(peer node.Peer) error
	OnPeerClosing func(peer node.Peer) error
	OnPeerClosed  func(peer node.Peer) error
	OnPacket      func(peer node.Peer, data []byte) error
}

func NewConfig(address string, port uint16) Config {
	cfg := Config{
		Address:             address,
		Port:                port,
		BufferSize:          defaultBufferSize,
		ErrorChanBufferSize: defaultErrorChanBufferSize,
		Connectionless:      defaultConnectionless,
	}
	return cfg
}
