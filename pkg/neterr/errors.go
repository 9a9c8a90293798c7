package neterr

import "errors"

const (
	IllegalState         = "illegal node state"
	NodeInitialization   = "failed to initialize node"
	AddressEmpty         = "address is empty"
	AddressFormatUnknown = "address does not match a known format"
	ConnectFailed        = "connection attempt failed"
	PeerClosed           = "peer is closed"
	NodeClosed           = "node is closed"
)

var (
	ErrIllegalState         = errors.New(IllegalState)
	ErrNodeInitialization   = errors.New(NodeInitialization)
	ErrAddressEmpty         = errors.New(AddressEmpty)
	ErrAddressFormatUnknown = errors.New(AddressFormatUnknown)
	ErrConnectFailed        = errors.New(ConnectFailed)
	ErrPeerClosed           = errors.New(PeerClosed)
	ErrNodeClosed           = errors.New(NodeClosed)
)
