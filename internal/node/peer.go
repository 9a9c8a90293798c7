package node

import (
	"net/netip"

	"golang.org/x/text/encoding"

	"github.com/kaba4cow/net/pkg/packet"
)

// Peer Addressable endpoint capable of receiving sent data.  Sends
// are synchronous and require the owning node to be RUNNING; partial
// writes on a full socket buffer are reported, not retried or
// queued.
type Peer interface {
	Addr() netip.AddrPort
	Send(data []byte) error
	SendPacket(p *packet.Packet) error
	SendString(s string) error
	SendStringEncoding(s string, enc encoding.Encoding) error
	Close() error
}

// DefaultSender Translates the packet and string send forms into the
// raw byte send a concrete peer implements
type DefaultSender struct {
	sendRaw func(data []byte) error
}

func (s *DefaultSender) ConfigureSender(sendRaw func(data []byte) error) {
	s.sendRaw = sendRaw
}

func (s *DefaultSender) SendPacket(p *packet.Packet) error {
	return s.sendRaw(p.Bytes())
}

func (s *DefaultSender) SendString(str string) error {
	return s.sendRaw([]byte(str))
}

func (s *DefaultSender) SendStringEncoding(str string, enc encoding.Encoding) error {
	p, err := packet.FromStringEncoding(str, enc)
	if err != nil {
		return err
	}
	return s.sendRaw(p.Bytes())
}
