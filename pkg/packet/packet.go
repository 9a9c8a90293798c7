package packet

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding"

	"github.com/kaba4cow/net/pkg/stream"
)

// Packet Immutable byte payload exchanged between nodes.  Every
// conversion is a non-mutating view or copy; the zero value is an
// empty packet.
//
// Construct packets with FromBytes, FromString or
// FromStringEncoding.  A packet never aliases a node's scratch
// buffer: nodes hand packets a fresh copy of the received bytes.
type Packet struct {
	data []byte
}

// FromBytes Wrap a byte slice in a packet.  The caller must not
// modify the slice afterwards.
func FromBytes(data []byte) *Packet {
	return &Packet{data: data}
}

// FromString Encode a string as UTF-8 packet data
func FromString(s string) *Packet {
	return FromBytes([]byte(s))
}

// FromStringEncoding Encode a string into packet data using the
// given character encoding
func FromStringEncoding(s string, enc encoding.Encoding) (*Packet, error) {
	data, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, err
	}
	return FromBytes(data), nil
}

// Bytes Raw packet data.  The returned slice must not be modified.
func (p *Packet) Bytes() []byte {
	return p.data
}

// String Decode the packet data as UTF-8
func (p *Packet) String() string {
	return string(p.data)
}

// StringEncoding Decode the packet data using the given character
// encoding
func (p *Packet) StringEncoding(enc encoding.Encoding) (string, error) {
	data, err := enc.NewDecoder().Bytes(p.data)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Buffer Fixed read-only buffer view over the packet data
func (p *Packet) Buffer() *bytes.Reader {
	return bytes.NewReader(p.data)
}

// Reader Stream view over the packet data
func (p *Packet) Reader() *stream.DataReader {
	return stream.NewDataReader(p.data)
}

// Len Number of bytes in the packet
func (p *Packet) Len() int {
	return len(p.data)
}

// GoString Debug formatting, e.g. "Packet [5 bytes]"
func (p *Packet) GoString() string {
	return fmt.Sprintf("Packet [%d bytes]", len(p.data))
}
