// SPDX-License-Identifier: MIT
package udp

import (
	"barscope/internal/transport"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Bar Count         | uint16         | 2            | Number of heights (N)   |
| Heights           | []uint16       | N * 2        | Bar heights in pixels   |
+-----------------------------------------------------------------------------+
*/

// HeaderSize is the fixed size of the packet header in bytes.
const HeaderSize = 4 + 8 + 2

// MaxBars is the largest bar count a packet can describe.
const MaxBars = math.MaxUint16

var errPacketTooShort = errors.New("packet too short")

// Packet is one decoded datagram.
type Packet struct {
	Seq       uint32
	Timestamp int64
	Heights   []int
}

// AppendPacket appends the encoded packet to dst. Heights outside the uint16
// range are clamped.
func AppendPacket(dst []byte, seq uint32, timestamp int64, heights []int) []byte {
	dst = binary.BigEndian.AppendUint32(dst, seq)
	dst = binary.BigEndian.AppendUint64(dst, uint64(timestamp))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(heights)))
	for _, h := range heights {
		dst = binary.BigEndian.AppendUint16(dst, uint16(min(max(h, 0), math.MaxUint16)))
	}
	return dst
}

// DecodePacket parses a datagram produced by AppendPacket.
func DecodePacket(b []byte) (Packet, error) {
	if len(b) < HeaderSize {
		return Packet{}, errPacketTooShort
	}
	p := Packet{
		Seq:       binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
	}
	n := int(binary.BigEndian.Uint16(b[12:14]))
	payload := b[HeaderSize:]
	if len(payload) != 2*n {
		return Packet{}, fmt.Errorf("payload is %d bytes, header announces %d bars", len(payload), n)
	}
	p.Heights = make([]int, n)
	for i := range p.Heights {
		p.Heights[i] = int(binary.BigEndian.Uint16(payload[2*i:]))
	}
	return p, nil
}

// Transport packs each frame into a datagram and sends it with a Sender.
// Send is called from a single publisher goroutine.
type Transport struct {
	sender *Sender
	now    func() time.Time
	seq    uint32
	packet []byte // reused between sends
}

// NewTransport dials targetAddress ("host:port") and returns a Transport.
func NewTransport(targetAddress string, bars int) (*Transport, error) {
	if bars > MaxBars {
		return nil, fmt.Errorf("cannot send %d bars over UDP (max %d)", bars, MaxBars)
	}
	sender, err := NewSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return &Transport{
		sender: sender,
		now:    time.Now,
		packet: make([]byte, 0, HeaderSize+2*bars),
	}, nil
}

// Send encodes heights with the next sequence number and sends the packet.
func (t *Transport) Send(heights []int) error {
	t.seq++
	t.packet = AppendPacket(t.packet[:0], t.seq, t.now().UnixNano(), heights)
	return t.sender.Send(t.packet)
}

// Close closes the underlying sender.
func (t *Transport) Close() error {
	return t.sender.Close()
}

// Ensure Transport satisfies the interface at compile time.
var _ transport.Transport = (*Transport)(nil)
