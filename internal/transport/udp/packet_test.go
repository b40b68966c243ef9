// SPDX-License-Identifier: MIT
package udp

import (
	applog "barscope/internal/log"
	"io"
	"net"
	"os"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	applog.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAppendPacket(t *testing.T) {
	t.Parallel()

	b := AppendPacket(nil, 7, 123456789, []int{0, 560, -5, 70000})
	if len(b) != HeaderSize+4*2 {
		t.Fatalf("len = %d, want %d", len(b), HeaderSize+8)
	}

	p, err := DecodePacket(b)
	if err != nil {
		t.Fatalf("DecodePacket() error = %v", err)
	}
	if p.Seq != 7 || p.Timestamp != 123456789 {
		t.Errorf("header = (%d, %d), want (7, 123456789)", p.Seq, p.Timestamp)
	}
	want := []int{0, 560, 0, 65535}
	for i := range want {
		if p.Heights[i] != want[i] {
			t.Errorf("Heights[%d] = %d, want %d", i, p.Heights[i], want[i])
		}
	}
}

func TestDecodePacketErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		b    []byte
	}{
		{"empty", nil},
		{"short header", make([]byte, HeaderSize-1)},
		{"truncated payload", AppendPacket(nil, 1, 1, []int{1, 2})[:HeaderSize+3]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePacket(tt.b); err == nil {
				t.Error("DecodePacket() expected error")
			}
		})
	}
}

func TestAppendPacketReusesBuffer(t *testing.T) {
	heights := make([]int, 64)
	buf := make([]byte, 0, HeaderSize+2*len(heights))

	allocs := testing.AllocsPerRun(100, func() {
		buf = AppendPacket(buf[:0], 1, 2, heights)
	})
	if allocs > 0 {
		t.Errorf("AppendPacket allocated %.1f times, want 0", allocs)
	}
}

func TestTransportSendsDatagrams(t *testing.T) {
	ln, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP() error = %v", err)
	}
	defer ln.Close()

	tr, err := NewTransport(ln.LocalAddr().String(), 3)
	if err != nil {
		t.Fatalf("NewTransport() error = %v", err)
	}
	tr.now = func() time.Time { return time.Unix(0, 42) }

	for _, frame := range [][]int{{1, 2, 3}, {4, 5, 6}} {
		if err := tr.Send(frame); err != nil {
			t.Fatalf("Send() error = %v", err)
		}
	}

	buf := make([]byte, 1500)
	for seq := uint32(1); seq <= 2; seq++ {
		ln.SetReadDeadline(time.Now().Add(2 * time.Second))
		n, _, err := ln.ReadFromUDP(buf)
		if err != nil {
			t.Fatalf("ReadFromUDP() error = %v", err)
		}
		p, err := DecodePacket(buf[:n])
		if err != nil {
			t.Fatalf("DecodePacket() error = %v", err)
		}
		if p.Seq != seq || p.Timestamp != 42 {
			t.Errorf("packet %d header = (%d, %d)", seq, p.Seq, p.Timestamp)
		}
		if p.Heights[0] != int(3*seq-2) {
			t.Errorf("packet %d Heights = %v", seq, p.Heights)
		}
	}

	if err := tr.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := tr.Send([]int{1, 2, 3}); err == nil {
		t.Error("Send() after Close expected error")
	}
	if err := tr.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNewTransportErrors(t *testing.T) {
	t.Parallel()

	if _, err := NewTransport("not an address", 4); err == nil {
		t.Error("NewTransport() expected error for bad address")
	}
	if _, err := NewTransport("127.0.0.1:9", MaxBars+1); err == nil {
		t.Error("NewTransport() expected error for too many bars")
	}
}
