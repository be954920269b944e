package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/netip"
	"sync/atomic"

	"ichat/internal/core"
	"ichat/internal/wire"
)

// PacketWriter is the outbound half of the UDP socket. *net.UDPConn
// satisfies it; tests inject a recorder instead.
type PacketWriter interface {
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
}

// Server owns the chat socket and the shared state. One ingress pump reads
// the socket; every datagram is handled on its own goroutine.
type Server struct {
	conn    *net.UDPConn
	out     PacketWriter
	roster  *core.Roster
	history *core.History
	pings   *core.PendingPings

	// Counters for the metrics ticker (reset on each Stats call).
	rxDatagrams atomic.Uint64
	rxBytes     atomic.Uint64
	txDatagrams atomic.Uint64
	txBytes     atomic.Uint64
}

func NewServer(conn *net.UDPConn, roster *core.Roster, history *core.History, pings *core.PendingPings) *Server {
	return &Server{
		conn:    conn,
		out:     conn,
		roster:  roster,
		history: history,
		pings:   pings,
	}
}

// Run is the ingress pump. It reads one datagram at a time and hands each
// (payload, source) pair to a fire-and-forget handler goroutine, so a slow
// handler never blocks the socket. Run returns when ctx is canceled or the
// socket fails.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.conn.Close()
	}()

	buf := make([]byte, wire.BufferSize)
	for {
		n, src, err := s.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.rxDatagrams.Add(1)
		s.rxBytes.Add(uint64(n))

		payload := make([]byte, n)
		copy(payload, buf[:n])
		go s.handle(payload, src)
	}
}

// send transmits one frame to addr. Send failures are logged and dropped —
// the transport is unreliable anyway and a dead peer is the pinger's
// problem, not the sender's.
func (s *Server) send(addr netip.AddrPort, payload []byte) {
	n, err := s.out.WriteToUDPAddrPort(payload, addr)
	if err != nil {
		log.Printf("[server] send to %s dropped: %v", addr, err)
		return
	}
	s.txDatagrams.Add(1)
	s.txBytes.Add(uint64(n))
}

// Stats returns the datagram/byte counters accumulated since the last call
// and resets them.
func (s *Server) Stats() (rxDatagrams, rxBytes, txDatagrams, txBytes uint64) {
	return s.rxDatagrams.Swap(0), s.rxBytes.Swap(0),
		s.txDatagrams.Swap(0), s.txBytes.Swap(0)
}
