package main

import (
	"context"
	"fmt"
	"log"
	"net/netip"
	"time"

	"ichat/internal/wire"
)

// Pinger is the liveness monitor. On every tick it pings clients that have
// been idle past the inactivity threshold, then evicts clients whose ping
// went unanswered past the timeout.
type Pinger struct {
	srv     *Server
	tick    time.Duration
	idle    time.Duration
	timeout time.Duration
	ping    []byte
}

func NewPinger(srv *Server, tick, idle, timeout time.Duration) *Pinger {
	ping, err := wire.Format(wire.CmdPing, "\n")
	if err != nil {
		panic(err) // constant frame, cannot fail
	}
	return &Pinger{srv: srv, tick: tick, idle: idle, timeout: timeout, ping: ping}
}

// Run sweeps on a fixed tick until ctx is canceled.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			p.sweep(now)
		}
	}
}

// sweep runs one monitor pass: newly idle clients are pinged first,
// timed-out pings are evicted second, so a client pinged on this tick gets
// the full timeout before the next sweep can touch it.
func (p *Pinger) sweep(now time.Time) {
	for _, addr := range p.srv.roster.IdleSince(now.Add(-p.idle)) {
		if p.srv.pings.Mark(addr, now) {
			p.srv.send(addr, p.ping)
		}
	}

	p.srv.pings.Range(func(addr netip.AddrPort, sent time.Time) bool {
		if !p.srv.pings.TakeExpired(addr, now, p.timeout) {
			return true // replied, or not yet due
		}
		name, err := p.srv.roster.RemoveByAddr(addr)
		if err != nil {
			return true // already gone via disconn or kick
		}
		log.Printf("[pinger] evicted %s (%s): no ret-ping within %s", name, addr, p.timeout)
		p.srv.broadcastSystem(fmt.Sprintf("%s has been removed due to inactivity", name))
		return true
	})
}
