package core

import (
	"net/netip"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// PendingPings tracks addresses that have been pinged and have not yet
// replied. At most one record exists per address. The map's atomic
// compute/delete operations make the ret-ping versus eviction race a single
// atomic decision: whoever removes the record first wins.
type PendingPings struct {
	m *xsync.MapOf[netip.AddrPort, time.Time]
}

func NewPendingPings() *PendingPings {
	return &PendingPings{m: xsync.NewMapOf[netip.AddrPort, time.Time]()}
}

// Mark records a ping sent to addr at now. It reports false when a ping is
// already outstanding for addr.
func (p *PendingPings) Mark(addr netip.AddrPort, now time.Time) bool {
	_, loaded := p.m.LoadOrStore(addr, now)
	return !loaded
}

// Clear drops the record for addr, if any. Called on ret-ping, disconn and
// kick; an eviction that has not yet fired is thereby preempted.
func (p *PendingPings) Clear(addr netip.AddrPort) {
	p.m.Delete(addr)
}

// TakeExpired atomically removes and reports the record for addr when its
// ping was sent at least timeout before now. If a concurrent Clear got
// there first, it reports false and no eviction happens.
func (p *PendingPings) TakeExpired(addr netip.AddrPort, now time.Time, timeout time.Duration) bool {
	expired := false
	p.m.Compute(addr, func(sent time.Time, loaded bool) (time.Time, bool) {
		if !loaded {
			return time.Time{}, true // nothing stored, keep it that way
		}
		if now.Sub(sent) >= timeout {
			expired = true
			return sent, true // delete the record
		}
		return sent, false
	})
	return expired
}

// Range calls f for each outstanding record until f returns false.
func (p *PendingPings) Range(f func(addr netip.AddrPort, sent time.Time) bool) {
	p.m.Range(f)
}

// Len returns the number of outstanding pings.
func (p *PendingPings) Len() int {
	return p.m.Size()
}
