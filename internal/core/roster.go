// Package core holds the chat server's shared state: the roster of
// connected clients, the bounded history ring, and the pending-ping set.
// The roster is the concurrency hub — readers proceed in parallel, writers
// are exclusive, and per-entry mute sets are mutated only under the write
// lock.
package core

import (
	"net/netip"
	"slices"
	"strings"
	"sync"
	"time"
)

// entry is one connected client. Entries live only inside the roster and
// are never handed out directly; callers get Member snapshots.
type entry struct {
	name       string
	addr       netip.AddrPort
	admin      bool
	lastActive time.Time
	muted      map[string]struct{}
}

// Member is a read-only snapshot of a roster entry, safe to use after the
// roster lock has been released.
type Member struct {
	Name       string
	Addr       netip.AddrPort
	Admin      bool
	LastActive time.Time
}

// Roster maps connected clients both ways: by transport address and by
// display name. The two indexes are mutated together under one write lock
// and therefore always agree.
type Roster struct {
	mu     sync.RWMutex
	byAddr map[netip.AddrPort]*entry
	byName map[string]*entry
}

func NewRoster() *Roster {
	return &Roster{
		byAddr: make(map[netip.AddrPort]*entry),
		byName: make(map[string]*entry),
	}
}

// Add inserts a new entry, failing if the name or the address is already
// present. When hist is non-nil, a replay snapshot of the history ring is
// captured inside the same critical section, so the join replay and any
// concurrent broadcast agree on the set of recorded messages: a broadcast
// either saw the new entry as a recipient or its line is in the snapshot.
func (r *Roster) Add(name string, addr netip.AddrPort, admin bool, hist *History) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; ok {
		return nil, ErrNameTaken
	}
	if _, ok := r.byAddr[addr]; ok {
		return nil, ErrAddrTaken
	}

	e := &entry{
		name:       name,
		addr:       addr,
		admin:      admin,
		lastActive: time.Now(),
		muted:      make(map[string]struct{}),
	}
	r.byName[name] = e
	r.byAddr[addr] = e

	if hist == nil {
		return nil, nil
	}
	return hist.Snapshot(), nil
}

// FindByAddr returns a snapshot of the entry at addr.
func (r *Roster) FindByAddr(addr netip.AddrPort) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byAddr[addr]
	if !ok {
		return Member{}, false
	}
	return snapshot(e), true
}

// FindByName returns a snapshot of the entry named name.
func (r *Roster) FindByName(name string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byName[name]
	if !ok {
		return Member{}, false
	}
	return snapshot(e), true
}

// RemoveByAddr deletes the entry at addr and returns its name.
func (r *Roster) RemoveByAddr(addr netip.AddrPort) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byAddr[addr]
	if !ok {
		return "", ErrNotFound
	}
	r.drop(e)
	return e.name, nil
}

// RemoveByName deletes the entry named name and returns its address.
func (r *Roster) RemoveByName(name string) (netip.AddrPort, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byName[name]
	if !ok {
		return netip.AddrPort{}, ErrNotFound
	}
	r.drop(e)
	return e.addr, nil
}

// drop removes e from both indexes and releases its mute set.
// Callers hold the write lock.
func (r *Roster) drop(e *entry) {
	delete(r.byAddr, e.addr)
	delete(r.byName, e.name)
	e.muted = nil
}

// Touch refreshes the last-active timestamp of the entry at addr. It is a
// no-op for unknown addresses.
func (r *Roster) Touch(addr netip.AddrPort) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.byAddr[addr]; ok {
		e.lastActive = time.Now()
	}
}

// Rename changes the display name of the entry at addr, re-keying the name
// index in the same critical section. Renaming to the current name is a
// successful no-op.
func (r *Roster) Rename(addr netip.AddrPort, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byAddr[addr]
	if !ok {
		return ErrNotFound
	}
	if newName == e.name {
		return nil
	}
	if _, taken := r.byName[newName]; taken {
		return ErrNameTaken
	}
	delete(r.byName, e.name)
	e.name = newName
	r.byName[newName] = e
	return nil
}

// Mute adds target to the mute set of the entry at addr. Muting yourself,
// muting from an unknown address, or muting a name that is not connected
// are all silent no-ops. Idempotent.
func (r *Roster) Mute(addr netip.AddrPort, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byAddr[addr]
	if !ok || target == e.name {
		return
	}
	if _, connected := r.byName[target]; !connected {
		return
	}
	e.muted[target] = struct{}{}
}

// Unmute removes target from the mute set of the entry at addr. Absent
// targets and unknown addresses are tolerated.
func (r *Roster) Unmute(addr netip.AddrPort, target string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.byAddr[addr]; ok {
		delete(e.muted, target)
	}
}

// Muted reports whether the entry at addr currently mutes sender.
func (r *Roster) Muted(addr netip.AddrPort, sender string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byAddr[addr]
	if !ok {
		return false
	}
	_, muted := e.muted[sender]
	return muted
}

// Recipients returns the delivery list for a broadcast from sender: every
// entry whose mute set does not contain sender, the sender included. When
// hist is non-nil, line is recorded in the history ring inside the same
// read-locked section, which keeps the ring and the recipient snapshots of
// concurrent broadcasts in a single order (see Add).
func (r *Roster) Recipients(sender string, hist *History, line string) []netip.AddrPort {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]netip.AddrPort, 0, len(r.byAddr))
	for addr, e := range r.byAddr {
		if _, muted := e.muted[sender]; muted {
			continue
		}
		out = append(out, addr)
	}
	if hist != nil {
		hist.Append(line)
	}
	return out
}

// IdleSince returns the addresses of entries whose last activity is at or
// before cutoff.
func (r *Roster) IdleSince(cutoff time.Time) []netip.AddrPort {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []netip.AddrPort
	for addr, e := range r.byAddr {
		if !e.lastActive.After(cutoff) {
			out = append(out, addr)
		}
	}
	return out
}

// Len returns the number of connected clients.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddr)
}

// Members returns snapshots of all entries, sorted by name.
func (r *Roster) Members() []Member {
	r.mu.RLock()
	out := make([]Member, 0, len(r.byAddr))
	for _, e := range r.byAddr {
		out = append(out, snapshot(e))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b Member) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func snapshot(e *entry) Member {
	return Member{Name: e.name, Addr: e.addr, Admin: e.admin, LastActive: e.lastActive}
}
