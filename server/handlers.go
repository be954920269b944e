package main

import (
	"errors"
	"fmt"
	"log"
	"net/netip"
	"strings"

	"ichat/internal/core"
	"ichat/internal/wire"
)

// handle processes one inbound datagram end to end: parse, classify,
// dispatch, reply. Each invocation is its own error boundary — a malformed
// or hostile frame produces at most an Error reply and never takes the
// pump down.
func (s *Server) handle(payload []byte, src netip.AddrPort) {
	cmd, content, err := wire.Parse(payload)
	if err != nil {
		s.sendf(src, wire.CmdError, " Invalid request format. Expected 'command$content'\n")
		return
	}

	// Any well-formed frame counts as activity for its sender.
	s.roster.Touch(src)

	switch cmd {
	case wire.CmdConn:
		s.handleConn(src, content)
	case wire.CmdSay:
		s.handleSay(src, content)
	case wire.CmdSayTo:
		s.handleSayTo(src, content)
	case wire.CmdDisconn:
		s.handleDisconn(src, content)
	case wire.CmdMute:
		s.roster.Mute(src, content) // silent, success or not
	case wire.CmdUnmute:
		s.roster.Unmute(src, content) // silent, success or not
	case wire.CmdRename:
		s.handleRename(src, content)
	case wire.CmdKick:
		s.handleKick(src, content)
	case wire.CmdRetPing:
		s.pings.Clear(src) // silent; Touch above already refreshed the entry
	default:
		s.sendf(src, wire.CmdError,
			" Unknown command '%s'. Supported: conn, say, sayto, disconn, mute, unmute, rename, kick\n", cmd)
	}
}

// sendf formats and sends a single frame to addr. Frames that fail to
// encode (oversize, typically) are logged and dropped.
func (s *Server) sendf(addr netip.AddrPort, cmd, format string, args ...any) {
	payload, err := wire.Format(cmd, fmt.Sprintf(format, args...))
	if err != nil {
		log.Printf("[server] drop %s frame to %s: %v", cmd, addr, err)
		return
	}
	s.send(addr, payload)
}

// handleConn registers a new client and replays the history ring to it.
// Admin status is decided here, once, from the source port.
func (s *Server) handleConn(src netip.AddrPort, name string) {
	if err := wire.ValidateName(name); err != nil {
		s.sendf(src, wire.CmdError, " Invalid name '%s': %s\n", name, err)
		return
	}

	admin := src.Port() == wire.AdminPort
	replay, err := s.roster.Add(name, src, admin, s.history)
	switch {
	case errors.Is(err, core.ErrNameTaken):
		s.sendf(src, wire.CmdError, " Name '%s' is already taken\n", name)
		return
	case errors.Is(err, core.ErrAddrTaken):
		s.sendf(src, wire.CmdError, " You are already connected\n")
		return
	case err != nil:
		s.sendf(src, wire.CmdError, " %s\n", err)
		return
	}

	log.Printf("[server] %s connected from %s (admin=%v), total=%d", name, src, admin, s.roster.Len())
	s.sendf(src, wire.CmdConn, " Hi %s, you have successfully connected to the chat\n", name)
	for _, line := range replay {
		s.send(src, []byte(line))
	}
}

// handleSay broadcasts text to every client that has not muted the sender
// (the sender included) and records the line in the history ring.
func (s *Server) handleSay(src netip.AddrPort, text string) {
	sender, ok := s.roster.FindByAddr(src)
	if !ok {
		s.sendNotConnected(src)
		return
	}
	if text == "" {
		s.sendf(src, wire.CmdError, " Message must not be empty\n")
		return
	}

	body := fmt.Sprintf(" %s: %s\n", sender.Name, text)
	payload, err := wire.Format(wire.CmdSay, body)
	if err != nil {
		s.sendf(src, wire.CmdError, " Message too long\n")
		return
	}
	line, err := wire.Format(wire.CmdHistory, body)
	if err != nil {
		s.sendf(src, wire.CmdError, " Message too long\n")
		return
	}

	for _, addr := range s.roster.Recipients(sender.Name, s.history, string(line)) {
		s.send(addr, payload)
	}
}

// handleSayTo delivers a directed message to one recipient plus an echo to
// the sender. Directed messages bypass mute filtering and are not recorded
// in the history ring.
func (s *Server) handleSayTo(src netip.AddrPort, content string) {
	sender, ok := s.roster.FindByAddr(src)
	if !ok {
		s.sendNotConnected(src)
		return
	}

	recipient, text, found := strings.Cut(content, " ")
	text = strings.TrimSpace(text)
	if !found || recipient == "" || text == "" {
		s.sendf(src, wire.CmdError, " Expected 'sayto$<recipient> <text>'\n")
		return
	}
	target, ok := s.roster.FindByName(recipient)
	if !ok {
		s.sendf(src, wire.CmdError, " Recipient '%s' not found\n", recipient)
		return
	}

	payload, err := wire.Format(wire.CmdSayTo, fmt.Sprintf(" %s: %s\n", sender.Name, text))
	if err != nil {
		s.sendf(src, wire.CmdError, " Message too long\n")
		return
	}
	s.send(target.Addr, payload)
	if target.Addr != src {
		s.send(src, payload)
	}
}

// handleDisconn removes the sender. The goodbye is sent even when the
// address was never connected, but stray content keeps the entry alive.
func (s *Server) handleDisconn(src netip.AddrPort, content string) {
	if content != "" {
		s.sendf(src, wire.CmdError, " Expected 'disconn$' with no content\n")
		return
	}
	if name, err := s.roster.RemoveByAddr(src); err == nil {
		s.pings.Clear(src)
		log.Printf("[server] %s disconnected, total=%d", name, s.roster.Len())
	}
	s.sendf(src, wire.CmdDisconn, " Disconnected. Bye!\n")
}

// handleRename validates the new name like conn does and re-keys the entry
// atomically. Renaming to your current name succeeds without change.
func (s *Server) handleRename(src netip.AddrPort, newName string) {
	if err := wire.ValidateName(newName); err != nil {
		s.sendf(src, wire.CmdError, " Invalid name '%s': %s\n", newName, err)
		return
	}
	switch err := s.roster.Rename(src, newName); {
	case errors.Is(err, core.ErrNotFound):
		s.sendNotConnected(src)
	case errors.Is(err, core.ErrNameTaken):
		s.sendf(src, wire.CmdError, " Name '%s' is already taken\n", newName)
	case err == nil:
		s.sendf(src, wire.CmdRename, " You are now known as %s\n", newName)
	}
}

// handleKick lets the admin remove another client: notify the target, drop
// it from the roster, then tell everyone else.
func (s *Server) handleKick(src netip.AddrPort, targetName string) {
	requester, ok := s.roster.FindByAddr(src)
	if !ok {
		s.sendNotConnected(src)
		return
	}
	if !requester.Admin || src.Port() != wire.AdminPort {
		s.sendf(src, wire.CmdError, " Only the admin may kick\n")
		return
	}
	if targetName == requester.Name {
		s.sendf(src, wire.CmdError, " You cannot kick yourself\n")
		return
	}
	target, ok := s.roster.FindByName(targetName)
	if !ok {
		s.sendf(src, wire.CmdError, " User '%s' not found\n", targetName)
		return
	}

	s.sendf(target.Addr, wire.CmdKick, " You have been removed from the chat\n")
	if _, err := s.roster.RemoveByName(targetName); err != nil {
		return // lost a race with disconn or eviction; nothing to announce
	}
	s.pings.Clear(target.Addr)
	log.Printf("[server] %s kicked by %s, total=%d", targetName, requester.Name, s.roster.Len())
	s.broadcastSystem(fmt.Sprintf("%s has been removed from the chat", targetName))
}

// broadcastSystem fans a server-originated notice out to the current
// roster. System notices are not recorded in the history ring.
func (s *Server) broadcastSystem(text string) {
	payload, err := wire.Format(wire.CmdSay, fmt.Sprintf(" System: %s\n", text))
	if err != nil {
		log.Printf("[server] drop system notice: %v", err)
		return
	}
	for _, addr := range s.roster.Recipients("System", nil, "") {
		s.send(addr, payload)
	}
}

func (s *Server) sendNotConnected(addr netip.AddrPort) {
	s.sendf(addr, wire.CmdError, " You have not connected to the chat. Connect with 'conn$<name>' first\n")
}
