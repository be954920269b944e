package main

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"ichat/internal/wire"
)

// readDeadline bounds each blocking read so the listener re-checks the
// running flag even when the server is silent.
const readDeadline = 250 * time.Millisecond

// runListener receives server frames and dispatches them until the running
// flag clears or the socket closes.
func (a *App) runListener() {
	defer a.Stop()

	buf := make([]byte, wire.BufferSize)
	for a.Running() {
		a.conn.SetReadDeadline(time.Now().Add(readDeadline))
		n, _, err := a.conn.ReadFromUDPAddrPort(buf)
		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			fmt.Fprintf(a.stderr, "ichat: read: %v\n", err)
			return
		}
		a.handleFrame(buf[:n])
	}
}

// handleFrame dispatches one server frame to its typed reaction.
func (a *App) handleFrame(payload []byte) {
	cmd, content, err := wire.Parse(payload)
	if err != nil {
		fmt.Fprintf(a.stderr, "ichat: bad frame from server: %v\n", err)
		return
	}

	switch cmd {
	case wire.CmdConn, wire.CmdRename:
		fmt.Fprintln(a.stdout, content)
		if name := confirmedName(cmd, content); name != "" {
			a.setIdentity(name)
		}
	case wire.CmdSay, wire.CmdSayTo, wire.CmdHistory:
		if err := a.transcript.Append(content); err != nil {
			fmt.Fprintf(a.stderr, "ichat: transcript: %v\n", err)
		}
	case wire.CmdDisconn, wire.CmdKick:
		fmt.Fprintln(a.stdout, content)
		a.Stop()
	case wire.CmdPing:
		pong, _ := wire.Format(wire.CmdRetPing, "\n")
		if err := a.send(pong); err != nil {
			fmt.Fprintf(a.stderr, "ichat: ret-ping: %v\n", err)
		}
	case wire.CmdError:
		fmt.Fprintln(a.stdout, content)
	default:
		fmt.Fprintf(a.stderr, "ichat: unknown frame '%s' from server\n", cmd)
	}
}

// confirmedName extracts the canonical display name the server echoes in a
// conn ("Hi <name>, ...") or rename ("You are now known as <name>")
// acknowledgement. Returns "" when the content has a different shape.
func confirmedName(cmd, content string) string {
	switch cmd {
	case wire.CmdConn:
		rest, ok := strings.CutPrefix(content, "Hi ")
		if !ok {
			return ""
		}
		name, _, ok := strings.Cut(rest, ",")
		if !ok {
			return ""
		}
		return name
	case wire.CmdRename:
		rest, ok := strings.CutPrefix(content, "You are now known as ")
		if !ok {
			return ""
		}
		return strings.TrimSpace(rest)
	}
	return ""
}
