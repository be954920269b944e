package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ichat/internal/wire"
)

// runInput pumps lines from r to the server until EOF, a send failure, or
// the running flag clears. Framing is validated locally: a line with no
// '$', an empty command, or missing content never reaches the wire — the
// diagnostic goes to stderr and no datagram is sent.
func (a *App) runInput(r io.Reader) {
	defer a.Stop()

	sc := bufio.NewScanner(r)
	for a.Running() && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			fmt.Fprintln(a.stderr, "ichat: empty input")
			continue
		}

		cmd, content, err := wire.Parse([]byte(line))
		if err != nil {
			fmt.Fprintf(a.stderr, "ichat: %v (expected 'command$content')\n", err)
			continue
		}
		if content == "" && cmd != wire.CmdDisconn {
			fmt.Fprintf(a.stderr, "ichat: '%s' needs content after the '$'\n", cmd)
			continue
		}

		payload, err := wire.Format(cmd, content)
		if err != nil {
			fmt.Fprintf(a.stderr, "ichat: %v\n", err)
			continue
		}
		if err := a.send(payload); err != nil {
			fmt.Fprintf(a.stderr, "ichat: send: %v\n", err)
			return
		}
		if cmd == wire.CmdDisconn {
			return // deferred Stop shuts the listener down too
		}
	}

	if err := sc.Err(); err != nil {
		fmt.Fprintf(a.stderr, "ichat: stdin: %v\n", err)
	}
}
