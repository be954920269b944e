package main

import (
	"io"
	"net"
	"net/netip"
	"os"
	"sync"
	"sync/atomic"
)

// PacketWriter is the outbound half of the UDP socket. *net.UDPConn
// satisfies it; tests inject a recorder instead.
type PacketWriter interface {
	WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error)
}

// App is the client's shared state record: the socket, the server address
// and the running flag that the input and listener streams both check on
// every iteration. Either stream clearing the flag makes the other exit.
type App struct {
	conn    *net.UDPConn
	out     PacketWriter
	server  netip.AddrPort
	running atomic.Bool

	mu        sync.Mutex
	name      string // confirmed display name, empty before the conn ack
	connected bool

	transcript *Transcript
	stdout     io.Writer
	stderr     io.Writer
}

func NewApp(conn *net.UDPConn, server netip.AddrPort, transcript *Transcript) *App {
	a := &App{
		conn:       conn,
		out:        conn,
		server:     server,
		transcript: transcript,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
	}
	a.running.Store(true)
	return a
}

// Running reports whether the client should keep going.
func (a *App) Running() bool {
	return a.running.Load()
}

// Stop clears the running flag. Safe to call from either stream.
func (a *App) Stop() {
	a.running.Store(false)
}

// setIdentity records the display name the server confirmed.
func (a *App) setIdentity(name string) {
	a.mu.Lock()
	a.name = name
	a.connected = true
	a.mu.Unlock()
}

// Identity returns the confirmed display name and whether the client has
// completed a conn exchange.
func (a *App) Identity() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name, a.connected
}

// send transmits one frame to the server.
func (a *App) send(payload []byte) error {
	_, err := a.out.WriteToUDPAddrPort(payload, a.server)
	return err
}
