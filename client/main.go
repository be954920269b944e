package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"ichat/internal/wire"
)

// Version is injected at build time with -ldflags.
var Version = "0.1.0-dev"

func main() {
	server := flag.String("server", fmt.Sprintf("127.0.0.1:%d", wire.ServerPort), "chat server address")
	admin := flag.Bool("admin", false, "bind the well-known admin port (6666)")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	serverAddr, err := net.ResolveUDPAddr("udp", *server)
	if err != nil {
		slog.Error("resolve server address", "addr", *server, "err", err)
		os.Exit(1)
	}

	local := &net.UDPAddr{}
	if *admin {
		local.Port = wire.AdminPort
	}
	conn, err := net.ListenUDP("udp", local)
	if err != nil {
		slog.Error("bind local socket", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	transcript, err := OpenTranscript(".")
	if err != nil {
		slog.Error("open transcript", "err", err)
		os.Exit(1)
	}

	app := NewApp(conn, serverAddr.AddrPort(), transcript)
	slog.Debug("client ready", "version", Version, "server", serverAddr, "transcript", transcript.Name())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runListener()
	}()

	app.runInput(os.Stdin)

	// The listener may be parked in a read; closing the socket unblocks it.
	app.Stop()
	conn.Close()
	wg.Wait()

	if err := transcript.Close(); err != nil {
		slog.Error("close transcript", "err", err)
	}
	slog.Debug("client exiting")
}
