package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"

	"ichat/internal/core"
	"ichat/internal/httpapi"
	"ichat/internal/wire"
)

// Version is injected at build time with -ldflags.
var Version = "0.1.0-dev"

func main() {
	port := flag.Int("port", wire.ServerPort, "UDP chat port")
	apiAddr := flag.String("api", "", "ops API listen address (empty = disabled)")
	tick := flag.Duration("tick", pingTick, "liveness monitor sweep interval")
	idle := flag.Duration("idle", inactivityThreshold, "inactivity threshold before pinging")
	timeout := flag.Duration("ping-timeout", pingTimeout, "eviction deadline after a ping")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	slog.Info("starting server", "version", Version, "port", *port)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: *port})
	if err != nil {
		slog.Error("bind chat port", "port", *port, "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	roster := core.NewRoster()
	history := core.NewHistory()
	pings := core.NewPendingPings()
	srv := NewServer(conn, roster, history, pings)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		slog.Info("received interrupt, shutting down")
		cancel()
	}()

	go NewPinger(srv, *tick, *idle, *timeout).Run(ctx)
	go RunMetrics(ctx, srv, metricsInterval)

	if *apiAddr != "" {
		api := httpapi.New(roster, history, Version)
		go func() {
			if err := api.Run(ctx, *apiAddr); err != nil {
				slog.Error("ops api", "err", err)
			}
		}()
		slog.Info("ops api enabled", "addr", *apiAddr)
	}

	slog.Info("listening", "port", *port)
	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
