package main

import "time"

// Liveness and reporting intervals. The liveness values are the protocol
// defaults; main exposes flags that override them for operations and tests.
const (
	// pingTick is the liveness monitor's sweep interval.
	pingTick = 30 * time.Second

	// inactivityThreshold is how long a client may stay silent before it
	// is pinged.
	inactivityThreshold = 300 * time.Second

	// pingTimeout is how long a pinged client has to reply with ret-ping
	// before it is evicted.
	pingTimeout = 10 * time.Second

	// metricsInterval is how often the metrics ticker logs counters.
	metricsInterval = 60 * time.Second
)
