package main

import (
	"context"
	"log"
	"time"
)

// RunMetrics logs socket counters every interval until ctx is canceled.
func RunMetrics(ctx context.Context, s *Server, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rxd, rxb, txd, txb := s.Stats()
			clients := s.roster.Len()
			if clients > 0 || rxd > 0 {
				log.Printf("[metrics] clients=%d rx=%d (%d B) tx=%d (%d B)",
					clients, rxd, rxb, txd, txb)
			}
		}
	}
}
