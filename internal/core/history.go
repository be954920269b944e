package core

import "sync"

// HistorySize is the capacity of the broadcast history ring.
const HistorySize = 15

// History is a fixed-capacity FIFO of the most recent broadcast messages,
// stored as already-formatted `history$ <name>: <text>` frame payloads so
// that join replay sends them as-is.
type History struct {
	mu    sync.Mutex
	lines [HistorySize]string
	head  int // next write slot
	count int
}

func NewHistory() *History {
	return &History{}
}

// Append records one formatted line, evicting the oldest when full.
func (h *History) Append(line string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lines[h.head] = line
	h.head = (h.head + 1) % HistorySize
	if h.count < HistorySize {
		h.count++
	}
}

// Snapshot returns the stored lines, oldest first.
func (h *History) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, 0, h.count)
	start := (h.head - h.count + HistorySize) % HistorySize
	for i := 0; i < h.count; i++ {
		out = append(out, h.lines[(start+i)%HistorySize])
	}
	return out
}

// Len returns the number of stored lines.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
