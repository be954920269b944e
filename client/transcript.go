package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Transcript mirrors chat traffic to a per-process text file so a session
// can be reviewed after the client exits. It is write-only as far as the
// protocol is concerned.
type Transcript struct {
	mu sync.Mutex
	f  *os.File
}

// OpenTranscript creates (truncating) iChat_<pid>.txt in dir.
func OpenTranscript(dir string) (*Transcript, error) {
	path := filepath.Join(dir, fmt.Sprintf("iChat_%d.txt", os.Getpid()))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	return &Transcript{f: f}, nil
}

// Name returns the transcript's file path.
func (t *Transcript) Name() string {
	return t.f.Name()
}

// Append writes one chat line and flushes it to disk immediately.
func (t *Transcript) Append(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, err := t.f.WriteString(line + "\n"); err != nil {
		return err
	}
	return t.f.Sync()
}

func (t *Transcript) Close() error {
	return t.f.Close()
}
