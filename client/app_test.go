package main

import (
	"bytes"
	"net/netip"
	"os"
	"sync"
	"testing"
)

var testServer = netip.MustParseAddrPort("127.0.0.1:9999")

// frameRecorder captures outbound frames instead of writing to a socket.
type frameRecorder struct {
	mu     sync.Mutex
	frames []string
}

func (r *frameRecorder) WriteToUDPAddrPort(b []byte, addr netip.AddrPort) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, string(b))
	return len(b), nil
}

func (r *frameRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

// newTestApp builds an App with a recorded writer, buffered stdio and a
// temp-dir transcript.
func newTestApp(t *testing.T) (*App, *frameRecorder, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	rec := &frameRecorder{}
	transcript, err := OpenTranscript(t.TempDir())
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	t.Cleanup(func() { transcript.Close() })

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	a := &App{
		out:        rec,
		server:     testServer,
		transcript: transcript,
		stdout:     stdout,
		stderr:     stderr,
	}
	a.running.Store(true)
	return a, rec, stdout, stderr
}

func TestIdentityLifecycle(t *testing.T) {
	a, _, _, _ := newTestApp(t)

	if name, connected := a.Identity(); name != "" || connected {
		t.Fatalf("fresh app: got (%q, %v), want empty and not connected", name, connected)
	}
	a.setIdentity("Alice")
	if name, connected := a.Identity(); name != "Alice" || !connected {
		t.Fatalf("got (%q, %v), want (Alice, true)", name, connected)
	}
}

func TestStopClearsRunning(t *testing.T) {
	a, _, _, _ := newTestApp(t)
	if !a.Running() {
		t.Fatal("fresh app must be running")
	}
	a.Stop()
	if a.Running() {
		t.Fatal("Stop did not clear the running flag")
	}
}

func TestTranscriptFileNaming(t *testing.T) {
	dir := t.TempDir()
	tr, err := OpenTranscript(dir)
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	defer tr.Close()

	if !bytes.Contains([]byte(tr.Name()), []byte("iChat_")) {
		t.Errorf("transcript path %q does not contain iChat_<pid>", tr.Name())
	}
}

func TestTranscriptAppendFlushes(t *testing.T) {
	tr, err := OpenTranscript(t.TempDir())
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	defer tr.Close()

	if err := tr.Append("Alice: hello"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tr.Append("Bob: hi"); err != nil {
		t.Fatalf("append: %v", err)
	}

	// Readable before Close: Append flushes each line.
	data, err := os.ReadFile(tr.Name())
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	want := "Alice: hello\nBob: hi\n"
	if string(data) != want {
		t.Errorf("transcript = %q, want %q", data, want)
	}
}

func TestTranscriptTruncatesOnOpen(t *testing.T) {
	dir := t.TempDir()
	tr, err := OpenTranscript(dir)
	if err != nil {
		t.Fatalf("open transcript: %v", err)
	}
	tr.Append("stale line")
	tr.Close()

	tr, err = OpenTranscript(dir)
	if err != nil {
		t.Fatalf("reopen transcript: %v", err)
	}
	defer tr.Close()
	data, err := os.ReadFile(tr.Name())
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("transcript not truncated, contains %q", data)
	}
}
