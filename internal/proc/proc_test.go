package proc

import (
	"bytes"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

func requireUnixTools(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("unix tools not available")
	}
	for _, bin := range []string{"cat", "sh", "true"} {
		if _, err := exec.LookPath(bin); err != nil {
			t.Skipf("%s not installed", bin)
		}
	}
}

// syncBuffer guards a bytes.Buffer against concurrent writes from the
// child's output pump.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpawnEmptyCommand(t *testing.T) {
	s := NewExecSpawner()
	if _, err := s.Spawn("   ", &bytes.Buffer{}); err != ErrEmptyCommand {
		t.Errorf("Spawn(blank) error = %v, want ErrEmptyCommand", err)
	}
}

func TestSpawnMissingBinary(t *testing.T) {
	s := NewExecSpawner()
	_, err := s.Spawn("definitely-not-a-real-binary-xyz", &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected spawn error for missing binary")
	}
}

func TestWriteAndExit(t *testing.T) {
	requireUnixTools(t)

	s := NewExecSpawner()
	out := &syncBuffer{}
	p, err := s.Spawn("cat", out)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	exitCh := make(chan int, 1)
	p.OnExit(func(code int) { exitCh <- code })

	if !p.Alive() {
		t.Error("process should be alive after spawn")
	}
	if _, err := p.Write([]byte("hello\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := p.Kill(); err != nil {
		t.Fatalf("Kill: %v", err)
	}

	select {
	case <-exitCh:
	case <-time.After(5 * time.Second):
		t.Fatal("exit notification never arrived")
	}

	if p.Alive() {
		t.Error("process should not be alive after exit")
	}
	if got := out.String(); !strings.Contains(got, "hello") {
		t.Errorf("output = %q, want it to contain %q", got, "hello")
	}
}

func TestOnExitAfterExitFiresImmediately(t *testing.T) {
	requireUnixTools(t)

	s := NewExecSpawner()
	p, err := s.Spawn("true", &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	// Wait for the process to be fully reaped.
	deadline := time.Now().Add(5 * time.Second)
	for p.Alive() {
		if time.Now().After(deadline) {
			t.Fatal("process never exited")
		}
		time.Sleep(10 * time.Millisecond)
	}

	done := make(chan int, 1)
	p.OnExit(func(code int) { done <- code })
	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("exit code = %d, want 0", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("late OnExit registration never fired")
	}
}

func TestExitCodeNonZero(t *testing.T) {
	requireUnixTools(t)

	s := NewExecSpawner()
	p, err := s.Spawn("sh -c exit_42_placeholder", &bytes.Buffer{})
	// The argv split means this runs `sh -c exit_42_placeholder`, which
	// exits non-zero because the command does not exist.
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	exitCh := make(chan int, 1)
	p.OnExit(func(code int) { exitCh <- code })

	select {
	case code := <-exitCh:
		if code == 0 {
			t.Error("expected non-zero exit code")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("exit notification never arrived")
	}
}
