// Package proc provides the process layer for session runtimes: spawning
// interactive child processes, probing liveness, writing to stdin, and
// delivering a single exit notification per process.
//
// The primary implementation runs real child processes via os/exec. The
// Spawner interface exists so the runtime can be tested with doubles.
package proc

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// ErrEmptyCommand is returned by Spawn when the launch command is blank.
var ErrEmptyCommand = errors.New("proc: empty command")

// Process is one running interactive child process. The stdin writer and
// exit notification are owned by the runtime entry holding this handle;
// no other component writes to the process.
type Process interface {
	// Write sends bytes to the process's stdin.
	Write(p []byte) (int, error)

	// Alive reports whether the process is still executing. Probe errors
	// are treated the same as "exited": both report false.
	Alive() bool

	// Kill terminates the process (and its process group, where the
	// platform supports it). The exit notification still fires through
	// the normal watcher path; Kill never delivers it directly.
	Kill() error

	// OnExit registers fn to be called exactly once, from the watcher
	// goroutine, when the process terminates for any reason. Must be
	// called before the process exits to be useful; a registration after
	// exit fires immediately.
	OnExit(fn func(exitCode int))

	// PID returns the operating system process ID.
	PID() int
}

// Spawner launches child processes with their output wired to a writer.
type Spawner interface {
	// Spawn starts command with stdout and stderr streaming into output.
	// The command is executed directly (argv split on whitespace), not
	// through a shell, so a missing binary fails here rather than later.
	Spawn(command string, output io.Writer) (Process, error)
}

// ExecSpawner runs real child processes via os/exec. Each process is
// placed in its own process group so teardown can reach grandchildren.
type ExecSpawner struct{}

// NewExecSpawner creates a Spawner backed by os/exec.
func NewExecSpawner() *ExecSpawner {
	return &ExecSpawner{}
}

// Spawn implements Spawner.
func (s *ExecSpawner) Spawn(command string, output io.Writer) (Process, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = output
	cmd.Stderr = output
	setProcessGroup(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("starting %q: %w", argv[0], err)
	}

	p := &execProcess{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan struct{}),
	}
	go p.watch()
	return p, nil
}

// execProcess wraps a started exec.Cmd.
type execProcess struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu       sync.Mutex
	exitFns  []func(int)
	exited   bool
	exitCode int

	done chan struct{}
}

// watch waits for the process and delivers the exit notification.
// This is the only exit path: Kill just signals the process and lets
// Wait return here.
func (p *execProcess) watch() {
	err := p.cmd.Wait()

	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else if err != nil {
		code = -1
	}

	p.mu.Lock()
	p.exited = true
	p.exitCode = code
	fns := p.exitFns
	p.exitFns = nil
	p.mu.Unlock()

	_ = p.stdin.Close()
	close(p.done)

	for _, fn := range fns {
		fn(code)
	}
}

func (p *execProcess) Write(b []byte) (int, error) {
	return p.stdin.Write(b)
}

func (p *execProcess) Alive() bool {
	p.mu.Lock()
	exited := p.exited
	p.mu.Unlock()
	if exited {
		return false
	}
	return probeAlive(p.cmd.Process.Pid)
}

func (p *execProcess) Kill() error {
	p.mu.Lock()
	exited := p.exited
	p.mu.Unlock()
	if exited {
		return nil
	}
	killTree(p.cmd.Process.Pid)
	return nil
}

func (p *execProcess) OnExit(fn func(exitCode int)) {
	p.mu.Lock()
	if p.exited {
		code := p.exitCode
		p.mu.Unlock()
		fn(code)
		return
	}
	p.exitFns = append(p.exitFns, fn)
	p.mu.Unlock()
}

func (p *execProcess) PID() int {
	return p.cmd.Process.Pid
}
