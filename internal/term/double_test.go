package term

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/coordinatio/agentterm/internal/display"
	"github.com/coordinatio/agentterm/internal/proc"
)

// fakeProc is an in-memory proc.Process double. Exit(code) simulates the
// process terminating, driving the registered exit callbacks the same way
// the real watcher goroutine does.
type fakeProc struct {
	mu        sync.Mutex
	alive     bool
	input     []byte
	exitFns   []func(int)
	killed    bool
	exitFired bool
	pid       int
}

func (p *fakeProc) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.alive {
		return 0, io.ErrClosedPipe
	}
	p.input = append(p.input, b...)
	return len(b), nil
}

func (p *fakeProc) Alive() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.alive
}

func (p *fakeProc) Kill() error {
	p.mu.Lock()
	p.killed = true
	p.mu.Unlock()
	// Real kills surface as an exit through the watcher.
	p.Exit(143)
	return nil
}

func (p *fakeProc) OnExit(fn func(int)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exitFns = append(p.exitFns, fn)
}

func (p *fakeProc) PID() int { return p.pid }

// Exit simulates process termination. Only the first call has any effect.
func (p *fakeProc) Exit(code int) {
	p.mu.Lock()
	if p.exitFired {
		p.mu.Unlock()
		return
	}
	p.exitFired = true
	p.alive = false
	fns := p.exitFns
	p.exitFns = nil
	p.mu.Unlock()
	for _, fn := range fns {
		fn(code)
	}
}

// markDead flips liveness without firing exit callbacks, modeling a
// process that died before its exit event has been processed.
func (p *fakeProc) markDead() {
	p.mu.Lock()
	p.alive = false
	p.mu.Unlock()
}

func (p *fakeProc) sent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return string(p.input)
}

// fakeSpawner hands out fakeProcs and records spawn requests.
type fakeSpawner struct {
	mu       sync.Mutex
	procs    []*fakeProc
	commands []string
	outputs  []io.Writer
	failNext error
}

func (s *fakeSpawner) Spawn(command string, output io.Writer) (proc.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return nil, err
	}
	p := &fakeProc{alive: true, pid: 1000 + len(s.procs)}
	s.procs = append(s.procs, p)
	s.commands = append(s.commands, command)
	s.outputs = append(s.outputs, output)
	return p, nil
}

func (s *fakeSpawner) last() *fakeProc {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.procs) == 0 {
		return nil
	}
	return s.procs[len(s.procs)-1]
}

func (s *fakeSpawner) spawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

// fakeLayout is an in-memory display.Layout double.
type fakeLayout struct {
	mu       sync.Mutex
	next     int
	live     map[display.Surface]bool
	bound    map[display.Surface]display.BufferView
	acquires int
	releases int
	failNext error
}

func newFakeLayout() *fakeLayout {
	return &fakeLayout{
		live:  make(map[display.Surface]bool),
		bound: make(map[display.Surface]display.BufferView),
	}
}

func (l *fakeLayout) AcquireSurface(geo display.Geometry) (display.Surface, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return "", err
	}
	l.next++
	l.acquires++
	s := display.Surface(fmt.Sprintf("surf-%d", l.next))
	l.live[s] = true
	return s, nil
}

func (l *fakeLayout) ReleaseSurface(s display.Surface) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.live[s] {
		l.releases++
		delete(l.live, s)
		delete(l.bound, s)
	}
}

func (l *fakeLayout) BindBuffer(s display.Surface, view display.BufferView) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.live[s] {
		return errors.New("bind on released surface")
	}
	l.bound[s] = view
	return nil
}

func (l *fakeLayout) liveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}
