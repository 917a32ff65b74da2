// Package term owns the session runtime: one running interactive child
// process per session id, its output buffer, and its optional display
// surface. The metadata layer (internal/registry) sits on top and never
// touches processes or buffers directly.
package term

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/coordinatio/agentterm/internal/display"
	"github.com/coordinatio/agentterm/internal/ids"
	"github.com/coordinatio/agentterm/internal/proc"
)

var (
	// ErrNotRunning is returned by Send when the session has no live
	// process. Callers may recreate the session and retry.
	ErrNotRunning = errors.New("term: session not running")

	// ErrSessionExists is returned by Create when a live session already
	// occupies the id.
	ErrSessionExists = errors.New("term: session already exists")
)

// ExitFunc receives the exit notification for a session. It is invoked
// exactly once per session, from the process watcher goroutine, after the
// runtime entry has been torn down.
type ExitFunc func(id ids.SessionID, exitCode int)

// session is one live runtime entry. The process handle and buffer are
// exclusively owned here; other components only ever see the read-only
// buffer view.
type session struct {
	id         ids.SessionID
	proc       proc.Process
	buf        *Buffer
	surface    display.Surface
	hasSurface bool
}

// Runtime supervises the set of live sessions. All mutations of the
// session table happen under mu, from caller-issued operations or from
// the per-process exit watchers.
type Runtime struct {
	spawner proc.Spawner
	layout  display.Layout
	log     *slog.Logger

	mu          sync.Mutex
	sessions    map[ids.SessionID]*session
	subscribers []ExitFunc
}

// NewRuntime creates a runtime over the given process and display layers.
// A nil logger disables logging.
func NewRuntime(spawner proc.Spawner, layout display.Layout, log *slog.Logger) *Runtime {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Runtime{
		spawner:  spawner,
		layout:   layout,
		log:      log,
		sessions: make(map[ids.SessionID]*session),
	}
}

// RegisterExitSubscriber appends fn to the exit notification list. The
// registry registers its reconciliation handler here once, at composition
// time; there is no unregistration.
func (r *Runtime) RegisterExitSubscriber(fn func(id ids.SessionID, exitCode int)) {
	r.mu.Lock()
	r.subscribers = append(r.subscribers, fn)
	r.mu.Unlock()
}

// Create allocates a buffer, acquires a display surface, and starts
// command wired to the buffer. On any failure no state is left behind.
// A stale entry for id (process already dead, exit not yet processed) is
// replaced; a live one is an error.
func (r *Runtime) Create(id ids.SessionID, command string, geo display.Geometry) error {
	r.mu.Lock()
	if old, ok := r.sessions[id]; ok {
		if old.proc.Alive() {
			r.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrSessionExists, id)
		}
		r.teardownLocked(old)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	buf := NewBuffer()
	surface, err := r.layout.AcquireSurface(geo)
	if err != nil {
		return fmt.Errorf("acquiring surface for %s: %w", id, err)
	}
	if err := r.layout.BindBuffer(surface, buf); err != nil {
		r.layout.ReleaseSurface(surface)
		return fmt.Errorf("binding buffer for %s: %w", id, err)
	}

	p, err := r.spawner.Spawn(command, buf)
	if err != nil {
		r.layout.ReleaseSurface(surface)
		return fmt.Errorf("launching session %s: %w", id, err)
	}

	entry := &session{
		id:         id,
		proc:       p,
		buf:        buf,
		surface:    surface,
		hasSurface: true,
	}

	r.mu.Lock()
	r.sessions[id] = entry
	r.mu.Unlock()

	p.OnExit(func(code int) { r.handleExit(entry, code) })

	r.log.Debug("session created", "id", id.String(), "pid", p.PID(), "command", command)
	return nil
}

// Show binds the session's existing buffer to a freshly acquired surface.
// Returns false when no session exists for id (the caller must Create).
func (r *Runtime) Show(id ids.SessionID, geo display.Geometry) bool {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if entry.hasSurface {
		r.mu.Unlock()
		return true
	}
	r.mu.Unlock()

	surface, err := r.layout.AcquireSurface(geo)
	if err != nil {
		r.log.Warn("surface acquisition failed", "id", id.String(), "error", err)
		return false
	}
	if err := r.layout.BindBuffer(surface, entry.buf); err != nil {
		r.layout.ReleaseSurface(surface)
		return false
	}

	r.mu.Lock()
	// The session may have exited while the surface was being acquired.
	if r.sessions[id] != entry {
		r.mu.Unlock()
		r.layout.ReleaseSurface(surface)
		return false
	}
	entry.surface = surface
	entry.hasSurface = true
	r.mu.Unlock()
	return true
}

// Hide releases the session's display surface. The process and buffer
// keep running in the background. No-op for hidden or unknown sessions.
func (r *Runtime) Hide(id ids.SessionID) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if !ok || !entry.hasSurface {
		r.mu.Unlock()
		return
	}
	surface := entry.surface
	entry.hasSurface = false
	entry.surface = ""
	r.mu.Unlock()

	r.layout.ReleaseSurface(surface)
}

// IsRunning reports whether id has a live process.
func (r *Runtime) IsRunning(id ids.SessionID) bool {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	return ok && entry.proc.Alive()
}

// Send writes text to the session's stdin, appending a newline if absent.
// Returns (false, ErrNotRunning) when the session has no live process.
func (r *Runtime) Send(text string, id ids.SessionID) (bool, error) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()

	if !ok || !entry.proc.Alive() {
		return false, fmt.Errorf("%w: %s", ErrNotRunning, id)
	}

	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if _, err := entry.proc.Write([]byte(text)); err != nil {
		return false, fmt.Errorf("writing to session %s: %w", id, err)
	}
	return true, nil
}

// Kill terminates the session's process. Cleanup and the exit
// notification happen through the watcher's exit path, never here, so
// both self-exit and explicit kill share one teardown.
func (r *Runtime) Kill(id ids.SessionID) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return
	}
	_ = entry.proc.Kill()
}

// Peek returns up to lines trailing lines of the session's output.
// The returned slice is a copy; callers cannot mutate the buffer.
func (r *Runtime) Peek(id ids.SessionID, lines int) ([]string, bool) {
	r.mu.Lock()
	entry, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	return entry.buf.Tail(lines), true
}

// Count returns the number of live sessions.
func (r *Runtime) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// handleExit is the single exit path. The entry pointer guards against a
// stale watcher firing after the id was reused by a recreate.
func (r *Runtime) handleExit(entry *session, code int) {
	r.mu.Lock()
	if r.sessions[entry.id] != entry {
		r.mu.Unlock()
		return
	}
	r.teardownLocked(entry)
	delete(r.sessions, entry.id)
	subs := make([]ExitFunc, len(r.subscribers))
	copy(subs, r.subscribers)
	r.mu.Unlock()

	r.log.Debug("session exited", "id", entry.id.String(), "code", code)
	for _, fn := range subs {
		fn(entry.id, code)
	}
}

// teardownLocked releases the entry's surface binding. Caller holds mu.
func (r *Runtime) teardownLocked(entry *session) {
	if entry.hasSurface {
		r.layout.ReleaseSurface(entry.surface)
		entry.hasSurface = false
		entry.surface = ""
	}
}
