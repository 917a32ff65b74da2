// Package registry owns session identity and naming: which sessions
// exist, what they are called, which one is active, and which was active
// last. It delegates all process and surface mechanics to the session
// runtime and keeps its bookkeeping consistent with asynchronous process
// exits via the runtime's exit notifications, never by polling.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/coordinatio/agentterm/internal/display"
	"github.com/coordinatio/agentterm/internal/ids"
)

var (
	// ErrUnknownSession is returned when an id has no record.
	ErrUnknownSession = errors.New("registry: unknown session")

	// ErrEmptyName rejects blank session names on rename.
	ErrEmptyName = errors.New("registry: name must not be empty")
)

// Runtime is the subset of the session runtime the registry drives.
// Satisfied by *term.Runtime.
type Runtime interface {
	Create(id ids.SessionID, command string, geo display.Geometry) error
	Show(id ids.SessionID, geo display.Geometry) bool
	Hide(id ids.SessionID)
	IsRunning(id ids.SessionID) bool
	Kill(id ids.SessionID)
	RegisterExitSubscriber(fn func(id ids.SessionID, exitCode int))
}

// Record is the registry's metadata for one session. The ID is only ever
// used to query the runtime, never dereferenced as a runtime resource.
type Record struct {
	ID           ids.SessionID
	Name         string
	Command      string
	CreatedAt    time.Time
	LastActiveAt time.Time
}

// Options configures session creation and switching.
type Options struct {
	// Command overrides the default launch command for this session.
	Command string

	// Geometry is passed through to the display layer.
	Geometry display.Geometry
}

// Snapshot is a read-only view of the registry for listings and
// diagnostics.
type Snapshot struct {
	Records      []Record
	ActiveID     ids.SessionID
	LastActiveID ids.SessionID
	Count        int
}

// Registry tracks session records and the active/last-active pointers.
// All state is instance-owned; construct independent registries per test.
type Registry struct {
	rt             Runtime
	namePrefix     string
	defaultCommand string
	log            *slog.Logger
	now            func() time.Time

	mu           sync.Mutex
	records      map[ids.SessionID]*Record
	order        []ids.SessionID // insertion order, for stable listings
	activeID     ids.SessionID
	lastActiveID ids.SessionID
	counter      int64
}

// New creates a registry over rt and subscribes its exit reconciliation
// handler. namePrefix seeds generated names ("<prefix> <n>");
// defaultCommand is the launch command used when Options.Command is
// empty. A nil logger disables logging.
func New(rt Runtime, namePrefix, defaultCommand string, log *slog.Logger) *Registry {
	if namePrefix == "" {
		namePrefix = "Agent"
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	r := &Registry{
		rt:             rt,
		namePrefix:     namePrefix,
		defaultCommand: defaultCommand,
		log:            log,
		now:            time.Now,
		records:        make(map[ids.SessionID]*Record),
	}
	rt.RegisterExitSubscriber(r.onSessionExit)
	return r
}

// CreateSession allocates a fresh id, starts the session through the
// runtime, and makes it active. An empty name gets the generated default.
// On launch failure nothing is committed: no id is consumed, no record
// exists, and the active pointers are untouched.
func (r *Registry) CreateSession(name string, opts Options) (ids.SessionID, error) {
	r.mu.Lock()
	next := r.counter + 1
	id := ids.SessionID(next)
	command := opts.Command
	if command == "" {
		command = r.defaultCommand
	}
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%s %d", r.namePrefix, next)
	}
	prevActive := r.activeID
	r.mu.Unlock()

	if err := r.rt.Create(id, command, opts.Geometry); err != nil {
		return ids.None, err
	}

	if prevActive.Valid() {
		r.rt.Hide(prevActive)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.counter = next
	r.records[id] = &Record{
		ID:           id,
		Name:         name,
		Command:      command,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	r.order = append(r.order, id)
	r.activeID = id
	r.lastActiveID = id
	r.log.Info("session created", "id", id.String(), "name", name)
	return id, nil
}

// SwitchTo makes id the visible session, hiding the previously active one
// first. A session whose process died without its exit event having been
// processed yet is recreated transparently with its original command.
func (r *Registry) SwitchTo(id ids.SessionID, opts Options) error {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	command := rec.Command
	prevActive := r.activeID
	r.mu.Unlock()

	if r.rt.IsRunning(id) {
		if !r.rt.Show(id, opts.Geometry) {
			// Runtime lost the session between the probe and the show.
			if err := r.rt.Create(id, command, opts.Geometry); err != nil {
				return err
			}
		}
	} else {
		if err := r.rt.Create(id, command, opts.Geometry); err != nil {
			return err
		}
		r.log.Info("session recreated", "id", id.String())
	}

	if prevActive.Valid() && prevActive != id {
		r.rt.Hide(prevActive)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// The record may have been reconciled away while the runtime call was
	// in flight; only commit pointers for a session that still exists.
	rec, ok = r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	r.activeID = id
	r.lastActiveID = id
	rec.LastActiveAt = r.now()
	return nil
}

// Hide releases the active session's surface without touching its
// process. The last-active pointer keeps its value so the next Toggle
// returns to this session.
func (r *Registry) Hide() {
	r.mu.Lock()
	active := r.activeID
	r.activeID = ids.None
	r.mu.Unlock()

	if active.Valid() {
		r.rt.Hide(active)
	}
}

// Toggle is the smart show/hide: hide the visible session if there is
// one, otherwise bring back the last-active session, otherwise create a
// fresh one.
func (r *Registry) Toggle(opts Options) error {
	r.mu.Lock()
	active := r.activeID
	last := r.lastActiveID
	_, lastExists := r.records[last]
	r.mu.Unlock()

	if active.Valid() {
		r.Hide()
		return nil
	}
	if last.Valid() && lastExists {
		return r.SwitchTo(last, opts)
	}
	_, err := r.CreateSession("", opts)
	return err
}

// List returns all records newest-first by creation time, stable under
// ties by insertion order. The returned records are copies.
func (r *Registry) List() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listLocked()
}

func (r *Registry) listLocked() []Record {
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		if rec, ok := r.records[id]; ok {
			out = append(out, *rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Get returns a copy of the record for id.
func (r *Registry) Get(id ids.SessionID) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// ActiveID returns the session currently bound to a surface, or None.
func (r *Registry) ActiveID() ids.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeID
}

// LastActiveID returns the most recently active session, or None.
func (r *Registry) LastActiveID() ids.SessionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActiveID
}

// Rename sets a new user-visible name for id. Blank names and unknown
// ids are rejected without mutation.
func (r *Registry) Rename(id ids.SessionID, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	rec.Name = name
	return nil
}

// Delete terminates the session and removes its record, reconciling the
// active/last-active pointers. Returns false for unknown ids. The kill
// re-enters the runtime's exit path asynchronously; by the time that
// notification arrives the record is already gone, and reconciliation of
// an absent id is a no-op.
func (r *Registry) Delete(id ids.SessionID) bool {
	r.mu.Lock()
	if _, ok := r.records[id]; !ok {
		r.mu.Unlock()
		return false
	}
	r.removeLocked(id)
	r.mu.Unlock()

	r.rt.Hide(id)
	r.rt.Kill(id)
	r.log.Info("session deleted", "id", id.String())
	return true
}

// onSessionExit is the exit reconciliation handler, registered once at
// construction. It is the only path that observes a process dying on its
// own.
func (r *Registry) onSessionExit(id ids.SessionID, exitCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return
	}
	r.removeLocked(id)
	r.log.Info("session exited", "id", id.String(), "code", exitCode)
}

// removeLocked drops the record for id and recomputes the active and
// last-active pointers. Delete and onSessionExit both funnel through
// here so the two teardown paths cannot drift. Caller holds mu.
func (r *Registry) removeLocked(id ids.SessionID) {
	delete(r.records, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.activeID == id {
		r.activeID = ids.None
	}
	if r.lastActiveID == id {
		r.lastActiveID = ids.None
		if remaining := r.listLocked(); len(remaining) > 0 {
			r.lastActiveID = remaining[0].ID
		}
	}
}

// SnapshotState returns a consistent copy of the registry state.
func (r *Registry) SnapshotState() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Records:      r.listLocked(),
		ActiveID:     r.activeID,
		LastActiveID: r.lastActiveID,
		Count:        len(r.records),
	}
}
