// Package display provides the window-layer shim for session runtimes:
// acquiring and releasing display surfaces and binding output buffers to
// them. In the CLI host a "surface" is a tracked viewport over a session
// buffer rather than an editor split, but the interface matches what an
// embedding editor layer would provide.
package display

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/term"
)

// Position anchors a surface within the host window.
type Position string

const (
	PositionRight  Position = "right"
	PositionLeft   Position = "left"
	PositionBottom Position = "bottom"
	PositionFloat  Position = "float"
)

// Geometry describes the size and placement of a requested surface.
// Zero Width/Height mean "derive from the host terminal".
type Geometry struct {
	Width    int
	Height   int
	Position Position
}

// Surface is an opaque handle to an acquired display surface.
type Surface string

// BufferView is the read-only view a surface renders from. Implemented by
// the runtime's session buffer; surfaces never get write access.
type BufferView interface {
	// Tail returns up to n trailing lines of the buffered output.
	Tail(n int) []string
}

// Layout is the window layer consumed by the session runtime.
type Layout interface {
	// AcquireSurface allocates a surface with the requested geometry.
	AcquireSurface(geo Geometry) (Surface, error)

	// ReleaseSurface frees a surface. Unknown handles are a no-op.
	ReleaseSurface(s Surface)

	// BindBuffer attaches a read-only buffer view to a surface, replacing
	// any previous binding.
	BindBuffer(s Surface, view BufferView) error
}

// ErrUnknownSurface is returned when binding against a released or
// never-acquired handle.
var ErrUnknownSurface = errors.New("display: unknown surface")

// Manager is the in-process Layout implementation. It tracks surfaces and
// their bound buffers so the CLI can render previews of whatever a
// surface is currently showing.
type Manager struct {
	mu       sync.Mutex
	surfaces map[Surface]*surfaceState
}

type surfaceState struct {
	geo  Geometry
	view BufferView
}

// NewManager creates an empty surface manager.
func NewManager() *Manager {
	return &Manager{surfaces: make(map[Surface]*surfaceState)}
}

// AcquireSurface implements Layout. Unset dimensions are filled from the
// controlling terminal's size.
func (m *Manager) AcquireSurface(geo Geometry) (Surface, error) {
	if geo.Width == 0 || geo.Height == 0 {
		w, h := hostSize()
		if geo.Width == 0 {
			geo.Width = w
		}
		if geo.Height == 0 {
			geo.Height = h
		}
	}
	if geo.Position == "" {
		geo.Position = PositionRight
	}

	s := Surface(uuid.NewString())
	m.mu.Lock()
	m.surfaces[s] = &surfaceState{geo: geo}
	m.mu.Unlock()
	return s, nil
}

// ReleaseSurface implements Layout.
func (m *Manager) ReleaseSurface(s Surface) {
	m.mu.Lock()
	delete(m.surfaces, s)
	m.mu.Unlock()
}

// BindBuffer implements Layout.
func (m *Manager) BindBuffer(s Surface, view BufferView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.surfaces[s]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSurface, s)
	}
	st.view = view
	return nil
}

// Geometry returns the geometry a surface was acquired with.
func (m *Manager) Geometry(s Surface) (Geometry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.surfaces[s]
	if !ok {
		return Geometry{}, false
	}
	return st.geo, true
}

// Content returns the trailing lines of the buffer bound to a surface,
// clipped to the surface height. Returns nil for unbound or unknown
// surfaces.
func (m *Manager) Content(s Surface) []string {
	m.mu.Lock()
	st, ok := m.surfaces[s]
	m.mu.Unlock()
	if !ok || st.view == nil {
		return nil
	}
	return st.view.Tail(st.geo.Height)
}

// Count returns the number of live surfaces.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.surfaces)
}

// hostSize probes the controlling terminal, falling back to 80x24 when
// stdout is not a terminal.
func hostSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
