package cmd

import (
	"log/slog"
	"os"
	"sync"

	"github.com/coordinatio/agentterm/internal/config"
	"github.com/coordinatio/agentterm/internal/display"
	"github.com/coordinatio/agentterm/internal/proc"
	"github.com/coordinatio/agentterm/internal/registry"
	"github.com/coordinatio/agentterm/internal/term"
)

// App wires the layers together for one console run: process spawner,
// display manager, session runtime, and the registry on top.
type App struct {
	Config   *config.Config
	Display  *display.Manager
	Runtime  *term.Runtime
	Registry *registry.Registry

	mu        sync.Mutex
	stopWatch func()
}

// NewApp assembles the application from cfg. A nil logger disables
// logging.
func NewApp(cfg *config.Config, log *slog.Logger) *App {
	disp := display.NewManager()
	rt := term.NewRuntime(proc.NewExecSpawner(), disp, log)
	reg := registry.New(rt, cfg.Session.Prefix, cfg.Session.Command, log)
	return &App{
		Config:   cfg,
		Display:  disp,
		Runtime:  rt,
		Registry: reg,
	}
}

// geometry returns the current default surface geometry. Reads go
// through here because the config watcher updates it concurrently.
func (a *App) geometry() display.Geometry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Config.Geometry()
}

// WatchConfig starts reloading surface geometry when the config file at
// path changes. Session defaults are fixed at startup; only the surface
// section is live. Watch failures are non-fatal.
func (a *App) WatchConfig(path string) {
	stop, err := config.Watch(path, func(c *config.Config) {
		a.mu.Lock()
		a.Config.Surface = c.Surface
		a.mu.Unlock()
	})
	if err != nil {
		return
	}
	a.mu.Lock()
	a.stopWatch = stop
	a.mu.Unlock()
}

// Close stops the config watcher and tears down every session.
func (a *App) Close() {
	a.mu.Lock()
	stop := a.stopWatch
	a.stopWatch = nil
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
	for _, rec := range a.Registry.List() {
		a.Registry.Delete(rec.ID)
	}
}

// newLogger builds the application logger. Verbose enables debug
// output; the default shows warnings and errors only.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
