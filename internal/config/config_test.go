package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Prefix != "Agent" {
		t.Errorf("Prefix = %q, want %q", cfg.Session.Prefix, "Agent")
	}
	if cfg.Session.Command != "agent" {
		t.Errorf("Command = %q, want %q", cfg.Session.Command, "agent")
	}
	if cfg.Surface.Position != "right" {
		t.Errorf("Position = %q, want %q", cfg.Surface.Position, "right")
	}
}

func TestLoadAppliesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[session]
prefix = "Chat"

[surface]
width = 100
position = "bottom"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Session.Prefix != "Chat" {
		t.Errorf("Prefix = %q, want %q", cfg.Session.Prefix, "Chat")
	}
	// Unset fields keep defaults.
	if cfg.Session.Command != "agent" {
		t.Errorf("Command = %q, want default %q", cfg.Session.Command, "agent")
	}
	if cfg.Surface.Width != 100 {
		t.Errorf("Width = %d, want 100", cfg.Surface.Width)
	}
	if cfg.Surface.Position != "bottom" {
		t.Errorf("Position = %q, want %q", cfg.Surface.Position, "bottom")
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[session\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGeometry(t *testing.T) {
	cfg := Default()
	cfg.Surface.Width = 90
	cfg.Surface.Height = 30
	geo := cfg.Geometry()
	if geo.Width != 90 || geo.Height != 30 {
		t.Errorf("geometry = %+v, want 90x30", geo)
	}
	if string(geo.Position) != "right" {
		t.Errorf("position = %q, want right", geo.Position)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[session]\nprefix = \"A\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan *Config, 1)
	stop, err := Watch(path, func(cfg *Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte("[session]\nprefix = \"B\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changed:
		if cfg.Session.Prefix != "B" {
			t.Errorf("reloaded Prefix = %q, want %q", cfg.Session.Prefix, "B")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config reload never observed")
	}
}
