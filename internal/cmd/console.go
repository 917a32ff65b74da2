package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coordinatio/agentterm/internal/ids"
	"github.com/coordinatio/agentterm/internal/registry"
	"github.com/coordinatio/agentterm/internal/style"
	"github.com/coordinatio/agentterm/internal/tui/picker"
)

const consoleHelp = `Commands:
  new [name]            create a session and make it active
  ls                    list sessions, newest first
  switch <id>           make a session active (recreates it if dead)
  toggle                hide the active session, or bring back the last one
  hide                  hide the active session, keep it running
  rename <id> <name>    rename a session
  send <id> <text>      send a line to a session's process
  peek <id> [lines]     show the tail of a session's output
  kill <id>             terminate a session and remove it
  status                show registry state
  pick                  open the interactive session picker
  help                  show this help
  quit                  kill all sessions and exit`

// runConsole runs the interactive session console until quit or EOF.
func runConsole(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	app := NewApp(cfg, newLogger(flagVerbose))
	app.WatchConfig(path)
	defer app.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "agentterm console. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, "agentterm> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		reply, quit, err := dispatch(app, scanner.Text())
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
		if quit {
			return nil
		}
	}
}

// dispatch executes one console line against the app. It returns the
// text to print, whether the console should exit, and any error.
func dispatch(app *App, line string) (string, bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, nil
	}
	cmd, args := fields[0], fields[1:]
	opts := registry.Options{Geometry: app.geometry()}

	switch cmd {
	case "new":
		name := strings.Join(args, " ")
		id, err := app.Registry.CreateSession(name, opts)
		if err != nil {
			return "", false, err
		}
		rec, _ := app.Registry.Get(id)
		return fmt.Sprintf("created %s (%s)", id, rec.Name), false, nil

	case "ls":
		return renderList(app), false, nil

	case "switch":
		id, err := argID(args)
		if err != nil {
			return "", false, err
		}
		if err := app.Registry.SwitchTo(id, opts); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("switched to %s", id), false, nil

	case "toggle":
		if err := app.Registry.Toggle(opts); err != nil {
			return "", false, err
		}
		if active := app.Registry.ActiveID(); active.Valid() {
			return fmt.Sprintf("showing %s", active), false, nil
		}
		return "hidden", false, nil

	case "hide":
		app.Registry.Hide()
		return "hidden", false, nil

	case "rename":
		if len(args) < 2 {
			return "", false, fmt.Errorf("usage: rename <id> <name>")
		}
		id, err := ids.ParseSessionID(args[0])
		if err != nil {
			return "", false, err
		}
		if err := app.Registry.Rename(id, strings.Join(args[1:], " ")); err != nil {
			return "", false, err
		}
		return "renamed", false, nil

	case "send":
		if len(args) < 2 {
			return "", false, fmt.Errorf("usage: send <id> <text>")
		}
		id, err := ids.ParseSessionID(args[0])
		if err != nil {
			return "", false, err
		}
		if _, err := app.Runtime.Send(strings.Join(args[1:], " "), id); err != nil {
			return "", false, err
		}
		return "sent", false, nil

	case "peek":
		id, err := argID(args)
		if err != nil {
			return "", false, err
		}
		lines := 20
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
				lines = n
			}
		}
		tail, ok := app.Runtime.Peek(id, lines)
		if !ok {
			return fmt.Sprintf("%s has no output (not running)", id), false, nil
		}
		return strings.Join(tail, "\n"), false, nil

	case "kill":
		id, err := argID(args)
		if err != nil {
			return "", false, err
		}
		if !app.Registry.Delete(id) {
			return fmt.Sprintf("no such session %s", id), false, nil
		}
		return fmt.Sprintf("killed %s", id), false, nil

	case "status":
		return renderStatus(app), false, nil

	case "pick":
		result, err := picker.Run(app.Registry, app.Runtime)
		if err != nil {
			return "", false, err
		}
		if !result.Selected.Valid() {
			return "", false, nil
		}
		if err := app.Registry.SwitchTo(result.Selected, opts); err != nil {
			return "", false, err
		}
		return fmt.Sprintf("switched to %s", result.Selected), false, nil

	case "help":
		return consoleHelp, false, nil

	case "quit", "exit":
		return "", true, nil

	default:
		return "", false, fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
}

func argID(args []string) (ids.SessionID, error) {
	if len(args) == 0 {
		return ids.None, fmt.Errorf("session id required")
	}
	return ids.ParseSessionID(args[0])
}

func renderList(app *App) string {
	recs := app.Registry.List()
	if len(recs) == 0 {
		return "no sessions"
	}
	active := app.Registry.ActiveID()

	tbl := style.NewTable(
		style.Column{Name: "ID", Width: 5},
		style.Column{Name: "NAME", Width: 24},
		style.Column{Name: "STATE", Width: 10},
		style.Column{Name: "CREATED", Width: 9},
		style.Column{Name: "LAST ACTIVE", Width: 11},
	).SetIndent("")

	for _, rec := range recs {
		state := "background"
		switch {
		case rec.ID == active:
			state = "active"
		case !app.Runtime.IsRunning(rec.ID):
			state = "dead"
		}
		tbl.AddRow(
			rec.ID.String(),
			rec.Name,
			state,
			rec.CreatedAt.Format("15:04:05"),
			rec.LastActiveAt.Format("15:04:05"),
		)
	}
	return strings.TrimRight(tbl.Render(), "\n")
}

func renderStatus(app *App) string {
	snap := app.Registry.SnapshotState()
	return fmt.Sprintf("sessions: %d  active: %s  last-active: %s",
		snap.Count, snap.ActiveID, snap.LastActiveID)
}
