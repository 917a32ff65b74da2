// agentterm is a console for supervising interactive agent sessions.
package main

import (
	"os"

	"github.com/coordinatio/agentterm/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
