// Command ashera is a thin CLI front end over the ashera package. It is not
// the deliverable of spec.md (§1's explicit non-goal is a command-line
// front end); it exists only to give the command layer a reachable main.
package main

import (
	"os"

	"github.com/asheraflow/ashera/cmd/ashera/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
