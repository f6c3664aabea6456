// Progsync CLI entry point
//
// Progsync keeps a local program-management hierarchy in sync with a
// remote workspace: local changes are staged in an outbox queue and
// pushed in priority order, remote-owned collections are pulled back
// into local mirror tables.
package main

import "github.com/fieldstack/progsync/internal/presentation/cli/commands"

func main() {
	commands.Execute()
}
