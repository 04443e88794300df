// main is the entry point for the vint CLI.
package main

import (
	"fmt"
	"os"

	"github.com/vintlab/vint/cmd"
	"github.com/vintlab/vint/internal/snapshot"
)

func main() {
	cmd.SetSnapshotManager(snapshot.Manager)

	err := cmd.Execute()
	snapshot.CloseStore()
	if perr := cmd.StopProfiling(); perr != nil {
		fmt.Fprintln(os.Stderr, "⚠️", perr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
