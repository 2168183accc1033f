package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "herald",
	Short: "Herald - Notification targeting and read-state sync engine",
	Long: `Herald keeps a recipient's notification inbox synchronized with a
server of record: it resolves targeting (user, role, audience),
filters drafts and scheduled records, normalizes historical
read-state field variants, and tolerates server failures by
degrading to a stale but functional local view.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Herald version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))
}
