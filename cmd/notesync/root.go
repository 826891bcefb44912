package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "notesync",
	Short: "Create, annotate and track notes against a NoteManager server",
	Long: `notesync keeps an optimistic local copy of your note collection and
synchronizes it with a NoteManager server in the background.

Sign in once with "notesync login"; the credential is stored locally and
reused until you log out or the server rejects it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
