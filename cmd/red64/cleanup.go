package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/red64llc/red64/internal/agent"
)

var cleanupReason string

var cleanupCmd = &cobra.Command{
	Use:   "cleanup <feature>",
	Short: "Tear down a feature whose process already exited",
	Args:  cobra.ExactArgs(1),
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().StringVar(&cleanupReason, "reason", "cleanup requested", "reason recorded in the archived state's aborted phase")
}

// runCleanup rebuilds a Facade over the feature's persisted state and
// runs the same teardown Abort() performs for a live process: branch
// deletion, worktree removal, PR close, and archiving.
func runCleanup(cmd *cobra.Command, args []string) error {
	feature := args[0]
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	f, closeHist, ferr := buildFacade(workDir, agent.Claude, "")
	if ferr != nil {
		return ferr
	}
	if closeHist != nil {
		defer closeHist()
	}

	if res := f.Resume(feature); !res.Success {
		return fmt.Errorf("cleanup %s: %s", feature, res.Error)
	}

	res := f.Abort(cleanupReason)
	if !res.Success {
		return fmt.Errorf("cleanup %s: %s", feature, res.Error)
	}
	fmt.Printf("%s: cleaned up (%s)\n", feature, res.Phase.Type)
	return nil
}
