// Command red64 drives a spec-driven development workflow: requirements,
// design, and task decomposition generated by a coding-agent CLI, then
// implemented incrementally task-by-task in an isolated git worktree.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/red64llc/red64/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "red64",
	Short: "Spec-driven development orchestrator",
	Long: `red64 drives a feature through requirements, design, and task
decomposition by invoking a coding-agent CLI (claude, gemini, or codex),
then implements it task-by-task in an isolated git worktree, opening a
pull request when implementation is complete.

Available commands:
  implement  Run a feature's full workflow from the start (saved state is not resumed)
  status     Show a feature's current state
  init       Create a feature's spec scaffold only
  cleanup    Tear down a feature whose process already exited
  version    Show build version

Use "red64 [command] --help" for more information about a command.`,
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version.Get()
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(implementCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(cleanupCmd)
}
