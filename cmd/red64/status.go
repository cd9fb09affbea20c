package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/red64llc/red64/internal/history"
	"github.com/red64llc/red64/internal/state"
)

var (
	statusWatch bool
	statusAll   bool
)

var statusCmd = &cobra.Command{
	Use:   "status [<feature>]",
	Short: "Show a feature's current flow state",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "watch state.json and reprint on change")
	statusCmd.Flags().BoolVar(&statusAll, "all", false, "list every feature from the cross-feature history index")
}

func runStatus(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	if statusAll {
		return printHistoryTable(workDir)
	}
	if len(args) == 0 {
		return fmt.Errorf("status: <feature> is required unless --all is given")
	}

	feature := args[0]
	store := state.New(workDir)

	print := func() error {
		st, err := store.Load(feature)
		if err != nil {
			return err
		}
		fmt.Println(color.CyanString("%s — %s (%s)", st.Feature, st.Phase.Type, st.Mode))
		fmt.Printf("updated: %s\n", st.UpdatedAt)
		if st.TaskProgress != nil {
			done := 0
			for _, e := range st.TaskProgress.TaskEntries {
				if e.Status == "completed" {
					done++
				}
			}
			fmt.Printf("tasks: %d/%d\n", done, len(st.TaskProgress.TaskEntries))
		}
		return nil
	}

	if err := print(); err != nil {
		return err
	}
	if !statusWatch {
		return nil
	}
	return watchState(workDir, feature, print)
}

// watchState uses fsnotify on state.json so `status --watch` updates
// live without polling.
func watchState(workDir, feature string, print func() error) error {
	path := workDir + "/.red64/flows/" + feature + "/state.json"

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("status --watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("status --watch: %w", err)
	}

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				print()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func printHistoryTable(workDir string) error {
	idx, err := history.Open(workDir + "/.red64/history.db")
	if err != nil {
		return err
	}
	defer idx.Close()

	rows, err := idx.List()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "FEATURE\tMODE\tPHASE\tTASKS\tCOST")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t$%.2f\n", r.Feature, r.Mode, r.FinalPhase, r.CompletedTasks, r.TotalTasks, r.CostUsd)
	}
	return w.Flush()
}
