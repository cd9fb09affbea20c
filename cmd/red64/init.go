package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/red64llc/red64/internal/specinit"
)

var initCmd = &cobra.Command{
	Use:   "init <feature> \"<description>\"",
	Short: "Create a feature's spec scaffold without running the workflow",
	Args:  cobra.ExactArgs(2),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	workDir, err := os.Getwd()
	if err != nil {
		return err
	}

	res, err := specinit.Init(workDir, args[0], args[1], time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	fmt.Printf("initialized %s at %s\n", res.FeatureName, res.SpecDir)
	return nil
}
