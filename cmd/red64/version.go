package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/red64llc/red64/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("red64 version %s\n", version.Get())
	},
}
