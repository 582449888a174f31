package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vicinitylabs/vicinity"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of vicinity",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vicinity version %s\n", strings.TrimSpace(vicinity.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
