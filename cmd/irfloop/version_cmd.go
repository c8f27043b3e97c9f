package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is the semantic version of the irfloop binary. Bump the patch for
// fixes, the minor for new flags or subcommands.
const version = "0.1.0"

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the irfloop version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("irfloop v" + version)
		},
	}
}
