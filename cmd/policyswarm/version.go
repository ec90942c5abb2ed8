package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "policyswarm %s\n  Build Time: %s\n  Git Commit: %s\n",
				Version, BuildTime, GitCommit)
			return err
		},
	}
}
