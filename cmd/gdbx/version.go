package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/gdbx/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gdbx version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Current())
		},
	}
}
