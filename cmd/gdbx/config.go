package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/gdbx/internal/appconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage gdbx configuration",
	}

	var force bool
	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := appconfig.WriteDefault(path, force)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	initCmd.Flags().StringVar(&path, "path", "", "target path (defaults to the standard location)")
	cmd.AddCommand(initCmd)

	return cmd
}
