package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <files...>",
		Short: "Stage files for the next commit",
		Long:  "Stage files for the next commit. Relative paths are taken from the\nrepository root given by --repo.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts)
			if err != nil {
				return err
			}
			defer r.Logger.Sync() //nolint:errcheck

			added, err := r.Add(args)
			if err != nil {
				return err
			}
			for _, e := range added {
				fmt.Fprintf(cmd.OutOrStdout(), "added %s  %s\n", e.Hash, e.Path)
			}
			return nil
		},
	}
}
