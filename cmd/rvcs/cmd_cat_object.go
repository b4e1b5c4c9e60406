package main

import (
	"github.com/spf13/cobra"

	"github.com/odvcencio/rvcs/pkg/object"
)

func newCatObjectCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cat-object <hash>",
		Short: "Print the raw bytes of a stored object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts)
			if err != nil {
				return err
			}
			data, err := r.Store.Get(object.Hash(args[0]))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
