package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/rvcs/pkg/repo"
)

func newCommitCmd(opts *globalOptions) *cobra.Command {
	var message string
	var signKey string
	var sign bool

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record the staged files as a new snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := openRepo(opts)
			if err != nil {
				return err
			}
			defer r.Logger.Sync() //nolint:errcheck

			var signer repo.CommitSigner
			if sign || signKey != "" {
				s, keyPath, err := newSSHCommitSigner(signKey)
				if err != nil {
					return err
				}
				r.Logger.Debug("signing commit with " + keyPath)
				signer = s
			}

			h, err := r.CommitWithSigner(message, signer)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", color.New(color.FgYellow).Sprint(h.Short()), message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().BoolVarP(&sign, "sign", "S", false, "sign the commit with the default SSH key")
	cmd.Flags().StringVar(&signKey, "sign-key", "", "sign the commit with this SSH private key")

	return cmd
}
