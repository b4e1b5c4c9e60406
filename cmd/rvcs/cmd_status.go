package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/odvcencio/rvcs/pkg/repo"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show staged files and their working tree state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts)
			if err != nil {
				return err
			}

			head, err := r.ReadHead()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if b := head.Branch(); b != "" {
				fmt.Fprintf(out, "On branch %s\n", b)
			} else {
				fmt.Fprintf(out, "HEAD detached at %s\n", head.Hash.Short())
			}

			entries, err := r.Status()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "nothing staged")
				return nil
			}

			green := color.New(color.FgGreen).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()
			for _, e := range entries {
				line := fmt.Sprintf("  %-9s %s", e.IndexStatus, e.Path)
				if e.IndexStatus != repo.StatusClean {
					line = green(line)
				}
				if e.WorkStatus != repo.StatusClean {
					line += " " + red("("+e.WorkStatus.String()+")")
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
