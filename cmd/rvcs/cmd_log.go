package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newLogCmd(opts *globalOptions) *cobra.Command {
	var oneline bool
	var limit int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show commit history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo(opts)
			if err != nil {
				return err
			}

			start, err := r.CurrentCommit()
			if err != nil {
				return err
			}
			if start == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no commits yet")
				return nil
			}

			entries, err := r.Log(start, limit)
			if err != nil {
				return err
			}

			yellow := color.New(color.FgYellow).SprintFunc()
			out := cmd.OutOrStdout()
			for _, entry := range entries {
				h, c := entry.Hash, entry.Commit
				if oneline {
					fmt.Fprintf(out, "%s %s\n", yellow(h.Short()), c.Message)
					continue
				}
				fmt.Fprintf(out, "commit %s\n", yellow(string(h)))
				fmt.Fprintf(out, "Author: %s\n", c.Author)
				fmt.Fprintf(out, "Date:   %s\n", time.Unix(int64(c.Timestamp), 0).UTC().Format("2006-01-02 15:04:05"))
				fmt.Fprintln(out)
				fmt.Fprintf(out, "    %s\n", c.Message)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&oneline, "oneline", false, "show each commit on one line")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of commits (0 = all)")

	return cmd
}
