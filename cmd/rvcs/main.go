package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/rvcs/internal/logging"
	"github.com/odvcencio/rvcs/pkg/repo"
)

const version = "0.1.0-dev"

// globalOptions holds the flags shared by every subcommand.
type globalOptions struct {
	repoDir string
	verbose bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "rvcs",
		Short:         "A minimal local snapshot store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.repoDir, "repo", "C", ".", "repository root directory")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log each step to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(opts))
	root.AddCommand(newAddCmd(opts))
	root.AddCommand(newCommitCmd(opts))
	root.AddCommand(newLogCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newCatObjectCmd(opts))
	root.AddCommand(newReflogCmd(opts))
	root.AddCommand(newVerifyCmd(opts))

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rvcs %s\n", version)
		},
	}
}

// openRepo opens the repository named by --repo and attaches a logger at
// the configured level, or debug with --verbose.
func openRepo(opts *globalOptions) (*repo.Repo, error) {
	r, err := repo.Open(opts.repoDir)
	if err != nil {
		return nil, err
	}

	level := r.Config.Log.Level
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	r.Logger = logger.With(zap.String("repo", r.RootDir))
	return r, nil
}
