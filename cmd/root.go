// Package cmd wires the rusk CLI: zero positional arguments list the
// discovered tasks, one or more parse as TaskKey roots and run the DAG
// they imply.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yarlson/rusk/internal/composer"
	"github.com/yarlson/rusk/internal/display"
	"github.com/yarlson/rusk/internal/exec"
	"github.com/yarlson/rusk/internal/executable"
	"github.com/yarlson/rusk/internal/normpath"
	"github.com/yarlson/rusk/internal/ruskerr"
	"github.com/yarlson/rusk/internal/settings"
	"github.com/yarlson/rusk/internal/taskkey"
	"github.com/yarlson/rusk/internal/tree"
)

// NewRootCmd creates the root rusk command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rusk [TASKKEY...]",
		Short: "A parallel task runner driven by rusk.toml / .rusk.toml",
		Long: `rusk discovers rusk.toml / .rusk.toml files under the working
directory, builds the dependency tree of the requested tasks, and runs it
concurrently: every task runs exactly once no matter how many other
tasks depend on it, and a task only starts once every dependency it
transitively needs has finished successfully.

With no arguments, rusk lists every discovered task and any config
files that failed to load.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRusk(cmd, args)
		},
	}

	return rootCmd
}

// Execute runs the root command and exits the process with the exit
// code convention: 0 on success, a failing task's own exit code on
// TaskFailed, 1 for any other error.
func Execute() {
	os.Exit(run(NewRootCmd()))
}

func run(rootCmd *cobra.Command) int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}

	fmt.Fprintln(os.Stderr, err)

	var taskFailed *ruskerr.TaskFailedError
	if errors.As(err, &taskFailed) {
		return taskFailed.ExitCode
	}
	return 1
}

func runRusk(cmd *cobra.Command, args []string) error {
	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cwd, err := normpath.CWD()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(cmd.ErrOrStderr(), "interrupted, waiting for in-flight tasks to stop...")
		cancel()
	}()

	scanCtx, scanCancel := context.WithTimeout(ctx, cfg.ScanTimeout)
	defer scanCancel()

	comp := composer.New()
	if err := comp.WalkDir(scanCtx, cwd.Abs()); err != nil {
		return err
	}

	if len(args) == 0 {
		display.List(cmd.OutOrStdout(), cmd.ErrOrStderr(), comp.TasksList(), comp.ErrorsList(), cfg.NoColor)
		return nil
	}

	defs, globalEnvs, err := comp.TryIntoTaskMap()
	if err != nil {
		return err
	}

	execs, err := executable.Normalize(defs, globalEnvs)
	if err != nil {
		return err
	}

	targets := make([]taskkey.Key, len(args))
	for i, arg := range args {
		key, err := taskkey.Parse(arg, cwd)
		if err != nil {
			return err
		}
		targets[i] = key
	}

	roots, err := tree.Build(execs, targets, executable.Deps)
	if err != nil {
		return err
	}

	executor := exec.New(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.MaxParallel)
	return executor.Run(ctx, roots)
}
