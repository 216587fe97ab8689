// Command tipsim replays scripted hover and click scenarios against a tooltip
// document on a simulated clock, checking disclosure states along the way.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tipsim",
		Short:         "tooltip disclosure scenario simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var debug bool
	var showStates bool

	cmd := &cobra.Command{
		Use:   "run scenario.yaml...",
		Short: "replay one or more scenario files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if debug {
				var err error
				if logger, err = zap.NewDevelopment(); err != nil {
					return err
				}
				defer logger.Sync()
			}

			var errs error
			for _, path := range args {
				if err := runScenarioFile(cmd, path, logger, showStates); err != nil {
					errs = multierr.Append(errs, fmt.Errorf("%s: %w", path, err))
				}
			}
			return errs
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "log every dispatch and state transition")
	cmd.Flags().BoolVar(&showStates, "states", false, "print the final state of every region")
	return cmd
}

func runScenarioFile(cmd *cobra.Command, path string, logger *zap.Logger, showStates bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, err := ParseScenario(data)
	if err != nil {
		return err
	}
	r, err := NewRunner(s, logger.Named(s.Name))
	if err != nil {
		return err
	}

	playErr := r.Play(s)
	if playErr != nil {
		cmd.Printf("FAIL %s (%s)\n", s.Name, path)
	} else {
		cmd.Printf("ok   %s (%s)\n", s.Name, path)
	}
	if showStates {
		states := r.States()
		ids := make([]string, 0, len(states))
		for id := range states {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cmd.Printf("  %-20s %s\n", id, states[id])
		}
	}
	return playErr
}
