package main

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/forcelayout/internal/sim"
	"github.com/san-kum/forcelayout/internal/viz"
)

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [graph-file]",
		Short: "watch the layout converge in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// the TUI owns the terminal
			quiet := newLogger(io.Discard, log.ErrorLevel)
			s, _, name, err := buildSimulator(cmd, args, sim.WithLogger(quiet))
			if err != nil {
				return err
			}
			defer s.Close()
			return viz.Run(s, name)
		},
	}
	addGraphFlags(cmd)
	addLayoutFlags(cmd)
	return cmd
}
