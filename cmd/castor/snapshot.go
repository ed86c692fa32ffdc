package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"castor/internal/universe"
)

func newSnapshotCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "snapshot -u UNIVERSE -o FILE",
		Short: "Validate a universe and store it as a msgpack snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return fmt.Errorf("missing --output")
			}
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.finish()
			err = s.timer.Measure("snapshot", func() error {
				return universe.WriteSnapshot(output, s.manifest)
			})
			if err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d types, %d type parameters)\n",
				output, len(s.manifest.Types), len(s.manifest.Params))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot file to write")
	return cmd
}
