package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is up",
		RunE: withEnv(opts, func(cmd *cobra.Command, args []string, e *env) error {
			status, err := e.backend.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("backend at %s: %w", e.backend.Endpoints().APIBase(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", e.backend.Endpoints().APIBase(), status)
			return nil
		}),
	}
}
