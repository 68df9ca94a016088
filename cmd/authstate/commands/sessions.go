package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func sessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List sessions that have stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := a.manager.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range sessions {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}
