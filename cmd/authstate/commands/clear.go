package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func clearCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every record of a session, credentials included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(sessionID); err != nil {
				return err
			}
			st, err := a.manager.Open(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			n := st.ClearState(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d keys\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id")
	return cmd
}
