package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func initCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create and save credentials for a session",
		Long:  "Loads the session's credentials, generating fresh ones when none are stored, and saves them. A new session id is generated when --session is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			st, err := a.manager.Open(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if err := st.SaveCreds(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), sessionID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id (default: new uuid)")
	return cmd
}
