package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/MrEthical07/authstate/keyspace"
	"github.com/spf13/cobra"
)

func showCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a summary of a session's stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(sessionID); err != nil {
				return err
			}
			sessions, err := a.manager.Sessions(cmd.Context())
			if err != nil {
				return err
			}
			if !contains(sessions, sessionID) {
				return fmt.Errorf("session %q has no stored credentials", sessionID)
			}

			st, err := a.manager.Open(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			c := st.Creds

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Session:           %s\n", sessionID)
			fmt.Fprintf(w, "Key:               %s\n", keyspace.NewBuilder(a.manager.Config().Keyspace.Prefix).CredsKey(sessionID))
			fmt.Fprintf(w, "Registration ID:   %d\n", c.RegistrationID)
			fmt.Fprintf(w, "Registered:        %t\n", c.Registered)
			if c.Me != nil {
				fmt.Fprintf(w, "Account:           %s\n", c.Me.ID)
			}
			fmt.Fprintf(w, "Identity:          %s\n", fingerprint(c.SignedIdentityKey.Public))
			fmt.Fprintf(w, "Signed pre-key:    %d\n", c.SignedPreKey.KeyID)
			fmt.Fprintf(w, "Next pre-key:      %d\n", c.NextPreKeyID)
			fmt.Fprintf(w, "First unuploaded:  %d\n", c.FirstUnuploadedPreKeyID)
			fmt.Fprintf(w, "Account sync:      %d\n", c.AccountSyncCounter)
			return nil
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id")
	return cmd
}

// fingerprint renders the first 16 bytes of SHA-256(pub) in groups of four
// hex digits.
func fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	h := hex.EncodeToString(sum[:16])
	groups := make([]string, 0, len(h)/4)
	for i := 0; i < len(h); i += 4 {
		groups = append(groups, h[i:i+4])
	}
	return strings.Join(groups, " ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
