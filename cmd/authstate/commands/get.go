package commands

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/keyspace"
	"github.com/spf13/cobra"
)

func getCmd(a *app) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "get <category> <item>...",
		Short: "Print key records of a session as JSON",
		Long:  "Reads the given items of one key category. Absent items print as null. Binary values print in their stored tagged form.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(sessionID); err != nil {
				return err
			}
			if args[0] == string(keyspace.CategoryCreds) {
				return fmt.Errorf("use \"show\" to inspect credentials")
			}
			category, err := keyspace.ParseCategory(args[0])
			if err != nil {
				return err
			}

			st, err := a.manager.Open(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			values, err := st.Keys().Get(cmd.Context(), category, args[1:])
			if err != nil {
				return err
			}

			text, err := codec.Encode(values)
			if err != nil {
				return err
			}
			var out bytes.Buffer
			if err := json.Indent(&out, []byte(text), "", "  "); err != nil {
				return err
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "session id")
	return cmd
}

