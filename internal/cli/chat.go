package cli

import (
	"fmt"
	"strings"

	"vitalwatch/internal/chat"

	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat TEXT...",
		Short: "Ask the first-aid helper a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				return chat.ErrEmptyMessage
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), chat.DefaultResponder().Respond(text))
			return err
		},
	}
}
