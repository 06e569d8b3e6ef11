package group

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	"github.com/spf13/cobra"
)

var removeMemberCmd = &cobra.Command{
	Use:     "remove-member <group-id> <member-id>",
	Short:   "Remove a member from a group",
	Aliases: []string{"rm-member"},
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RemoveMemberHandler == nil {
			return fmt.Errorf("group management requires an initialized database")
		}

		groupID, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		memberID, err := parseID("member", args[1])
		if err != nil {
			return err
		}

		if err := app.RemoveMemberHandler.Handle(cmd.Context(), commands.RemoveMemberCommand{GroupID: groupID, MemberID: memberID}); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		app.FlushOutbox(cmd.Context())

		cli.Good(cmd.OutOrStdout(), "Removed member %s", memberID)
		return nil
	},
}
