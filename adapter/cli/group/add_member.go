package group

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	memberName     string
	memberEmail    string
	existingMember string
)

var addMemberCmd = &cobra.Command{
	Use:   "add-member <group-id>",
	Short: "Add a member to a group",
	Long: `Add a new member, or an existing member of another group, to a group.

The member id is the participant id the calendar provider is asked for,
so token files and CalDAV paths are keyed by it.

Examples:
  calcompare group add-member 8c5d... --name Alice --email alice@example.com
  calcompare group add-member 8c5d... --member 1f0e...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.AddMemberHandler == nil {
			return fmt.Errorf("group management requires an initialized database")
		}

		groupID, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		command := commands.AddMemberCommand{GroupID: groupID, Name: memberName, Email: memberEmail}
		if existingMember != "" {
			if command.MemberID, err = parseID("member", existingMember); err != nil {
				return err
			}
		} else if memberName == "" {
			return fmt.Errorf("either --name or --member is required")
		}

		result, err := app.AddMemberHandler.Handle(cmd.Context(), command)
		if err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}
		app.FlushOutbox(cmd.Context())

		out := cmd.OutOrStdout()
		if command.MemberID != uuid.Nil {
			cli.Good(out, "Added member %s", result.MemberID)
			return nil
		}
		cli.Good(out, "Added member: %s", memberName)
		cli.Line(out, "  ID: %s", result.MemberID)
		return nil
	},
}

func init() {
	addMemberCmd.Flags().StringVarP(&memberName, "name", "n", "", "member name")
	addMemberCmd.Flags().StringVar(&memberEmail, "email", "", "member email")
	addMemberCmd.Flags().StringVar(&existingMember, "member", "", "id of an existing member")
}
