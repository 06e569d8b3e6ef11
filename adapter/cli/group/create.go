package group

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/groups/application/commands"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a group",
	Long: `Create an empty group. Add members with "calcompare group add-member".

Examples:
  calcompare group create "Platform team"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateGroupHandler == nil {
			return fmt.Errorf("group management requires an initialized database")
		}

		result, err := app.CreateGroupHandler.Handle(cmd.Context(), commands.CreateGroupCommand{Name: args[0]})
		if err != nil {
			return fmt.Errorf("failed to create group: %w", err)
		}
		app.FlushOutbox(cmd.Context())

		out := cmd.OutOrStdout()
		cli.Good(out, "Created group: %s", args[0])
		cli.Line(out, "  ID: %s", result.GroupID)
		return nil
	},
}
