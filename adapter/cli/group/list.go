package group

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List groups",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListGroupsHandler == nil {
			return fmt.Errorf("group management requires an initialized database")
		}

		groups, err := app.ListGroupsHandler.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list groups: %w", err)
		}

		out := cmd.OutOrStdout()
		if listJSON {
			return cli.PrintJSON(out, groups)
		}
		if len(groups) == 0 {
			cli.Line(out, "No groups found. Create one with: calcompare group create \"Team\"")
			return nil
		}

		cli.Header(out, "Groups (%d):", len(groups))
		for _, g := range groups {
			cli.Line(out, "  %s  %s (%d members)", g.ID, g.Name, len(g.Members))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
}
