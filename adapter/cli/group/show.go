package group

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/groups/application/queries"
	"github.com/spf13/cobra"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <group-id>",
	Short: "Show a group and its members",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetGroupHandler == nil {
			return fmt.Errorf("group management requires an initialized database")
		}

		groupID, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		group, err := app.GetGroupHandler.Handle(cmd.Context(), queries.GetGroupQuery{GroupID: groupID})
		if err != nil {
			return fmt.Errorf("failed to load group: %w", err)
		}

		out := cmd.OutOrStdout()
		if showJSON {
			return cli.PrintJSON(out, group)
		}

		cli.Header(out, "%s", group.Name)
		cli.Line(out, "  ID: %s", group.ID)
		if len(group.Members) == 0 {
			cli.Muted(out, "  no members")
			return nil
		}
		for _, m := range group.Members {
			if m.Email != "" {
				cli.Line(out, "  - %s <%s>  %s", m.Name, m.Email, m.ID)
				continue
			}
			cli.Line(out, "  - %s  %s", m.Name, m.ID)
		}
		return nil
	},
}

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}
