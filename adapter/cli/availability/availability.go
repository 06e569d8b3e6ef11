// Package availability holds the commands that compare calendars.
package availability

import (
	"github.com/spf13/cobra"
)

// Cmd is the availability command group
var Cmd = &cobra.Command{
	Use:   "availability",
	Short: "Compare calendars",
	Long: `Find common free time for a group, break it down per member,
check a single user, or rank meeting suggestions.

Dates accept YYYY-MM-DD or RFC3339. Values without a zone are UTC, and a
bare --end date includes that whole day.`,
	Aliases: []string{"avail"},
}

func init() {
	Cmd.AddCommand(groupCmd)
	Cmd.AddCommand(userCmd)
	Cmd.AddCommand(membersCmd)
	Cmd.AddCommand(suggestCmd)
}
