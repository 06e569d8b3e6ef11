// Package group holds the commands that manage groups and their members.
package group

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Cmd is the group command group
var Cmd = &cobra.Command{
	Use:   "group",
	Short: "Manage groups",
	Long:  `Create groups, add and remove members, and list what is stored.`,
}

func init() {
	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(addMemberCmd)
	Cmd.AddCommand(removeMemberCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
}

func parseID(kind, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, value, err)
	}
	return id, nil
}
