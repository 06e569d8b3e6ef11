package availability

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	"github.com/spf13/cobra"
)

var (
	membersStart       string
	membersEnd         string
	membersMinDuration int
	membersJSON        bool
)

var membersCmd = &cobra.Command{
	Use:   "members <group-id>",
	Short: "Show the free time of each member of a group",
	Long: `Break a group down into the individual availability of every member.

Examples:
  calcompare availability members 8c5d... --start 2025-06-02 --end 2025-06-06`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.MemberBreakdownHandler == nil {
			return fmt.Errorf("availability requires an initialized database")
		}

		groupID, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		start, end, err := parsePeriod(membersStart, membersEnd)
		if err != nil {
			return err
		}

		result, err := app.MemberBreakdownHandler.Handle(cmd.Context(), queries.MemberBreakdownQuery{
			GroupID:            groupID,
			StartDate:          start,
			EndDate:            end,
			MinDurationMinutes: membersMinDuration,
		})
		if err != nil {
			return fmt.Errorf("failed to compute member availability: %w", err)
		}

		out := cmd.OutOrStdout()
		if membersJSON {
			return cli.PrintJSON(out, result)
		}

		cli.Header(out, "Member availability for %s", result.GroupName)
		cli.Line(out, "Period: %s, slots of at least %d minutes",
			formatPeriod(result.AnalysisPeriod.Start, result.AnalysisPeriod.End),
			result.AnalysisPeriod.MinDurationMinutes,
		)
		if result.Message != "" {
			cli.Warn(out, "%s", result.Message)
			return nil
		}

		for _, m := range result.Members {
			separator(out)
			printMember(out, m.MemberMetadata)
			if len(m.FreeSlots) == 0 {
				cli.Muted(out, "    no free slots")
				continue
			}
			printSlots(out, m.FreeSlots)
			cli.Line(out, "    %s free", formatDuration(time.Duration(m.TotalFreeHours*float64(time.Hour))))
		}
		return nil
	},
}

func init() {
	addPeriodFlags(membersCmd, &membersStart, &membersEnd)
	membersCmd.Flags().IntVarP(&membersMinDuration, "min", "m", queries.DefaultMinDurationMinutes, "minimum slot duration in minutes")
	membersCmd.Flags().BoolVar(&membersJSON, "json", false, "output as JSON")
}
