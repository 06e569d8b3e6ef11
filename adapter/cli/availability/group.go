package availability

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	"github.com/spf13/cobra"
)

var (
	groupStart       string
	groupEnd         string
	groupMinDuration int
	groupMembers     []string
	groupJSON        bool
)

var groupCmd = &cobra.Command{
	Use:   "group <group-id>",
	Short: "Find the time every member of a group is free",
	Long: `Intersect the free working hours of every member of a group.

Members whose calendar cannot be read are reported and treated as free.

Examples:
  calcompare availability group 8c5d... --start 2025-06-02 --end 2025-06-06
  calcompare availability group 8c5d... -s 2025-06-02 -e 2025-06-02 --min 60
  calcompare availability group 8c5d... -s 2025-06-02 -e 2025-06-06 --members 1f0e...,77ab...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GroupAvailabilityHandler == nil {
			return fmt.Errorf("availability requires an initialized database")
		}

		groupID, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		start, end, err := parsePeriod(groupStart, groupEnd)
		if err != nil {
			return err
		}
		memberIDs, err := parseIDs("member", groupMembers)
		if err != nil {
			return err
		}

		result, err := app.GroupAvailabilityHandler.Handle(cmd.Context(), queries.GroupAvailabilityQuery{
			GroupID:            groupID,
			StartDate:          start,
			EndDate:            end,
			MinDurationMinutes: groupMinDuration,
			MemberIDs:          memberIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to compute group availability: %w", err)
		}

		out := cmd.OutOrStdout()
		if groupJSON {
			return cli.PrintJSON(out, result)
		}

		cli.Header(out, "Common availability for %s", result.GroupName)
		cli.Line(out, "Period: %s, slots of at least %d minutes",
			formatPeriod(result.AnalysisPeriod.Start, result.AnalysisPeriod.End),
			result.AnalysisPeriod.MinDurationMinutes,
		)
		if result.Message != "" {
			cli.Warn(out, "%s", result.Message)
			return nil
		}

		cli.Line(out, "Members:")
		printMembers(out, result.MembersAnalyzed)
		separator(out)

		if len(result.CommonAvailability) == 0 {
			cli.Warn(out, "No common availability found.")
			return nil
		}
		printSlots(out, result.CommonAvailability)
		separator(out)
		cli.Good(out, "Total: %d slots, %s available",
			result.TotalSlotsFound,
			formatDuration(time.Duration(result.TotalAvailableHours*float64(time.Hour))),
		)
		return nil
	},
}

func init() {
	addPeriodFlags(groupCmd, &groupStart, &groupEnd)
	groupCmd.Flags().IntVarP(&groupMinDuration, "min", "m", queries.DefaultMinDurationMinutes, "minimum slot duration in minutes")
	groupCmd.Flags().StringSliceVar(&groupMembers, "members", nil, "restrict the analysis to these member ids")
	groupCmd.Flags().BoolVar(&groupJSON, "json", false, "output as JSON")
}
