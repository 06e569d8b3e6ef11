package availability

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	"github.com/spf13/cobra"
)

var (
	suggestStart    string
	suggestEnd      string
	suggestDuration int
	suggestMax      int
	suggestJSON     bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <group-id>",
	Short: "Rank meeting times for a group",
	Long: `Suggest the best start times for a meeting of the given length.

Slots are ranked by how many members are free, then by time of day
(mid-morning first), then by date.

Examples:
  calcompare availability suggest 8c5d... --start 2025-06-02 --end 2025-06-06
  calcompare availability suggest 8c5d... -s 2025-06-02 -e 2025-06-06 --duration 30 --max 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.SuggestMeetingsHandler == nil {
			return fmt.Errorf("availability requires an initialized database")
		}

		groupID, err := parseID("group", args[0])
		if err != nil {
			return err
		}
		start, end, err := parsePeriod(suggestStart, suggestEnd)
		if err != nil {
			return err
		}

		result, err := app.SuggestMeetingsHandler.Handle(cmd.Context(), queries.SuggestMeetingsQuery{
			GroupID:                groupID,
			StartDate:              start,
			EndDate:                end,
			MeetingDurationMinutes: suggestDuration,
			MaxSuggestions:         suggestMax,
		})
		if err != nil {
			return fmt.Errorf("failed to suggest meeting times: %w", err)
		}

		out := cmd.OutOrStdout()
		if suggestJSON {
			return cli.PrintJSON(out, result)
		}

		cli.Header(out, "Meeting suggestions for %s", result.GroupName)
		cli.Line(out, "Period: %s, %d minute meeting",
			formatPeriod(result.SearchCriteria.StartDate, result.SearchCriteria.EndDate),
			result.SearchCriteria.MeetingDurationMinutes,
		)
		if len(result.MembersAnalyzed) > 0 {
			cli.Line(out, "Members:")
			printMembers(out, result.MembersAnalyzed)
		}
		separator(out)

		if len(result.Suggestions) == 0 {
			cli.Warn(out, "%s", result.Message)
			return nil
		}
		for i, s := range result.Suggestions {
			line := fmt.Sprintf("%d. %s - %s  %s, %d/%d free, score %.1f",
				s.Rank,
				s.StartTime.UTC().Format("Mon 2006-01-02 15:04"),
				s.EndTime.UTC().Format("15:04"),
				s.TimeOfDay,
				s.UserCount,
				len(result.MembersAnalyzed),
				s.QualityScore,
			)
			if i == 0 {
				cli.Leading(out, "%s", line)
				continue
			}
			cli.Line(out, "%s", line)
		}
		return nil
	},
}

func init() {
	addPeriodFlags(suggestCmd, &suggestStart, &suggestEnd)
	suggestCmd.Flags().IntVarP(&suggestDuration, "duration", "d", 60, "meeting length in minutes")
	suggestCmd.Flags().IntVar(&suggestMax, "max", queries.DefaultMaxSuggestions, "maximum number of suggestions")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON")
}
