package availability

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
	"github.com/spf13/cobra"
)

var (
	userStart       string
	userEnd         string
	userMinDuration int
	userJSON        bool
)

var userCmd = &cobra.Command{
	Use:   "user <member-id>",
	Short: "Show the free working hours of one member",
	Long: `List the free slots of a single member within working hours.

Examples:
  calcompare availability user 1f0e... --start 2025-06-02 --end 2025-06-06
  calcompare availability user 1f0e... -s 2025-06-02T12:00:00Z -e 2025-06-02T18:00:00Z --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.IndividualAvailabilityHandler == nil {
			return fmt.Errorf("availability requires an initialized database")
		}

		userID, err := parseID("member", args[0])
		if err != nil {
			return err
		}
		start, end, err := parsePeriod(userStart, userEnd)
		if err != nil {
			return err
		}

		result, err := app.IndividualAvailabilityHandler.Handle(cmd.Context(), queries.IndividualAvailabilityQuery{
			UserID:             userID,
			StartDate:          start,
			EndDate:            end,
			MinDurationMinutes: userMinDuration,
		})
		if err != nil {
			return fmt.Errorf("failed to compute availability: %w", err)
		}

		out := cmd.OutOrStdout()
		if userJSON {
			return cli.PrintJSON(out, result)
		}

		cli.Header(out, "Availability for %s", result.UserName)
		cli.Line(out, "Period: %s, slots of at least %d minutes",
			formatPeriod(result.AnalysisPeriod.Start, result.AnalysisPeriod.End),
			result.AnalysisPeriod.MinDurationMinutes,
		)
		if result.Degraded {
			cli.Warn(out, "%s, every working hour is reported free", result.Error)
		} else {
			cli.Line(out, "%d events, %d busy slots", result.EventsCount, result.BusySlotsCount)
		}
		separator(out)

		if len(result.FreeSlots) == 0 {
			cli.Warn(out, "No free slots found.")
			return nil
		}
		printSlots(out, result.FreeSlots)
		separator(out)
		cli.Good(out, "Total: %d slots, %s free",
			len(result.FreeSlots),
			formatDuration(time.Duration(result.TotalFreeHours*float64(time.Hour))),
		)
		return nil
	},
}

func init() {
	addPeriodFlags(userCmd, &userStart, &userEnd)
	userCmd.Flags().IntVarP(&userMinDuration, "min", "m", queries.DefaultMinDurationMinutes, "minimum slot duration in minutes")
	userCmd.Flags().BoolVar(&userJSON, "json", false, "output as JSON")
}
