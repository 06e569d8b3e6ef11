package cli

import (
	"fmt"

	"github.com/felixgeelhaar/calcompare/pkg/observability"
	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the database, cache and event bus",
	Long: `Ping every configured dependency. The database is required; Redis and
RabbitMQ only degrade the report when they are unreachable.

Examples:
  calcompare health
  calcompare health --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return fmt.Errorf("app not initialized")
		}

		report := app.Health.Check(cmd.Context())
		out := cmd.OutOrStdout()

		if healthJSON {
			if err := PrintJSON(out, report); err != nil {
				return err
			}
		} else {
			for _, check := range report.Checks {
				switch check.Status {
				case observability.HealthStatusHealthy:
					Good(out, "  [ok]   %-10s %s", check.Name, check.Message)
				case observability.HealthStatusDegraded:
					Warn(out, "  [warn] %-10s %s", check.Name, check.Message)
				default:
					Bad(out, "  [fail] %-10s %s", check.Name, check.Message)
				}
			}
			Line(out, "status: %s", report.Status)
		}

		if report.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("unhealthy")
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(healthCmd)
}
