package availability

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const (
	dateLayout      = "2006-01-02"
	localTimeLayout = "2006-01-02T15:04:05"
)

func addPeriodFlags(cmd *cobra.Command, start, end *string) {
	cmd.Flags().StringVarP(start, "start", "s", "", "start of the period (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVarP(end, "end", "e", "", "end of the period (YYYY-MM-DD or RFC3339)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

// parsePeriod reads the --start and --end values. A bare end date is stretched to
// the last second of that day so that --start and --end may name the same day.
func parsePeriod(start, end string) (time.Time, time.Time, error) {
	from, err := parseTime(start, false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --start: %w", err)
	}
	to, err := parseTime(end, true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --end: %w", err)
	}
	return from, to, nil
}

func parseTime(value string, endOfDay bool) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(localTimeLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither YYYY-MM-DD nor RFC3339", value)
	}
	if endOfDay {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return t, nil
}

func parseID(kind, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", kind, value, err)
	}
	return id, nil
}

func parseIDs(kind string, values []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := parseID(kind, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
