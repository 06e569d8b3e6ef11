package availability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/calcompare/adapter/cli"
	"github.com/felixgeelhaar/calcompare/internal/availability/application/queries"
)

const rule = 60

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60

	if hours > 0 && minutes > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dm", minutes)
}

func formatPeriod(start, end time.Time) string {
	return start.UTC().Format(dateLayout) + " - " + end.UTC().Format(dateLayout)
}

func printSlots(out io.Writer, slots []queries.TimeIntervalDTO) {
	var day string
	for _, slot := range slots {
		if d := slot.StartTime.UTC().Format("Mon 2006-01-02"); d != day {
			day = d
			cli.Line(out, "  %s", day)
		}
		cli.Line(out, "    %s - %s  (%s)",
			slot.StartTime.UTC().Format("15:04"),
			slot.EndTime.UTC().Format("15:04"),
			formatDuration(time.Duration(slot.DurationMinutes)*time.Minute),
		)
	}
}

func printMembers(out io.Writer, members []queries.MemberMetadata) {
	for _, m := range members {
		printMember(out, m)
	}
}

func printMember(out io.Writer, m queries.MemberMetadata) {
	name := m.Name
	if m.Email != "" {
		name += " <" + m.Email + ">"
	}
	if m.Degraded {
		cli.Warn(out, "  ! %s: %s, treated as free", name, strings.ToLower(m.Error))
		return
	}
	detail := fmt.Sprintf("%d events, %d busy slots", m.EventsCount, m.BusySlotsCount)
	if m.SkippedEvents > 0 {
		detail += fmt.Sprintf(", %d skipped", m.SkippedEvents)
	}
	cli.Line(out, "  - %s: %s", name, detail)
}

func separator(out io.Writer) {
	cli.Muted(out, "%s", strings.Repeat("-", rule))
}
