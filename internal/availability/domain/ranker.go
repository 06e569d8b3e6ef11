package domain

import (
	"sort"
	"time"
)

// TimeOfDay labels the part of the day a meeting starts in.
type TimeOfDay string

const (
	Morning   TimeOfDay = "Morning"
	Afternoon TimeOfDay = "Afternoon"
	Evening   TimeOfDay = "Evening"
	Night     TimeOfDay = "Night"
)

// TimeOfDayFor returns the label for the UTC hour of t.
func TimeOfDayFor(t time.Time) TimeOfDay {
	hour := t.UTC().Hour()
	switch {
	case hour >= 6 && hour < 12:
		return Morning
	case hour >= 12 && hour < 17:
		return Afternoon
	case hour >= 17 && hour < 21:
		return Evening
	default:
		return Night
	}
}

// MeetingSuggestion is a proposed meeting placed at the start of a common free interval.
type MeetingSuggestion struct {
	Start                  time.Time
	End                    time.Time
	SlotDurationMinutes    int
	MeetingDurationMinutes int
	QualityScore           float64
	// Rank is the position in the duration-first ordering.
	Rank int
	// ScoreRank is the position when ordered by QualityScore alone.
	ScoreRank    int
	TimeOfDay    TimeOfDay
	DayOfWeek    string
	Participants []ParticipantID
}

// SuggestionRanker turns common availability into ranked meeting proposals.
type SuggestionRanker struct{}

// NewSuggestionRanker creates a ranker.
func NewSuggestionRanker() *SuggestionRanker {
	return &SuggestionRanker{}
}

// Rank orders the eligible intervals longest first, earliest start breaking ties, and proposes
// a meeting at the start of each, up to maxSuggestions. Intervals shorter than the meeting are
// discarded before the cap is applied.
func (r *SuggestionRanker) Rank(common []TimeInterval, meetingDurationMinutes, maxSuggestions int, participants []ParticipantID) []MeetingSuggestion {
	if meetingDurationMinutes <= 0 || maxSuggestions <= 0 {
		return []MeetingSuggestion{}
	}

	eligible := make([]TimeInterval, 0, len(common))
	for _, iv := range common {
		if iv.DurationMinutes() >= meetingDurationMinutes {
			eligible = append(eligible, iv)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		di, dj := eligible[i].DurationMinutes(), eligible[j].DurationMinutes()
		if di != dj {
			return di > dj
		}
		return eligible[i].start.Before(eligible[j].start)
	})
	if len(eligible) > maxSuggestions {
		eligible = eligible[:maxSuggestions]
	}

	meeting := time.Duration(meetingDurationMinutes) * time.Minute
	suggestions := make([]MeetingSuggestion, 0, len(eligible))
	for i, slot := range eligible {
		start := slot.start
		members := make([]ParticipantID, len(participants))
		copy(members, participants)
		suggestions = append(suggestions, MeetingSuggestion{
			Start:                  start,
			End:                    start.Add(meeting),
			SlotDurationMinutes:    slot.DurationMinutes(),
			MeetingDurationMinutes: meetingDurationMinutes,
			QualityScore:           QualityScore(start, slot.DurationMinutes(), meetingDurationMinutes),
			Rank:                   i + 1,
			TimeOfDay:              TimeOfDayFor(start),
			DayOfWeek:              start.Weekday().String(),
			Participants:           members,
		})
	}
	assignScoreRanks(suggestions)
	return suggestions
}

func assignScoreRanks(suggestions []MeetingSuggestion) {
	order := make([]int, len(suggestions))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		sa, sb := suggestions[order[a]], suggestions[order[b]]
		if sa.QualityScore != sb.QualityScore {
			return sa.QualityScore > sb.QualityScore
		}
		return sa.Rank < sb.Rank
	})
	for pos, idx := range order {
		suggestions[idx].ScoreRank = pos + 1
	}
}

// QualityScore rates a meeting start in [0, 1] by hour, weekday and slack in the slot.
// The sum is kept in tenths so equal inputs always compare equal.
func QualityScore(start time.Time, slotDurationMinutes, meetingDurationMinutes int) float64 {
	start = start.UTC()
	tenths := 0

	switch hour := start.Hour(); {
	case hour >= 9 && hour <= 16:
		tenths += 4
	case hour >= 8 && hour <= 17:
		tenths += 3
	case hour >= 7 && hour <= 18:
		tenths += 2
	default:
		tenths++
	}

	switch start.Weekday() {
	case time.Tuesday, time.Wednesday, time.Thursday:
		tenths += 3
	case time.Monday, time.Friday:
		tenths += 2
	default:
		tenths++
	}

	switch buffer := slotDurationMinutes - meetingDurationMinutes; {
	case buffer >= 30:
		tenths += 2
	case buffer >= 15:
		tenths++
	}

	if slotDurationMinutes >= 2*meetingDurationMinutes {
		tenths++
	}

	if tenths > 10 {
		tenths = 10
	}
	return float64(tenths) / 10
}
