package queries

import (
	"time"

	"github.com/felixgeelhaar/calcompare/internal/availability/domain"
	groupDomain "github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/google/uuid"
)

// TimeIntervalDTO is a free interval annotated with who is available.
type TimeIntervalDTO struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	AvailableUsers  []string  `json:"available_users,omitempty"`
	UserCount       int       `json:"user_count,omitempty"`
}

// AnalysisPeriod echoes the window a result was computed over.
type AnalysisPeriod struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	MinDurationMinutes int       `json:"min_duration_minutes"`
}

// MemberMetadata describes how a member's calendar contributed to a result.
type MemberMetadata struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	EventsCount    int       `json:"events_count"`
	BusySlotsCount int       `json:"busy_slots_count"`
	SkippedEvents  int       `json:"skipped_events,omitempty"`
	Degraded       bool      `json:"degraded,omitempty"`
	Error          string    `json:"error,omitempty"`
}

// SearchCriteria echoes the parameters of a suggestion search.
type SearchCriteria struct {
	StartDate              time.Time `json:"start_date"`
	EndDate                time.Time `json:"end_date"`
	MeetingDurationMinutes int       `json:"meeting_duration_minutes"`
	MaxSuggestions         int       `json:"max_suggestions"`
}

// MeetingSuggestionDTO is one proposed meeting.
type MeetingSuggestionDTO struct {
	Rank                   int       `json:"rank"`
	ScoreRank              int       `json:"score_rank"`
	StartTime              time.Time `json:"start_time"`
	EndTime                time.Time `json:"end_time"`
	SlotDurationMinutes    int       `json:"slot_duration_minutes"`
	MeetingDurationMinutes int       `json:"meeting_duration_minutes"`
	AvailableUsers         []string  `json:"available_users"`
	UserCount              int       `json:"user_count"`
	QualityScore           float64   `json:"quality_score"`
	TimeOfDay              string    `json:"time_of_day"`
	DayOfWeek              string    `json:"day_of_week"`
}

// calendarMessage is the user-facing error attached to a member whose calendar failed.
const calendarMessage = "Calendar access failed"

func toIntervalDTOs(intervals []domain.TimeInterval, users []string) []TimeIntervalDTO {
	dtos := make([]TimeIntervalDTO, 0, len(intervals))
	for _, iv := range intervals {
		dto := TimeIntervalDTO{
			StartTime:       iv.Start(),
			EndTime:         iv.End(),
			DurationMinutes: iv.DurationMinutes(),
		}
		if len(users) > 0 {
			dto.AvailableUsers = append([]string(nil), users...)
			dto.UserCount = len(users)
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

func toSuggestionDTOs(suggestions []domain.MeetingSuggestion, members []groupDomain.Member) []MeetingSuggestionDTO {
	dtos := make([]MeetingSuggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		users := memberIDStrings(members, s.Participants)
		dtos = append(dtos, MeetingSuggestionDTO{
			Rank:                   s.Rank,
			ScoreRank:              s.ScoreRank,
			StartTime:              s.Start,
			EndTime:                s.End,
			SlotDurationMinutes:    s.SlotDurationMinutes,
			MeetingDurationMinutes: s.MeetingDurationMinutes,
			AvailableUsers:         users,
			UserCount:              len(users),
			QualityScore:           s.QualityScore,
			TimeOfDay:              string(s.TimeOfDay),
			DayOfWeek:              s.DayOfWeek,
		})
	}
	return dtos
}

func memberMetadata(m groupDomain.Member, c Collected) MemberMetadata {
	meta := MemberMetadata{
		ID:             m.ID(),
		Name:           m.Name(),
		Email:          m.Email(),
		EventsCount:    c.Data.EventCount(),
		BusySlotsCount: len(c.Data.Busy()),
		SkippedEvents:  c.Skipped,
	}
	if c.Data.IsDegraded() {
		meta.Degraded = true
		meta.Error = calendarMessage
	}
	return meta
}

// memberIDStrings reports the members behind the given participants, in member order.
func memberIDStrings(members []groupDomain.Member, ids []domain.ParticipantID) []string {
	wanted := make(map[domain.ParticipantID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, m := range members {
		if wanted[domain.ParticipantID(m.ParticipantID())] {
			out = append(out, m.ID().String())
		}
	}
	return out
}

func hours(minutes int) float64 {
	return float64(minutes) / 60
}

func sumMinutes(intervals []domain.TimeInterval) int {
	total := 0
	for _, iv := range intervals {
		total += iv.DurationMinutes()
	}
	return total
}
