package domain

// DataStatus tells whether a participant's busy times were obtained.
type DataStatus int

const (
	StatusAvailable DataStatus = iota
	StatusDegraded
)

func (s DataStatus) String() string {
	if s == StatusDegraded {
		return "degraded"
	}
	return "available"
}

// ParticipantData is one participant's input to a group computation.
// A degraded participant had no usable calendar data and is treated as free for the whole window.
type ParticipantData struct {
	id         ParticipantID
	status     DataStatus
	busy       []TimeInterval
	eventCount int
	reason     string
}

// Available wraps the busy intervals fetched for a participant. busy is copied.
func Available(id ParticipantID, busy []TimeInterval, eventCount int) ParticipantData {
	owned := make([]TimeInterval, len(busy))
	copy(owned, busy)
	return ParticipantData{
		id:         id,
		status:     StatusAvailable,
		busy:       owned,
		eventCount: eventCount,
	}
}

// Degraded marks a participant whose data could not be fetched.
func Degraded(id ParticipantID, reason string) ParticipantData {
	return ParticipantData{
		id:     id,
		status: StatusDegraded,
		reason: reason,
	}
}

func (p ParticipantData) ID() ParticipantID  { return p.id }
func (p ParticipantData) Status() DataStatus { return p.status }
func (p ParticipantData) IsDegraded() bool   { return p.status == StatusDegraded }
func (p ParticipantData) Reason() string     { return p.reason }
func (p ParticipantData) EventCount() int    { return p.eventCount }

// Busy returns a copy of the busy intervals. It is empty for degraded participants.
func (p ParticipantData) Busy() []TimeInterval {
	out := make([]TimeInterval, len(p.busy))
	copy(out, p.busy)
	return out
}

// ParticipantSummary reports how one participant contributed to a group result.
type ParticipantSummary struct {
	ID             ParticipantID
	Degraded       bool
	Reason         string
	EventCount     int
	BusySlotsCount int
	FreeSlotsCount int
	FreeMinutes    int
}
