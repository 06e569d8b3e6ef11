package domain

import (
	"sort"
	"time"
)

// FreeTimeExtractor turns one participant's busy intervals into free intervals inside working hours.
type FreeTimeExtractor struct {
	hours WorkingHours
}

// NewFreeTimeExtractor creates an extractor for the given working hours.
func NewFreeTimeExtractor(hours WorkingHours) *FreeTimeExtractor {
	return &FreeTimeExtractor{hours: hours}
}

// Extract returns the free intervals of at least minDurationMinutes for every day of the window,
// ordered by start. busy may be unsorted, overlapping or outside the window; it is not modified.
func (e *FreeTimeExtractor) Extract(busy []TimeInterval, window Window, minDurationMinutes int) []TimeInterval {
	free := make([]TimeInterval, 0)
	for _, day := range window.Days() {
		workday, ok := e.hours.ForDay(day)
		if !ok {
			continue
		}
		free = append(free, freeWithin(workday, busy, minDurationMinutes)...)
	}
	return free
}

// freeWithin walks the busy intervals clipped to bounds and collects the gaps between them.
func freeWithin(bounds TimeInterval, busy []TimeInterval, minDurationMinutes int) []TimeInterval {
	clipped := make([]TimeInterval, 0, len(busy))
	for _, b := range busy {
		if c, ok := b.Intersect(bounds); ok {
			clipped = append(clipped, c)
		}
	}
	sort.SliceStable(clipped, func(i, j int) bool {
		return clipped[i].start.Before(clipped[j].start)
	})

	minGap := time.Duration(minDurationMinutes) * time.Minute
	gaps := make([]TimeInterval, 0, len(clipped)+1)
	cursor := bounds.start
	for _, b := range clipped {
		if cursor.Before(b.start) && b.start.Sub(cursor) >= minGap {
			gaps = append(gaps, TimeInterval{start: cursor, end: b.start})
		}
		if b.end.After(cursor) {
			cursor = b.end
		}
	}
	if cursor.Before(bounds.end) && bounds.end.Sub(cursor) >= minGap {
		gaps = append(gaps, TimeInterval{start: cursor, end: bounds.end})
	}
	return gaps
}
