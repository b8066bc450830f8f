// Package calendar holds the event value exchanged with the cache.
// Producing events and rendering them as iCalendar text happen elsewhere.
package calendar

import "time"

// Event is one VEVENT of a course timetable.
type Event struct {
	UID         string    `json:"uid"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end,omitzero"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
}

// Equal reports whether e and o describe the same event. Start and End are
// compared as instants, so zone differences are ignored.
func (e Event) Equal(o Event) bool {
	return e.UID == o.UID &&
		e.Start.Equal(o.Start) &&
		e.End.Equal(o.End) &&
		e.Summary == o.Summary &&
		e.Description == o.Description &&
		e.Location == o.Location
}
