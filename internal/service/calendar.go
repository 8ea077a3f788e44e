package service

import (
	"slices"

	"github.com/zooguide/backend/internal/domain"
	"github.com/zooguide/backend/pkg/geo"
)

// EventCalendar is the read-only day schedule, at most one event per facility
type EventCalendar struct {
	events []domain.Event
	byArea map[string]domain.Event
}

// AttendanceCheck answers whether the visitor can reach an event before it starts
type AttendanceCheck struct {
	Event                 domain.Event     `json:"event"`
	FacilityID            string           `json:"facility_id"`
	DistanceMeters        float64          `json:"distance_meters"`
	WalkingTimeMinutes    int              `json:"walking_time_minutes"`
	ArrivalTime           domain.ClockTime `json:"arrival_time"`
	CanArriveOnTime       bool             `json:"can_arrive_on_time"`
	TimeUntilEventMinutes int              `json:"time_until_event_minutes"`
	IsFull                bool             `json:"is_full"`
}

// NewEventCalendar indexes events by facility. When two events share a
// facility the first one wins.
func NewEventCalendar(events []domain.Event) *EventCalendar {
	c := &EventCalendar{byArea: make(map[string]domain.Event, len(events))}
	for _, e := range events {
		if _, dup := c.byArea[e.AreaID]; dup {
			continue
		}
		c.byArea[e.AreaID] = e
		c.events = append(c.events, e)
	}
	slices.SortStableFunc(c.events, func(a, b domain.Event) int {
		return int(a.StartTime - b.StartTime)
	})
	return c
}

// Events returns the schedule ordered by start time
func (c *EventCalendar) Events() []domain.Event {
	return slices.Clone(c.events)
}

// FindEvent returns the event held at facilityID
func (c *EventCalendar) FindEvent(facilityID string) (domain.Event, bool) {
	e, ok := c.byArea[facilityID]
	return e, ok
}

// CheckAttendanceFeasibility returns nil when the facility is unknown or
// has no event.
func (c *EventCalendar) CheckAttendanceFeasibility(snap FacilitySnapshot, facilityID string, user domain.LatLng, now domain.ClockTime) *AttendanceCheck {
	event, ok := c.FindEvent(facilityID)
	if !ok {
		return nil
	}
	facility, ok := snap.Find(facilityID)
	if !ok {
		return nil
	}

	distance := user.DistanceTo(facility.Position())
	walking := geo.WalkingMinutes(distance)
	arrival := now.Add(walking)

	return &AttendanceCheck{
		Event:                 event,
		FacilityID:            facilityID,
		DistanceMeters:        distance,
		WalkingTimeMinutes:    walking,
		ArrivalTime:           arrival,
		CanArriveOnTime:       arrival <= event.StartTime,
		TimeUntilEventMinutes: event.MinutesUntilStart(now),
		IsFull:                event.IsFull(),
	}
}
