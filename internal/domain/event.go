package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ClockTime is a local wall-clock time expressed in minutes since midnight.
// It serializes as "HH:MM".
type ClockTime int

// ParseClock parses an "HH:MM" string
func ParseClock(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("domain: invalid clock time %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("domain: invalid hour in clock time %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 || len(mm) != 2 {
		return 0, fmt.Errorf("domain: invalid minute in clock time %q", s)
	}
	return ClockTime(h*60 + m), nil
}

// MustParseClock is ParseClock for literals and panics on error
func MustParseClock(s string) ClockTime {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockFromTime returns the wall-clock time of t in its own location
func ClockFromTime(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// Minutes returns the minutes since midnight
func (c ClockTime) Minutes() int { return int(c) }

// Add returns the clock time shifted by minutes. Values past midnight are not wrapped.
func (c ClockTime) Add(minutes int) ClockTime { return c + ClockTime(minutes) }

func (c ClockTime) String() string {
	m := int(c)
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("domain: clock time must be a string: %w", err)
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *ClockTime) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseClock(node.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Event is a scheduled program bound to one facility
type Event struct {
	ID                  string    `json:"id" yaml:"id"`
	AreaID              string    `json:"area_id" yaml:"area_id"`
	Name                string    `json:"name" yaml:"name"`
	Description         string    `json:"description,omitempty" yaml:"description"`
	StartTime           ClockTime `json:"start_time" yaml:"start_time"`
	EndTime             ClockTime `json:"end_time" yaml:"end_time"`
	MaxParticipants     int       `json:"max_participants" yaml:"max_participants"`
	CurrentParticipants int       `json:"current_participants" yaml:"current_participants"`
}

// IsFull reports whether no more participants can join
func (e Event) IsFull() bool {
	return e.MaxParticipants > 0 && e.CurrentParticipants >= e.MaxParticipants
}

// InProgress reports whether now lies within [StartTime, EndTime)
func (e Event) InProgress(now ClockTime) bool {
	return now >= e.StartTime && now < e.EndTime
}

// MinutesUntilStart returns StartTime - now; negative once started
func (e Event) MinutesUntilStart(now ClockTime) int {
	return int(e.StartTime - now)
}
