package models

import (
	"errors"
	"fmt"
	"time"
)

// Status is the attendance state of a worker on a given day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusNone    Status = "none"
)

// ErrInvalidDate is returned when a string is not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid calendar date")

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusNone:
		return true
	default:
		return false
	}
}

// Date is a calendar day without a time component, formatted as YYYY-MM-DD.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(time.DateOnly))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidDate, s, err)
	}
	return DateOf(t), nil
}

// Time returns the midnight of the date in the given location.
func (d Date) Time(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, string(d), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %w", ErrInvalidDate, d, err)
	}
	return t, nil
}

func (d Date) String() string {
	return string(d)
}

// AttendanceRecord is the single ledger entry of one worker on one day.
type AttendanceRecord struct {
	Date     Date   `json:"date"`           // Day the record belongs to
	WorkerID string `json:"workerId"`       // Identifier of the worker
	Status   Status `json:"status"`         // Current status for the day
	Time     string `json:"time,omitempty"` // Time the worker was marked present, empty otherwise
}

// Snapshot is the persisted shape of the whole application state.
type Snapshot struct {
	Workers    []Worker           `json:"workers"`
	Attendance []AttendanceRecord `json:"attendance"`
}
