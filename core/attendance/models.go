package attendance

import (
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mentora/core/mentee"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

var AllStatuses = []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// Attendance is the mark of one mentee on one calendar day; (MenteeID, Date) is unique.
type Attendance struct {
	ID        string    `json:"id"`
	MenteeID  string    `json:"mentee_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Status    Status    `json:"status"`
	MarkedBy  string    `json:"marked_by"`
	Remarks   string    `json:"remarks"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// QueryFilter applies AND operation on the set fields. From and To are inclusive.
type QueryFilter struct {
	MenteeIDs []string
	Date      string
	From      string
	To        string
}

// DayStatuses maps a date to the status marked that day, or null.
type DayStatuses map[string]null.String

// Sheet maps a mentee id to its DayStatuses.
type Sheet map[string]DayStatuses

// SaveRequest is the payload of an attendance save: {date, attendance: {menteeID: {date: status}}}.
type SaveRequest struct {
	Date       string                       `json:"date" validate:"required,isodate"`
	Attendance map[string]map[string]string `json:"attendance" validate:"required"`
}

type (
	SavedMark struct {
		MenteeID   string                   `json:"mentee_id"`
		Status     Status                   `json:"status"`
		Attendance mentee.AttendanceSummary `json:"attendance"`
	}

	FailedMark struct {
		MenteeID string `json:"mentee_id"`
		Error    string `json:"error"`
	}

	SaveResult struct {
		Date   string       `json:"date"`
		Saved  []SavedMark  `json:"saved"`
		Failed []FailedMark `json:"failed"`
	}
)

type Stats struct {
	MenteeID    string       `json:"mentee_id"`
	From        string       `json:"from,omitempty"`
	To          string       `json:"to,omitempty"`
	TotalDays   int          `json:"total_days"`
	PresentDays int          `json:"present_days"`
	AbsentDays  int          `json:"absent_days"`
	LateDays    int          `json:"late_days"`
	ExcusedDays int          `json:"excused_days"`
	Percentage  int          `json:"percentage"`
	Records     []Attendance `json:"records"`
}

// DayCount is the number of marks per status on a given day.
type DayCount struct {
	Date   string         `json:"date"`
	Total  int            `json:"total"`
	Counts map[Status]int `json:"counts"`
}
