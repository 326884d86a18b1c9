package mentee

import (
	"time"

	"github.com/trezcool/mentora/core"
)

// NotAssigned is stored when a mentee has no class or section.
const NotAssigned = "Not Assigned"

type ParentInfo struct {
	PrimaryContact string `json:"primary_contact"`
	Email          string `json:"email"`
}

// AttendanceSummary is recomputed from the mentee's attendance records after every save.
type AttendanceSummary struct {
	TotalDays   int `json:"total_days"`
	PresentDays int `json:"present_days"`
	Percentage  int `json:"percentage"`
}

type Mentee struct {
	ID           string            `json:"id"`
	UserID       string            `json:"user_id"`
	FullName     string            `json:"full_name"`
	StudentID    string            `json:"student_id"` // roll number
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Class        string            `json:"class"`
	Section      string            `json:"section"`
	AcademicYear string            `json:"academic_year"`
	ParentInfo   ParentInfo        `json:"parent_info"`
	MentorID     *string           `json:"mentor_id"`
	Attendance   AttendanceSummary `json:"attendance"`
	CreatedAt    time.Time         `json:"created_at"` // UTC
	UpdatedAt    time.Time         `json:"updated_at"` // UTC
}

type GetFilter struct {
	ID     string
	UserID string
}

type QueryFilter struct {
	IDs        []string `query:"-"`
	MentorID   string   `query:"mentor_id"`
	Unassigned bool     `query:"unassigned"`
	Class      string   `query:"class"`
	Section    string   `query:"section"`
	Search     string   `query:"search"` // full name, student id or email
}

func (qf *QueryFilter) Clean() {
	qf.MentorID = core.CleanString(qf.MentorID)
	qf.Class = core.CleanString(qf.Class)
	qf.Section = core.CleanString(qf.Section)
	qf.Search = core.CleanString(qf.Search)
}

// MentorAssignment is the payload of a mentor (un)assignment; a null mentor_id unassigns.
type MentorAssignment struct {
	MentorID *string `json:"mentor_id"`
}
