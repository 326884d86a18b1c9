package profile

import (
	"time"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/user"
)

type Admin struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Profile holds the role specific profile of a User. Exactly one of Admin, Mentor
// or Mentee is set, selected by Role.
type Profile struct {
	Role   string         `json:"role"`
	Admin  *Admin         `json:"admin,omitempty"`
	Mentor *mentor.Mentor `json:"mentor,omitempty"`
	Mentee *mentee.Mentee `json:"mentee,omitempty"`
}

// Account is a User along with its Profile.
type Account struct {
	User    user.User `json:"user"`
	Profile Profile   `json:"profile"`
}

// NewAccount contains information needed to register a User and its profile.
type NewAccount struct {
	user.NewUser
	FullName string `json:"full_name" validate:"required,notblank"`
	Phone    string `json:"phone" validate:"omitempty,phone10"`

	// mentor
	Department  string `json:"department"`
	Designation string `json:"designation"`

	// mentee
	StudentID    string  `json:"student_id"`
	Class        string  `json:"class"`
	Section      string  `json:"section"`
	AcademicYear string  `json:"academic_year"`
	ParentPhone  string  `json:"parent_phone" validate:"omitempty,phone10"`
	ParentEmail  string  `json:"parent_email" validate:"omitempty,simple_email"`
	MentorID     *string `json:"mentor_id"`
}

func (na *NewAccount) Clean() {
	na.NewUser.Clean()
	na.FullName = core.CleanString(na.FullName)
	na.Phone = core.StripSpaces(na.Phone)
	na.StudentID = core.CleanString(na.StudentID)
	na.ParentPhone = core.StripSpaces(na.ParentPhone)
	na.ParentEmail = core.CleanString(na.ParentEmail, true /* lower */)
}
