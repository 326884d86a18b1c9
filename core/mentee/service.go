package mentee

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/mentor"
)

var (
	// errors
	ErrNotFound      = errors.New("mentee not found")
	ErrProfileExists = errors.New("user already has a mentee profile")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		// CreateMentee fails with ErrProfileExists when the user already has a profile.
		CreateMentee(ctx context.Context, m Mentee) (Mentee, error)
		GetMentee(ctx context.Context, filter GetFilter) (Mentee, error)
		// QueryMentees returns mentees ordered by full name.
		QueryMentees(ctx context.Context, filter QueryFilter) ([]Mentee, error)
		UpdateMentee(ctx context.Context, m Mentee) (Mentee, error)
		// UpdateAttendanceSummary only writes the attendance summary of the mentee.
		UpdateAttendanceSummary(ctx context.Context, id string, summary AttendanceSummary) error
		// UnassignMentor clears the mentor of every mentee assigned to mentorID.
		UnassignMentor(ctx context.Context, mentorID string) (int, error)
		DeleteMentee(ctx context.Context, id string) error
		CountMentees(ctx context.Context, filter QueryFilter) (int, error)
	}

	Service struct {
		repo    Repository
		mentors mentor.Repository
	}
)

func NewService(repo Repository, mentors mentor.Repository) *Service {
	return &Service{repo: repo, mentors: mentors}
}

// Create stores a new mentee profile, filling the defaults of missing fields.
func (svc *Service) Create(ctx context.Context, m Mentee) (Mentee, error) {
	now := nowFunc()
	m.ID = uuid.New().String()
	m.StudentID = core.CleanString(m.StudentID)
	m.FullName = core.CleanString(m.FullName)
	if m.FullName == "" {
		m.FullName = m.StudentID
	}
	m.Email = core.CleanString(m.Email, true /* lower */)
	m.Phone = core.StripSpaces(m.Phone)
	if m.Class = core.CleanString(m.Class); m.Class == "" {
		m.Class = NotAssigned
	}
	if m.Section = core.CleanString(m.Section); m.Section == "" {
		m.Section = NotAssigned
	}
	if m.AcademicYear == "" {
		m.AcademicYear = now.Format("2006")
	}
	m.Attendance = AttendanceSummary{}
	m.CreatedAt = now
	m.UpdatedAt = now
	return svc.repo.CreateMentee(ctx, m)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Mentee, error) {
	return svc.repo.GetMentee(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Mentee, error) {
	return svc.repo.GetMentee(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Mentee, error) {
	filter.Clean()
	return svc.repo.QueryMentees(ctx, filter)
}

func (svc *Service) Count(ctx context.Context, filter QueryFilter) (int, error) {
	filter.Clean()
	return svc.repo.CountMentees(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, m Mentee) (Mentee, error) {
	m.UpdatedAt = nowFunc()
	return svc.repo.UpdateMentee(ctx, m)
}

// AssignMentor sets the mentor of a mentee; a nil mentorID unassigns it.
func (svc *Service) AssignMentor(ctx context.Context, menteeID string, mentorID *string) (Mentee, error) {
	mt, err := svc.repo.GetMentee(ctx, GetFilter{ID: menteeID})
	if err != nil {
		return Mentee{}, errors.Wrap(err, "finding mentee")
	}
	if mentorID != nil {
		id := core.CleanString(*mentorID)
		if _, err := svc.mentors.GetMentor(ctx, mentor.GetFilter{ID: id}); err != nil {
			if errors.Cause(err) == mentor.ErrNotFound {
				return Mentee{}, core.NewFieldValidationError("mentor_id", err.Error())
			}
			return Mentee{}, errors.Wrap(err, "finding mentor")
		}
		mentorID = &id
	}
	mt.MentorID = mentorID
	return svc.Update(ctx, mt)
}

func (svc *Service) UnassignMentor(ctx context.Context, mentorID string) (int, error) {
	return svc.repo.UnassignMentor(ctx, mentorID)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMentee(ctx, id)
}
