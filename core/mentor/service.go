package mentor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
)

var (
	// errors
	ErrNotFound      = errors.New("mentor not found")
	ErrProfileExists = errors.New("user already has a mentor profile")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		// CreateMentor fails with ErrProfileExists when the user already has a profile.
		CreateMentor(ctx context.Context, m Mentor) (Mentor, error)
		GetMentor(ctx context.Context, filter GetFilter) (Mentor, error)
		// QueryMentors returns mentors ordered by full name.
		QueryMentors(ctx context.Context, filter QueryFilter) ([]Mentor, error)
		UpdateMentor(ctx context.Context, m Mentor) (Mentor, error)
		DeleteMentor(ctx context.Context, id string) error
		CountMentors(ctx context.Context) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, m Mentor) (Mentor, error) {
	now := nowFunc()
	m.ID = uuid.New().String()
	m.FullName = core.CleanString(m.FullName)
	m.Email = core.CleanString(m.Email, true /* lower */)
	m.Phone = core.StripSpaces(m.Phone)
	m.CreatedAt = now
	m.UpdatedAt = now
	return svc.repo.CreateMentor(ctx, m)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Mentor, error) {
	return svc.repo.GetMentor(ctx, GetFilter{ID: id})
}

func (svc *Service) GetByUserID(ctx context.Context, userID string) (Mentor, error) {
	return svc.repo.GetMentor(ctx, GetFilter{UserID: userID})
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Mentor, error) {
	filter.Clean()
	return svc.repo.QueryMentors(ctx, filter)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountMentors(ctx)
}

func (svc *Service) Update(ctx context.Context, m Mentor) (Mentor, error) {
	m.UpdatedAt = nowFunc()
	return svc.repo.UpdateMentor(ctx, m)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMentor(ctx, id)
}
