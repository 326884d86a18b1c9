package profile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("admin profile not found")
	ErrProfileExists = errors.New("user already has an admin profile")

	errUnknownRole = errors.New("unknown role")

	nowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	AdminRepository interface {
		CreateAdmin(ctx context.Context, a Admin) (Admin, error)
		GetAdminByUserID(ctx context.Context, userID string) (Admin, error)
		UpdateAdmin(ctx context.Context, a Admin) (Admin, error)
		DeleteAdmin(ctx context.Context, id string) error
	}

	Service struct {
		users      *user.Service
		admins     AdminRepository
		mentors    *mentor.Service
		mentees    *mentee.Service
		attendance *attendance.Service
	}
)

func NewService(
	users *user.Service,
	admins AdminRepository,
	mentors *mentor.Service,
	mentees *mentee.Service,
	attendance *attendance.Service,
) *Service {
	return &Service{
		users:      users,
		admins:     admins,
		mentors:    mentors,
		mentees:    mentees,
		attendance: attendance,
	}
}

// roleHandlers holds one branch per profile kind.
type roleHandlers struct {
	admin  func() error
	mentor func() error
	mentee func() error
}

// dispatch runs the branch matching role.
func dispatch(role string, h roleHandlers) error {
	switch role {
	case user.RoleAdmin:
		return h.admin()
	case user.RoleMentor:
		return h.mentor()
	case user.RoleMentee:
		return h.mentee()
	}
	return errors.Wrap(errUnknownRole, role)
}

// Validate cleans and validates the NewAccount, including role specific fields.
func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Clean()
	if err := validate.Struct(na); err != nil {
		return err
	}
	if na.Role == user.RoleMentee && na.StudentID == "" {
		return core.NewFieldValidationError("student_id", "this field is required")
	}
	return nil
}

// Register creates a User and the profile matching its role.
// The User is removed again if the profile cannot be created.
func (svc *Service) Register(ctx context.Context, na NewAccount) (Account, error) {
	usr, err := svc.users.Create(ctx, na.NewUser)
	if err != nil {
		return Account{}, err
	}

	prof := Profile{Role: usr.Role}
	err = dispatch(usr.Role, roleHandlers{
		admin: func() error {
			now := nowFunc()
			a, err := svc.admins.CreateAdmin(ctx, Admin{
				ID:        uuid.New().String(),
				UserID:    usr.ID,
				FullName:  na.FullName,
				Phone:     na.Phone,
				CreatedAt: now,
				UpdatedAt: now,
			})
			prof.Admin = &a
			return err
		},
		mentor: func() error {
			m, err := svc.mentors.Create(ctx, mentor.Mentor{
				UserID:      usr.ID,
				FullName:    na.FullName,
				Email:       usr.Email,
				Phone:       na.Phone,
				Department:  na.Department,
				Designation: na.Designation,
			})
			prof.Mentor = &m
			return err
		},
		mentee: func() error {
			if na.MentorID != nil {
				if _, err := svc.mentors.GetByID(ctx, *na.MentorID); err != nil {
					if errors.Cause(err) == mentor.ErrNotFound {
						return core.NewFieldValidationError("mentor_id", err.Error())
					}
					return err
				}
			}
			m, err := svc.mentees.Create(ctx, mentee.Mentee{
				UserID:       usr.ID,
				FullName:     na.FullName,
				StudentID:    na.StudentID,
				Email:        usr.Email,
				Phone:        na.Phone,
				Class:        na.Class,
				Section:      na.Section,
				AcademicYear: na.AcademicYear,
				ParentInfo:   mentee.ParentInfo{PrimaryContact: na.ParentPhone, Email: na.ParentEmail},
				MentorID:     na.MentorID,
			})
			prof.Mentee = &m
			return err
		},
	})
	if err != nil {
		if dErr := svc.users.Delete(ctx, usr.ID); dErr != nil {
			return Account{}, errors.Wrapf(dErr, "removing user after failed profile creation (%v)", err)
		}
		return Account{}, errors.Wrap(err, "creating profile")
	}
	return Account{User: usr, Profile: prof}, nil
}

// Get loads the profile of usr. A missing profile returns the package ErrNotFound of its kind.
func (svc *Service) Get(ctx context.Context, usr user.User) (Profile, error) {
	prof := Profile{Role: usr.Role}
	err := dispatch(usr.Role, roleHandlers{
		admin: func() error {
			a, err := svc.admins.GetAdminByUserID(ctx, usr.ID)
			prof.Admin = &a
			return err
		},
		mentor: func() error {
			m, err := svc.mentors.GetByUserID(ctx, usr.ID)
			prof.Mentor = &m
			return err
		},
		mentee: func() error {
			m, err := svc.mentees.GetByUserID(ctx, usr.ID)
			prof.Mentee = &m
			return err
		},
	})
	if err != nil {
		return Profile{}, err
	}
	return prof, nil
}

// GetAccount loads a User and its profile; the profile is left empty when missing.
func (svc *Service) GetAccount(ctx context.Context, userID string) (Account, error) {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	prof, err := svc.Get(ctx, usr)
	if err != nil {
		if !isNotFound(err) {
			return Account{}, errors.Wrap(err, "getting profile")
		}
		prof = Profile{Role: usr.Role}
	}
	return Account{User: usr, Profile: prof}, nil
}

// SaveAdmin creates or updates the admin profile of usr.
func (svc *Service) SaveAdmin(ctx context.Context, usr user.User, fullName string) (Admin, error) {
	a, err := svc.admins.GetAdminByUserID(ctx, usr.ID)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Admin{}, errors.Wrap(err, "finding admin profile")
		}
		now := nowFunc()
		return svc.admins.CreateAdmin(ctx, Admin{
			ID:        uuid.New().String(),
			UserID:    usr.ID,
			FullName:  core.CleanString(fullName),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if fullName = core.CleanString(fullName); fullName != "" {
		a.FullName = fullName
	}
	a.UpdatedAt = nowFunc()
	return svc.admins.UpdateAdmin(ctx, a)
}

// Delete removes a User along with its profile:
// a mentor's mentees are unassigned; a mentee's attendance records are deleted.
func (svc *Service) Delete(ctx context.Context, userID string) error {
	usr, err := svc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	err = dispatch(usr.Role, roleHandlers{
		admin: func() error {
			a, err := svc.admins.GetAdminByUserID(ctx, usr.ID)
			if err != nil {
				return err
			}
			return svc.admins.DeleteAdmin(ctx, a.ID)
		},
		mentor: func() error {
			m, err := svc.mentors.GetByUserID(ctx, usr.ID)
			if err != nil {
				return err
			}
			if _, err := svc.mentees.UnassignMentor(ctx, m.ID); err != nil {
				return errors.Wrap(err, "unassigning mentees")
			}
			return svc.mentors.Delete(ctx, m.ID)
		},
		mentee: func() error {
			m, err := svc.mentees.GetByUserID(ctx, usr.ID)
			if err != nil {
				return err
			}
			if err := svc.attendance.DeleteByMentee(ctx, m.ID); err != nil {
				return errors.Wrap(err, "deleting attendance")
			}
			return svc.mentees.Delete(ctx, m.ID)
		},
	})
	if err != nil && !isNotFound(err) {
		return errors.Wrap(err, "deleting profile")
	}
	return svc.users.Delete(ctx, usr.ID)
}

func isNotFound(err error) bool {
	switch errors.Cause(err) {
	case ErrNotFound, mentor.ErrNotFound, mentee.ErrNotFound:
		return true
	}
	return false
}
