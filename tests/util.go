package testutil

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/importer"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
	"github.com/trezcool/mentora/core/user"
	emailsvc "github.com/trezcool/mentora/services/email"
	"github.com/trezcool/mentora/services/locker"
	logsvc "github.com/trezcool/mentora/services/logger"
	"github.com/trezcool/mentora/storage/database"
	inmemdb "github.com/trezcool/mentora/storage/database/inmem"
)

// Services is every service of the app backed by a fresh in-memory store.
type Services struct {
	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator
	Mail       *emailsvc.ConsoleServiceMock
	Store      *database.Store

	Users      *user.Service
	Mentors    *mentor.Service
	Mentees    *mentee.Service
	Attendance *attendance.Service
	Profiles   *profile.Service
	Importer   *importer.Service
}

// NewConfig returns the TEST configuration with request logs off and a private upload dir.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	if err := os.Setenv("ENV", "TEST"); err != nil {
		t.Fatalf("setting ENV: %v", err)
	}
	conf := core.NewConfig()
	conf.Database.Engine = core.EngineMemory
	conf.Server.DisableReqLogs = true
	conf.Upload.Dir = t.TempDir()
	return conf
}

func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func NewServices(t *testing.T) *Services {
	t.Helper()
	conf := NewConfig(t)
	logger := NewLogger(conf)
	validate, translator := NewValidator()
	repos := database.Repositories(inmemdb.New().Repositories())

	s := &Services{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		Mail:       emailsvc.NewConsoleServiceMock(conf, logger),
		Store:      &database.Store{Repositories: repos},
	}
	s.Users = user.NewService(repos.Users)
	s.Mentors = mentor.NewService(repos.Mentors)
	s.Mentees = mentee.NewService(repos.Mentees, repos.Mentors)
	s.Attendance = attendance.NewService(repos.Attendance, repos.Mentees, locker.NewLocalLocker())
	s.Profiles = profile.NewService(s.Users, repos.Admins, s.Mentors, s.Mentees, s.Attendance)
	s.Importer = importer.NewService(
		s.Users, s.Mentors, s.Mentees, s.Mail, validate, translator,
		importer.Options{SendWelcomeEmails: true},
	)
	return s
}

// CreateUser stores a User directly, bypassing the password policy.
func CreateUser(t *testing.T, repo user.Repository, email, pwd, role string, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

// CreateAdmin registers an admin account.
func CreateAdmin(t *testing.T, s *Services, email, pwd string) profile.Account {
	t.Helper()
	return register(t, s, profile.NewAccount{
		NewUser:  user.NewUser{Email: email, Password: pwd, PasswordConfirm: pwd, Role: user.RoleAdmin},
		FullName: "Admin " + email,
	})
}

// CreateMentor registers a mentor account.
func CreateMentor(t *testing.T, s *Services, email, fullName string) mentor.Mentor {
	t.Helper()
	acc := register(t, s, profile.NewAccount{
		NewUser:    user.NewUser{Email: email, Password: "Mentor#2024", PasswordConfirm: "Mentor#2024", Role: user.RoleMentor},
		FullName:   fullName,
		Department: "Computer Science",
	})
	return *acc.Profile.Mentor
}

// CreateMentee registers a mentee account, optionally assigned to mentorID.
func CreateMentee(t *testing.T, s *Services, email, studentID string, mentorID *string) mentee.Mentee {
	t.Helper()
	acc := register(t, s, profile.NewAccount{
		NewUser:   user.NewUser{Email: email, Password: "Mentee#2024", PasswordConfirm: "Mentee#2024", Role: user.RoleMentee},
		FullName:  "Student " + studentID,
		StudentID: studentID,
		Class:     "CSE",
		Section:   "A",
		MentorID:  mentorID,
	})
	return *acc.Profile.Mentee
}

func register(t *testing.T, s *Services, na profile.NewAccount) profile.Account {
	t.Helper()
	if err := na.Validate(s.Validate); err != nil {
		t.Fatalf("register() invalid account: %v", err)
	}
	acc, err := s.Profiles.Register(context.Background(), na)
	if err != nil {
		t.Fatalf("register() failed: %v", err)
	}
	return acc
}
