package profile_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/core/mentor"
	"github.com/trezcool/mentora/core/profile"
	"github.com/trezcool/mentora/core/user"
	testutil "github.com/trezcool/mentora/tests"
)

func newAccount(email, role string) profile.NewAccount {
	return profile.NewAccount{
		NewUser:  user.NewUser{Email: email, Password: "Str0ng#Pass", PasswordConfirm: "Str0ng#Pass", Role: role},
		FullName: " Jane Doe ",
	}
}

func TestNewAccount_Validate(t *testing.T) {
	validate, _ := testutil.NewValidator()

	na := newAccount(" JANE@test.cd", user.RoleAdmin)
	na.Phone = "98765 43210"
	require.NoError(t, na.Validate(validate))
	assert.Equal(t, "jane@test.cd", na.Email)
	assert.Equal(t, "Jane Doe", na.FullName)
	assert.Equal(t, "9876543210", na.Phone)

	na = newAccount("jane@test.cd", user.RoleMentee)
	err := na.Validate(validate)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, map[string]string{"student_id": "this field is required"}, vErr.FieldMap())

	na = newAccount("jane@test.cd", user.RoleMentee)
	na.StudentID = "STU001"
	na.ParentEmail = "mum"
	assert.Error(t, na.Validate(validate))
}

func TestService_Register(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()

	t.Run("admin", func(t *testing.T) {
		acc, err := s.Profiles.Register(ctx, newAccount("admin@test.cd", user.RoleAdmin))
		require.NoError(t, err)
		require.NotNil(t, acc.Profile.Admin)
		assert.Equal(t, acc.User.ID, acc.Profile.Admin.UserID)
		assert.Nil(t, acc.Profile.Mentor)
		assert.Nil(t, acc.Profile.Mentee)

		got, err := s.Profiles.GetAccount(ctx, acc.User.ID)
		require.NoError(t, err)
		assert.Equal(t, acc.Profile, got.Profile)
	})

	t.Run("mentor", func(t *testing.T) {
		na := newAccount("mentor@test.cd", user.RoleMentor)
		na.Department = "Physics"
		acc, err := s.Profiles.Register(ctx, na)
		require.NoError(t, err)
		require.NotNil(t, acc.Profile.Mentor)
		assert.Equal(t, "Physics", acc.Profile.Mentor.Department)
		assert.Equal(t, "mentor@test.cd", acc.Profile.Mentor.Email)
	})

	t.Run("mentee", func(t *testing.T) {
		na := newAccount("mentee@test.cd", user.RoleMentee)
		na.StudentID = "STU001"
		acc, err := s.Profiles.Register(ctx, na)
		require.NoError(t, err)
		require.NotNil(t, acc.Profile.Mentee)
		assert.Equal(t, "STU001", acc.Profile.Mentee.StudentID)
		assert.Equal(t, mentee.NotAssigned, acc.Profile.Mentee.Class)
		assert.Nil(t, acc.Profile.Mentee.MentorID)
	})

	t.Run("unknown mentor rolls back", func(t *testing.T) {
		na := newAccount("lost@test.cd", user.RoleMentee)
		na.StudentID = "STU002"
		unknown := "unknown"
		na.MentorID = &unknown

		_, err := s.Profiles.Register(ctx, na)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.FieldMap(), "mentor_id")

		_, err = s.Users.GetByEmail(ctx, "lost@test.cd")
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := s.Profiles.Register(ctx, newAccount("admin@test.cd", user.RoleMentor))
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, user.ErrEmailExists, vErr.Err)
	})
}

func TestService_GetAccountWithoutProfile(t *testing.T) {
	s := testutil.NewServices(t)
	usr := testutil.CreateUser(t, s.Store.Users, "orphan@test.cd", "", user.RoleMentor, true)

	acc, err := s.Profiles.GetAccount(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.Profile{Role: user.RoleMentor}, acc.Profile)

	_, err = s.Profiles.GetAccount(context.Background(), "unknown")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_SaveAdmin(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, s.Store.Users, "root@test.cd", "", user.RoleAdmin, true)

	a, err := s.Profiles.SaveAdmin(ctx, usr, " Root ")
	require.NoError(t, err)
	assert.Equal(t, "Root", a.FullName)

	a2, err := s.Profiles.SaveAdmin(ctx, usr, "")
	require.NoError(t, err)
	assert.Equal(t, a.ID, a2.ID)
	assert.Equal(t, "Root", a2.FullName)

	a2, err = s.Profiles.SaveAdmin(ctx, usr, "Super Root")
	require.NoError(t, err)
	assert.Equal(t, "Super Root", a2.FullName)
}

func TestService_Delete(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	mtr := testutil.CreateMentor(t, s, "mentor@test.cd", "Ada Lovelace")
	jane := testutil.CreateMentee(t, s, "jane@test.cd", "STU001", &mtr.ID)
	john := testutil.CreateMentee(t, s, "john@test.cd", "STU002", &mtr.ID)

	_, err := s.Attendance.Save(ctx, "2024-04-01", map[string]map[string]string{
		jane.ID: {"2024-04-01": "present"},
		john.ID: {"2024-04-01": "absent"},
	}, "admin-id")
	require.NoError(t, err)

	t.Run("mentor unassigns mentees", func(t *testing.T) {
		require.NoError(t, s.Profiles.Delete(ctx, mtr.UserID))

		_, err := s.Mentors.GetByID(ctx, mtr.ID)
		assert.Equal(t, mentor.ErrNotFound, errors.Cause(err))
		_, err = s.Users.GetByID(ctx, mtr.UserID)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))

		mentees, err := s.Mentees.Query(ctx, mentee.QueryFilter{Unassigned: true})
		require.NoError(t, err)
		assert.Len(t, mentees, 2)
	})

	t.Run("mentee drops attendance", func(t *testing.T) {
		require.NoError(t, s.Profiles.Delete(ctx, jane.UserID))

		_, err := s.Mentees.GetByID(ctx, jane.ID)
		assert.Equal(t, mentee.ErrNotFound, errors.Cause(err))

		dc, err := s.Attendance.CountByDay(ctx, "2024-04-01")
		require.NoError(t, err)
		assert.Equal(t, 1, dc.Total)
		assert.Equal(t, 1, dc.Counts[attendance.StatusAbsent])
	})

	t.Run("user without profile", func(t *testing.T) {
		usr := testutil.CreateUser(t, s.Store.Users, "orphan@test.cd", "", user.RoleAdmin, true)
		require.NoError(t, s.Profiles.Delete(ctx, usr.ID))
		_, err := s.Users.GetByID(ctx, usr.ID)
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})

	t.Run("unknown user", func(t *testing.T) {
		err := s.Profiles.Delete(ctx, "unknown")
		assert.Equal(t, user.ErrNotFound, errors.Cause(err))
	})
}
