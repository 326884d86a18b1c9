package mentee_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/mentee"
	testutil "github.com/trezcool/mentora/tests"
)

func TestService_Create(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()

	mt, err := s.Mentees.Create(ctx, mentee.Mentee{
		UserID: "u-1", StudentID: " STU001 ", Email: "JANE@test.cd", Phone: "98765 43210",
		Attendance: mentee.AttendanceSummary{TotalDays: 9},
	})
	require.NoError(t, err)
	assert.Equal(t, "STU001", mt.FullName)
	assert.Equal(t, "STU001", mt.StudentID)
	assert.Equal(t, "jane@test.cd", mt.Email)
	assert.Equal(t, "9876543210", mt.Phone)
	assert.Equal(t, mentee.NotAssigned, mt.Class)
	assert.Equal(t, mentee.NotAssigned, mt.Section)
	assert.Equal(t, strconv.Itoa(time.Now().UTC().Year()), mt.AcademicYear)
	assert.Equal(t, mentee.AttendanceSummary{}, mt.Attendance)

	_, err = s.Mentees.Create(ctx, mentee.Mentee{UserID: "u-1", StudentID: "STU002"})
	assert.Equal(t, mentee.ErrProfileExists, errors.Cause(err))
}

func TestService_QueryAndAssign(t *testing.T) {
	s := testutil.NewServices(t)
	ctx := context.Background()
	ada := testutil.CreateMentor(t, s, "ada@test.cd", "Ada Lovelace")
	jane := testutil.CreateMentee(t, s, "jane@test.cd", "STU001", &ada.ID)
	john := testutil.CreateMentee(t, s, "john@test.cd", "STU002", nil)

	tests := []struct {
		name   string
		filter mentee.QueryFilter
		want   []string
	}{
		{name: "all", want: []string{jane.ID, john.ID}},
		{name: "by mentor", filter: mentee.QueryFilter{MentorID: " " + ada.ID}, want: []string{jane.ID}},
		{name: "unassigned", filter: mentee.QueryFilter{Unassigned: true}, want: []string{john.ID}},
		{name: "class and section", filter: mentee.QueryFilter{Class: "CSE ", Section: "A"}, want: []string{jane.ID, john.ID}},
		{name: "search", filter: mentee.QueryFilter{Search: "stu002"}, want: []string{john.ID}},
		{name: "no match", filter: mentee.QueryFilter{Class: "ECE"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mentees, err := s.Mentees.Query(ctx, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(mentees))
			for _, m := range mentees {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)

			n, err := s.Mentees.Count(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}

	t.Run("assign", func(t *testing.T) {
		mt, err := s.Mentees.AssignMentor(ctx, john.ID, &ada.ID)
		require.NoError(t, err)
		require.NotNil(t, mt.MentorID)
		assert.Equal(t, ada.ID, *mt.MentorID)

		mt, err = s.Mentees.AssignMentor(ctx, john.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, mt.MentorID)

		unknown := "unknown"
		_, err = s.Mentees.AssignMentor(ctx, john.ID, &unknown)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Contains(t, vErr.FieldMap(), "mentor_id")

		_, err = s.Mentees.AssignMentor(ctx, "unknown", nil)
		assert.Equal(t, mentee.ErrNotFound, errors.Cause(err))
	})

	t.Run("unassign mentor", func(t *testing.T) {
		n, err := s.Mentees.UnassignMentor(ctx, ada.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		mt, err := s.Mentees.GetByID(ctx, jane.ID)
		require.NoError(t, err)
		assert.Nil(t, mt.MentorID)
	})
}
