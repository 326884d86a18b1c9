package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core/attendance"
	"github.com/trezcool/mentora/tests"
)

func Test_attendanceApi(t *testing.T) {
	srv, svcs := newTestServer(t)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	token := getToken(t, srv, admin)
	mtr := testutil.CreateMentor(t, svcs, "mentor@test.cd", "Mentor One")
	s1 := testutil.CreateMentee(t, svcs, "stu1@test.cd", "STU001", &mtr.ID)
	s2 := testutil.CreateMentee(t, svcs, "stu2@test.cd", "STU002", nil)

	save := func(date string, marks map[string]map[string]string) []byte {
		return marshalObj(t, attendance.SaveRequest{Date: date, Attendance: marks})
	}

	runHTTPTests(t, srv, http.MethodPost, []httpTest{
		{name: "auth required", path: "/v1/attendance", wantCode: http.StatusUnauthorized},
		{
			name: "invalid payload", path: "/v1/attendance", token: token, body: save("04/01/2024", nil),
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{
				"date":       "date must be in YYYY-MM-DD format",
				"attendance": "this field is required",
			}),
		},
	})

	t.Run("save with partial failures", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", token, save("2024-04-01", map[string]map[string]string{
			s1.ID:   {"2024-04-01": "Present"},
			s2.ID:   {"2024-04-01": "sleeping"},
			"lol":   {"2024-04-01": "absent"},
			"other": {"2024-04-02": "absent"}, // not the saved date
		}))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res attendance.SaveResult
		decode(t, rec, &res)
		require.Len(t, res.Saved, 1)
		assert.Equal(t, s1.ID, res.Saved[0].MenteeID)
		assert.Equal(t, attendance.StatusPresent, res.Saved[0].Status)
		assert.Equal(t, 100, res.Saved[0].Attendance.Percentage)

		failed := make(map[string]string)
		for _, f := range res.Failed {
			failed[f.MenteeID] = f.Error
		}
		assert.Len(t, failed, 2)
		assert.Contains(t, failed, s2.ID)
		assert.Equal(t, "mentee not found", failed["lol"])
	})

	runHTTPTests(t, srv, http.MethodGet, []httpTest{
		{
			name: "sheet params required", path: "/v1/attendance", token: token,
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"date": "provide either `date` or both `month` and `year`"}),
		},
		{
			name: "by date", path: "/v1/attendance?date=2024-04-01", token: token,
			wantData: marshalObj(t, map[string]map[string]interface{}{
				s1.ID: {"2024-04-01": "present"},
				s2.ID: {"2024-04-01": nil},
			}),
		},
		{
			name: "by date filtered by mentor", path: "/v1/attendance?date=2024-04-01&mentor_id=" + mtr.ID, token: token,
			wantData: marshalObj(t, map[string]map[string]interface{}{s1.ID: {"2024-04-01": "present"}}),
		},
		{name: "invalid month", path: "/v1/attendance?month=13&year=2024", token: token, wantCode: http.StatusBadRequest},
		{
			name: "stats", path: "/v1/attendance/mentees/" + s2.ID + "/stats", token: token,
			wantData: marshalObj(t, attendance.Stats{MenteeID: s2.ID, Records: []attendance.Attendance{}}),
		},
		{name: "stats unknown mentee", path: "/v1/attendance/mentees/lol/stats", token: token, wantCode: http.StatusNotFound},
		{
			name: "stats invalid range", path: "/v1/attendance/mentees/" + s1.ID + "/stats?from=2024-05-01&to=2024-04-01",
			token: token, wantCode: http.StatusBadRequest,
		},
	})

	t.Run("by month", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance?month=4&year=2024", token)
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var sheet map[string]map[string]*string
		decode(t, rec, &sheet)
		require.Len(t, sheet, 2)
		assert.Len(t, sheet[s1.ID], 30)
		require.NotNil(t, sheet[s1.ID]["2024-04-01"])
		assert.Equal(t, "present", *sheet[s1.ID]["2024-04-01"])
		assert.Nil(t, sheet[s1.ID]["2024-04-30"])
	})

	t.Run("marks metric", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/metrics", "")
		srv.ServeHTTP(rec, req)
		assert.Contains(t, rec.Body.String(), `mentora_attendance_marks_total{status="present"} 1`)
	})
}

func Test_dashboardApi(t *testing.T) {
	srv, svcs := newTestServer(t)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	token := getToken(t, srv, admin)
	mtr := testutil.CreateMentor(t, svcs, "mentor@test.cd", "Mentor One")
	s1 := testutil.CreateMentee(t, svcs, "stu1@test.cd", "STU001", &mtr.ID)
	s2 := testutil.CreateMentee(t, svcs, "stu2@test.cd", "STU002", nil)
	testutil.CreateMentee(t, svcs, "stu3@test.cd", "STU003", nil)

	today := attendance.Today()
	_, err := svcs.Attendance.Save(
		newContext(), today,
		map[string]map[string]string{s1.ID: {today: "present"}, s2.ID: {today: "late"}},
		admin.ID,
	)
	require.NoError(t, err)

	runHTTPTests(t, srv, http.MethodGet, []httpTest{
		{name: "auth required", path: "/v1/dashboard", wantCode: http.StatusUnauthorized},
		{name: "admin required", path: "/v1/dashboard", token: getToken(t, srv, mustUser(t, svcs, mtr.UserID)), wantCode: http.StatusForbidden},
		{
			name: "counts", path: "/v1/dashboard", token: token,
			wantData: marshalObj(t, Dashboard{
				Users:             map[string]int{"admin": 1, "mentor": 1, "mentee": 3},
				Mentors:           1,
				Mentees:           3,
				UnassignedMentees: 2,
				Today: attendance.DayCount{
					Date:   today,
					Total:  2,
					Counts: map[attendance.Status]int{"present": 1, "absent": 0, "late": 1, "excused": 0},
				},
			}),
		},
	})
}
