package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core/mentee"
	"github.com/trezcool/mentora/tests"
)

func Test_mentorApi(t *testing.T) {
	srv, svcs := newTestServer(t)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	token := getToken(t, srv, admin)
	m1 := testutil.CreateMentor(t, svcs, "alice@test.cd", "Alice Smith")
	m2 := testutil.CreateMentor(t, svcs, "bob@test.cd", "Bob Jones")
	s1 := testutil.CreateMentee(t, svcs, "stu1@test.cd", "STU001", &m1.ID)
	testutil.CreateMentee(t, svcs, "stu2@test.cd", "STU002", nil)

	runHTTPTests(t, srv, http.MethodGet, []httpTest{
		{name: "auth required", path: "/v1/mentors", wantCode: http.StatusUnauthorized},
		{name: "list", path: "/v1/mentors", token: token, wantData: marshalList(t, m1, m2)},
		{name: "search", path: "/v1/mentors?search=alice", token: token, wantData: marshalList(t, m1)},
		{name: "retrieve", path: "/v1/mentors/" + m2.ID, token: token, wantData: marshalObj(t, m2)},
		{
			name: "retrieve unknown", path: "/v1/mentors/lol", token: token,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "mentor not found"}),
		},
		{name: "mentees of mentor", path: "/v1/mentors/" + m1.ID + "/mentees", token: token, wantData: marshalList(t, s1)},
		{name: "mentor without mentees", path: "/v1/mentors/" + m2.ID + "/mentees", token: token, wantData: marshalList(t)},
		{name: "mentees of unknown mentor", path: "/v1/mentors/lol/mentees", token: token, wantCode: http.StatusNotFound},
	})
}

func Test_menteeApi(t *testing.T) {
	srv, svcs := newTestServer(t)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	token := getToken(t, srv, admin)
	m1 := testutil.CreateMentor(t, svcs, "alice@test.cd", "Alice Smith")
	s1 := testutil.CreateMentee(t, svcs, "stu1@test.cd", "STU001", &m1.ID)
	s2 := testutil.CreateMentee(t, svcs, "stu2@test.cd", "STU002", nil)

	runHTTPTests(t, srv, http.MethodGet, []httpTest{
		{name: "auth required", path: "/v1/mentees", wantCode: http.StatusUnauthorized},
		{
			name: "admin required", path: "/v1/mentees", token: getToken(t, srv, mustUser(t, svcs, s1.UserID)),
			wantCode: http.StatusForbidden,
		},
		{name: "list", path: "/v1/mentees", token: token, wantData: marshalList(t, s1, s2)},
		{name: "by mentor", path: "/v1/mentees?mentor_id=" + m1.ID, token: token, wantData: marshalList(t, s1)},
		{name: "unassigned", path: "/v1/mentees?unassigned=true", token: token, wantData: marshalList(t, s2)},
		{name: "search by student id", path: "/v1/mentees?search=stu002", token: token, wantData: marshalList(t, s2)},
		{name: "retrieve", path: "/v1/mentees/" + s1.ID, token: token, wantData: marshalObj(t, s1)},
		{name: "retrieve unknown", path: "/v1/mentees/lol", token: token, wantCode: http.StatusNotFound},
	})

	assign := func(mentorID *string) []byte {
		return marshalObj(t, mentee.MentorAssignment{MentorID: mentorID})
	}
	unknown := "lol"
	runHTTPTests(t, srv, http.MethodPut, []httpTest{
		{
			name: "unknown mentor", path: "/v1/mentees/" + s2.ID + "/mentor", token: token, body: assign(&unknown),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"mentor_id": "mentor not found"}),
		},
		{name: "unknown mentee", path: "/v1/mentees/lol/mentor", token: token, body: assign(&m1.ID), wantCode: http.StatusNotFound},
	})

	t.Run("assign then unassign", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/mentees/"+s2.ID+"/mentor", token, assign(&m1.ID))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got mentee.Mentee
		decode(t, rec, &got)
		require.NotNil(t, got.MentorID)
		assert.Equal(t, m1.ID, *got.MentorID)

		req, rec = newAuthRequest(http.MethodPut, "/v1/mentees/"+s2.ID+"/mentor", token, []byte(`{"mentor_id": null}`))
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got = mentee.Mentee{}
		decode(t, rec, &got)
		assert.Nil(t, got.MentorID)
	})
}
