package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core/user"
	"github.com/trezcool/mentora/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newTestServer(t *testing.T) (*Server, *testutil.Services) {
	return newTestServerWithConf(t, testutil.NewServices(t))
}

// newTestServerWithConf builds a Server on top of existing services; svcs.Conf may be tuned first.
func newTestServerWithConf(t *testing.T, svcs *testutil.Services) (*Server, *testutil.Services) {
	srv := NewServer(ServerDeps{
		Conf:          svcs.Conf,
		Logger:        svcs.Logger,
		Validate:      svcs.Validate,
		Translator:    svcs.Translator,
		UserSvc:       svcs.Users,
		ProfileSvc:    svcs.Profiles,
		MentorSvc:     svcs.Mentors,
		MenteeSvc:     svcs.Mentees,
		AttendanceSvc: svcs.Attendance,
		ImportSvc:     svcs.Importer,
	})
	return srv, svcs
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, srv *Server, usr user.User) string {
	token, err := srv.auth.generateToken(srv.auth.claims(usr))
	require.NoError(t, err)
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	return data
}

func marshalList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	return marshalObj(t, objs)
}

// jsonEqual compares JSON documents; top level lists are compared regardless of order.
func jsonEqual(t *testing.T, want, got []byte) bool {
	var j1, j2 interface{}
	if err := json.Unmarshal(want, &j1); err != nil {
		t.Errorf("json.Unmarshal(want) failed: %v", err)
		return false
	}
	if err := json.Unmarshal(got, &j2); err != nil {
		t.Errorf("json.Unmarshal(got) failed: %v; body %s", err, got)
		return false
	}
	if l1, ok := j1.([]interface{}); ok {
		return assert.ElementsMatch(t, l1, j2)
	}
	return assert.Equal(t, j1, j2)
}

func runHTTPTests(t *testing.T, srv *Server, method string, tests []httpTest) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = method
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			srv.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "body: %s", rec.Body.String())
	if tt.wantData != nil {
		jsonEqual(t, tt.wantData, rec.Body.Bytes())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), "body: %s", rec.Body.String())
}

func newContext() context.Context {
	return context.Background()
}

func mustUser(t *testing.T, svcs *testutil.Services, id string) user.User {
	usr, err := svcs.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return usr
}
