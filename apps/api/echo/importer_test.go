package echoapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core/importer"
	"github.com/trezcool/mentora/tests"
)

func newUploadRequest(t *testing.T, token, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/mentees/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func Test_importApi_upload(t *testing.T) {
	srv, svcs := newTestServer(t)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	token := getToken(t, srv, admin)
	mtr := testutil.CreateMentor(t, svcs, "mentor@example.com", "Mentor One")

	t.Run("auth required", func(t *testing.T) {
		req, rec := newUploadRequest(t, "", "students.csv", importer.Template())
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("file required", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "", nil)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"file": "this field is required"}),
		}, rec)
	})

	t.Run("csv only", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "students.xlsx", []byte("lol"))
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"file": "only CSV files are allowed"}),
		}, rec)
	})

	t.Run("empty file", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "students.csv", nil)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, map[string]string{"file": importer.ErrEmptyFile.Error()}),
		}, rec)
	})

	t.Run("template imported", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "students.csv", importer.Template())
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rep importer.Report
		decode(t, rec, &rep)
		assert.Equal(t, importer.Summary{Total: 3, Created: 3}, rep.Summary)
		require.Len(t, rep.Details.Success, 3)
		assert.Equal(t, "STU001@123", rep.Details.Success[0].DefaultPassword)
		require.NotNil(t, rep.Details.Success[0].MentorID)
		assert.Equal(t, mtr.ID, *rep.Details.Success[0].MentorID)
		assert.Nil(t, rep.Details.Success[2].MentorID)
		assert.Empty(t, rep.Errors)
		assert.Len(t, svcs.Mail.Sent(), 3)
	})

	t.Run("re-import updates", func(t *testing.T) {
		req, rec := newUploadRequest(t, token, "students.csv", importer.Template())
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var rep importer.Report
		decode(t, rec, &rep)
		assert.Equal(t, importer.Summary{Total: 3, Updated: 3}, rep.Summary)
		assert.Empty(t, rep.Details.Updated[0].DefaultPassword)
	})

	// uploads never outlive the request
	entries, err := os.ReadDir(svcs.Conf.Upload.Dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	t.Run("metrics", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/metrics", "")
		srv.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		body, _ := io.ReadAll(rec.Body)
		assert.Contains(t, string(body), `mentora_import_rows_total{outcome="created"} 3`)
		assert.Contains(t, string(body), `mentora_import_rows_total{outcome="updated"} 3`)
		assert.Contains(t, string(body), `mentora_http_requests_total{code="200",method="POST",path="/v1/mentees/import"} 2`)
	})
}

func Test_importApi_tooLarge(t *testing.T) {
	svcs := testutil.NewServices(t)
	svcs.Conf.Upload.MaxSize = 1 << 10
	srv, _ := newTestServerWithConf(t, svcs)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	content := append(importer.Template(), bytes.Repeat([]byte("STU999,X,x@test.cd,0123456789,,,,,\n"), 100)...)

	req, rec := newUploadRequest(t, getToken(t, srv, admin), "students.csv", content)
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func Test_importApi_sizeCap(t *testing.T) {
	const maxSize = 8 << 10
	svcs := testutil.NewServices(t)
	svcs.Conf.Upload.MaxSize = maxSize
	srv, _ := newTestServerWithConf(t, svcs)

	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User
	token := getToken(t, srv, admin)

	csvOfSize := func(size int) []byte {
		content := append([]byte(nil), importer.Template()...)
		for i := 0; len(content) < size; i++ {
			content = append(content, fmt.Sprintf("STU%04d,Student %d,s%04d@test.cd,0123456789,,,,,\n", i, i, i)...)
		}
		return content[:size]
	}

	tests := []struct {
		name     string
		size     int
		wantCode int
	}{
		{name: "just under the cap", size: maxSize - 100, wantCode: http.StatusOK},
		{name: "exactly the cap", size: maxSize, wantCode: http.StatusOK},
		{name: "just over the cap", size: maxSize + 100, wantCode: http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, token, "students.csv", csvOfSize(tt.size))
			srv.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func Test_importApi_template(t *testing.T) {
	srv, svcs := newTestServer(t)
	admin := testutil.CreateAdmin(t, svcs, "admin@test.cd", adminPwd).User

	req, rec := newAuthRequest(http.MethodGet, "/v1/mentees/import/template", getToken(t, srv, admin))
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), templateFilename)
	assert.Equal(t, importer.Template(), rec.Body.Bytes())
}
