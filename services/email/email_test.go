package emailsvc

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mentora/core"
	logsvc "github.com/trezcool/mentora/services/logger"
)

func newTestConfig() *core.Config {
	conf := &core.Config{AppName: "Mentora", Env: "TEST", FrontendBaseURL: "http://front.test", SendgridApiKey: "sg-key"}
	return conf
}

func newTestLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func welcome() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Jane Doe", Address: "jane@test.cd"}},
		Subject:      "Your account",
		TemplateName: "welcome",
		TemplateData: map[string]string{"FullName": "Jane Doe", "Email": "jane@test.cd", "Password": "STU001@123"},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	conf := newTestConfig()
	svc := NewConsoleServiceMock(conf, newTestLogger(conf))

	svc.SendMessages(
		welcome(),
		&core.EmailMessage{Subject: "no recipient", BodyStr: "hi"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@test.cd"}}, TemplateName: "unknown"},
	)
	sent := svc.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your account", sent[0].Subject)
	assert.Contains(t, sent[0].TextContent, "STU001@123")
}

func TestConsoleService_format(t *testing.T) {
	conf := newTestConfig()
	svc := NewConsoleService(conf, newTestLogger(conf)).(*consoleService)

	msg := welcome()
	require.NoError(t, msg.Render(conf))
	out := svc.format(*msg)
	assert.Contains(t, out, "Subject: [Mentora] Your account\r\n")
	assert.Contains(t, out, `To: "Jane Doe" <jane@test.cd>`)
	assert.Contains(t, out, "Content-Type: text/plain")
	assert.Contains(t, out, "Content-Type: text/html")
}

func TestSendgridService(t *testing.T) {
	conf := newTestConfig()

	received := make(chan map[string]interface{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, endpoint, r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusAccepted)
		received <- body
	}))
	defer srv.Close()

	origHost := host
	host = srv.URL
	defer func() { host = origHost }()

	svc := NewSendgridService(conf, newTestLogger(conf))
	svc.SendMessages(welcome())

	select {
	case body := <-received:
		pers := body["personalizations"].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "[Mentora] Your account", pers["subject"])
		content := body["content"].([]interface{})
		require.Len(t, content, 2)
		assert.Equal(t, "text/plain", content[0].(map[string]interface{})["type"])
	case <-time.After(5 * time.Second):
		t.Fatal("no request received")
	}
}
