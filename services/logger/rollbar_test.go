package logsvc

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mentora/core"
	"github.com/trezcool/mentora/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)

	usr := user.User{ID: "u1", Email: "jane@test.cd", Role: user.RoleAdmin}
	logger.Error("importing file", errors.New("boom"), usr)
	logger.Info("imported", map[string]interface{}{"created": 3})

	out := buf.String()
	assert.Contains(t, out, "[ERROR] importing file")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "[INFO] imported")
	assert.Contains(t, out, "created:3")
	assert.NotContains(t, out, "jane@test.cd")
}
