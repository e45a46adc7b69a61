package logsvc

import (
	"bytes"
	"fmt"
	"log"
	"testing"

	"github.com/ecole-ece/vitrine/core"
)

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "test"})
	l.Enable(false)

	l.Warn(
		"failed to save",
		fmt.Errorf("connection refused"),
		map[string]interface{}{"key": "home", "attempt": 1},
		core.Actor{ID: "42", Email: "admin@ece.ht"},
	)
	l.Info("content loaded")

	want := "failed to save | connection refused | attempt=1 key=home | actor=admin@ece.ht\ncontent loaded\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}
