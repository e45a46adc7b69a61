package testutil

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/ecole-ece/vitrine/core"
	"github.com/ecole-ece/vitrine/core/content"
	"github.com/ecole-ece/vitrine/services/logger"
)

// NewConfig returns the configuration used by the tests: TEST mode, no request logs.
func NewConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Vitrine",
		Build:     "test",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			Address:         ":0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
			JWTExpiration:   time.Hour,
		},
		Database: core.DatabaseConfig{Driver: "inmem"},
	}
}

// NewLogger returns a disabled logger writing nowhere.
func NewLogger(conf *core.Config) *logsvc.RollbarLogger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

func CreateDocument(t *testing.T, repo content.Repository, key, title, raw string) content.Document {
	doc, err := repo.CreateDocument(context.Background(), content.Document{
		Key:     key,
		Title:   title,
		Content: json.RawMessage(raw),
	})
	if err != nil {
		t.Fatalf("createDocument() failed: %v", err)
	}
	return doc
}
