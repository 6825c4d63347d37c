package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/crudimg/internal/db"
)

func TestMigrateCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crudimg.sqlite3")
	t.Setenv("DATABASE_URL", "sqlite://"+path)
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out.String(), "Schema ready (sqlite)") {
		t.Errorf("unexpected output %q", out.String())
	}

	database, err := db.Open(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	var n int
	if err := database.QueryRow(`SELECT COUNT(*) FROM crudimg`).Scan(&n); err != nil {
		t.Fatalf("crudimg table missing: %v", err)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "info")

	cfg, err := loadConfig(&options{port: 9090, logLevel: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected flag port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected flag log level, got %q", cfg.Log.Level)
	}
}

func TestServeRequiresBucket(t *testing.T) {
	t.Setenv("AWS_BUCKET_NAME", "")
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(t.TempDir(), "x.sqlite3"))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"serve"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected serve to fail without a bucket")
	}
}

func TestMigrateRejectsZeroConnections(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(t.TempDir(), "crudimg.sqlite3"))
	t.Setenv("DB_MAX_OPEN_CONNS", "0")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"migrate"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected migrate to reject DB_MAX_OPEN_CONNS=0")
	}
}
