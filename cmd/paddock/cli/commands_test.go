package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/mkoziy/paddock/internal/database"
	"github.com/mkoziy/paddock/internal/models"
	"github.com/mkoziy/paddock/internal/provider"
	"github.com/mkoziy/paddock/internal/repositories"
)

// executeCmd runs the root command with args, capturing stdout and stderr.
func executeCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	cmd.SetArgs(args)

	outBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)

	execErr := cmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), execErr
}

// isolate points the CLI at a private SQLite file and clears config files.
func isolate(t *testing.T) string {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "paddock.db")
	t.Setenv("PADDOCK_CONFIG", "")
	t.Setenv("PADDOCK_DATABASE__DSN", dsn)
	return dsn
}

func TestConfig_PrintsEffectiveYAML(t *testing.T) {
	dsn := isolate(t)
	t.Setenv("PADDOCK_PROVIDER__RATE_LIMIT__BURST", "7")

	stdout, _, err := executeCmd(t, "config")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"base_url: https://api.openf1.org/v1", "burst: 7", dsn} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestRoot_RejectsBadLogLevel(t *testing.T) {
	isolate(t)

	if _, _, err := executeCmd(t, "--log-level", "loud", "config"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestMigrate_UpAndRollback(t *testing.T) {
	dsn := isolate(t)

	if _, _, err := executeCmd(t, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	db, err := database.NewDB(context.Background(), database.Config{Driver: database.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if _, err := repositories.ListSeasons(context.Background(), db); err != nil {
		t.Fatalf("expected seasons table after migrate: %v", err)
	}
	_ = db.Close()

	if _, _, err := executeCmd(t, "migrate", "--rollback"); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}
}

func TestImportSession_InvalidYear(t *testing.T) {
	isolate(t)

	_, _, err := executeCmd(t, "import", "session", "nineteen", "Monza", "R")
	if err == nil || !strings.Contains(err.Error(), "invalid year") {
		t.Fatalf("expected invalid year error, got %v", err)
	}
}

func TestImportSession_RecordsFailedRun(t *testing.T) {
	dsn := isolate(t)

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[]"))
	}))
	defer srv.Close()
	t.Setenv("PADDOCK_PROVIDER__BASE_URL", srv.URL)

	_, _, err := executeCmd(t, "import", "session", "2024", "Atlantis", "R")
	if !errors.Is(err, provider.ErrEventNotFound) {
		t.Fatalf("expected event not found, got %v", err)
	}
	if hits.Load() == 0 {
		t.Fatal("expected the provider to be queried")
	}

	db, err := database.NewDB(context.Background(), database.Config{Driver: database.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	runs, err := repositories.ListImportRuns(context.Background(), db, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected one run, got %d", len(runs))
	}
	run := runs[0]
	if run.Status != models.RunFailed || run.Scope != models.ScopeSession || run.SessionsFailed != 1 {
		t.Errorf("unexpected run %+v", run)
	}
	if run.ConfigSnapshot == nil || !strings.Contains(*run.ConfigSnapshot, srv.URL) {
		t.Errorf("expected config snapshot with provider url, got %v", run.ConfigSnapshot)
	}
	if run.EventName == nil || *run.EventName != "Atlantis" {
		t.Errorf("unexpected event name %v", run.EventName)
	}
}
