package cmd

import (
	"bytes"
	"context"
	"errors"
	"html"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"nicodb/internal/domain"
	"nicodb/internal/repository/sqlite"
)

const programProps = `{"program":{"nicoliveProgramId":"lv346883570","title":"ドライブ配信",` +
	`"supplier":{"name":"3時サブ垢","programProviderId":"52053485"},` +
	`"beginTime":1737936000,"endTime":1737950400,"status":"ENDED","providerType":"community"}}`

type testEnv struct {
	dir      string
	dbPath   string
	requests *atomic.Int32
}

// setupEnv points the configuration at a temp database and a local page server
// that serves the test program for id 346883570 and 404 for everything else
func setupEnv(t *testing.T) testEnv {
	t.Helper()

	requests := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/watch/lv346883570" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html><script data-props="` + html.EscapeString(programProps) + `"></script></html>`))
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	env := testEnv{dir: dir, dbPath: filepath.Join(dir, "nicodb.db"), requests: requests}

	t.Setenv("DATABASE_PATH", env.dbPath)
	t.Setenv("STREAMING_BASE_URL", server.URL+"/watch/lv")
	t.Setenv("FETCH_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_FILE", "")
	t.Setenv("METRICS_TEXTFILE", filepath.Join(dir, "nicodb.prom"))

	return env
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	fetchDryRun = false
	streamerNameHistory = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func countStreamings(t *testing.T, path string) int {
	t.Helper()
	db, err := sqlite.NewDB(path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	count, err := sqlite.NewStreamingRepository(db).Count(context.Background())
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	return count
}

func TestFetchRange_InvalidRangeFailsBeforeFetching(t *testing.T) {
	env := setupEnv(t)

	_, err := execute(t, "fetch-range", "10", "1")

	var friendly *domain.UserFriendlyError
	if !errors.As(err, &friendly) {
		t.Fatalf("expected UserFriendlyError, got %v", err)
	}
	if friendly.ExitCode != exitUsageError {
		t.Errorf("ExitCode = %d, want %d", friendly.ExitCode, exitUsageError)
	}
	if !errors.Is(err, domain.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange in chain, got %v", err)
	}
	if n := env.requests.Load(); n != 0 {
		t.Errorf("expected no page requests, got %d", n)
	}
	if _, err := os.Stat(env.dbPath); !os.IsNotExist(err) {
		t.Errorf("expected database not to be opened, stat err = %v", err)
	}
}

func TestFetchRange_StoresAndRecovers(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "fetch-range", "346883569", "346883571")
	if err != nil {
		t.Fatalf("fetch-range failed: %v", err)
	}

	if !strings.Contains(out, "stored=1 recovered=2 failed=0") {
		t.Errorf("unexpected summary %q", out)
	}
	if n := env.requests.Load(); n != 3 {
		t.Errorf("requests = %d, want 3", n)
	}
	if got := countStreamings(t, env.dbPath); got != 3 {
		t.Errorf("streamings = %d, want 3", got)
	}

	data, err := os.ReadFile(filepath.Join(env.dir, "nicodb.prom"))
	if err != nil {
		t.Fatalf("expected metrics textfile: %v", err)
	}
	if !strings.Contains(string(data), "nicodb_page_fetch_total") {
		t.Errorf("metrics textfile missing fetch counter")
	}
}

func TestFetch_ThenStreamerName(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "fetch", "lv346883570")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if !strings.Contains(out, "346883570: stored") {
		t.Errorf("unexpected output %q", out)
	}

	out, err = execute(t, "streamer-name", "52053485")
	if err != nil {
		t.Fatalf("streamer-name failed: %v", err)
	}
	if strings.TrimSpace(out) != "3時サブ垢" {
		t.Errorf("streamer-name = %q, want 3時サブ垢", out)
	}
}

func TestStreamerName_Unknown(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "streamer-name", "999")
	if err != nil {
		t.Fatalf("streamer-name failed: %v", err)
	}
	if strings.TrimSpace(out) != domain.DefaultPlaceholders().NonexistentStreamer {
		t.Errorf("streamer-name = %q, want the nonexistent streamer message", out)
	}
}

func TestFetch_DryRunDoesNotStore(t *testing.T) {
	env := setupEnv(t)

	out, err := execute(t, "fetch", "--dry-run", "346883570")
	if err != nil {
		t.Fatalf("fetch --dry-run failed: %v", err)
	}

	var view recordView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("output is not a JSON record: %v (%q)", err, out)
	}
	if view.ExternalID != "346883570" || view.Status != 30 || view.DurationSeconds != 14400 {
		t.Errorf("record = %+v", view)
	}
	if view.StreamerName != "3時サブ垢" || view.ProviderKind != "user" {
		t.Errorf("record = %+v", view)
	}

	if got := countStreamings(t, env.dbPath); got != 0 {
		t.Errorf("streamings = %d, want 0", got)
	}
}

func TestFetch_InvalidID(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "fetch", "abc")

	var friendly *domain.UserFriendlyError
	if !errors.As(err, &friendly) || friendly.ExitCode != exitUsageError {
		t.Errorf("expected usage error, got %v", err)
	}
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !strings.HasPrefix(out, "schema version ") || !strings.Contains(out, "0 streamings stored") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCommand_MetricsWriteFailureFailsCommand(t *testing.T) {
	env := setupEnv(t)
	t.Setenv("METRICS_TEXTFILE", filepath.Join(env.dir, "missing", "nicodb.prom"))

	out, err := execute(t, "fetch", "346883570")
	if err == nil {
		t.Fatal("expected the metrics write failure to be returned")
	}
	if !strings.Contains(err.Error(), "metrics textfile") {
		t.Errorf("unexpected error %v", err)
	}
	if !strings.Contains(out, "346883570: stored") {
		t.Errorf("expected the fetch itself to succeed, got %q", out)
	}
}
