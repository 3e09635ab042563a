package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clipforge/clipforge-agent/internal/db"
	"github.com/clipforge/clipforge-agent/internal/media"
	"github.com/clipforge/clipforge-agent/internal/project"
	"github.com/clipforge/clipforge-agent/internal/render"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testServerConfig wires a full server around a throwaway database. The
// session manager uses an hour-long frame interval so no tick fires
// during a test.
func testServerConfig(t *testing.T) ServerConfig {
	t.Helper()

	logger := testLogger()
	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	repo := project.NewRepository(database.Conn())
	prober := &media.StubProber{Result: media.ProbeResult{
		Duration: 60, Width: 1920, Height: 1080, FrameRate: 30,
	}}
	projects := project.NewService(repo, prober, logger)
	sessions := NewSessionManager(projects, time.Hour, logger)
	t.Cleanup(sessions.CloseAll)

	return ServerConfig{
		Port:       0,
		Projects:   projects,
		Repository: repo,
		Sessions:   sessions,
		Media:      media.NewServer(logger),
		Render:     render.NewStubClient(logger),
		Autosaver:  project.NewAutosaver(repo, sessions.DirtySessions, logger),
		Logger:     logger,
		StartTime:  time.Now(),
		Version:    "test",
	}
}

func writeTempMedia(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk.mp4")
	if err := os.WriteFile(path, []byte("not really video"), 0o644); err != nil {
		t.Fatalf("write temp media: %v", err)
	}
	return path
}

func createTestProject(t *testing.T, cfg ServerConfig) *project.Project {
	t.Helper()
	p, err := cfg.Projects.Create(context.Background(), project.CreateParams{
		Title:     "demo",
		MediaPath: writeTempMedia(t),
		ClipStart: 10,
		ClipEnd:   40,
	})
	if err != nil {
		t.Fatalf("create test project: %v", err)
	}
	return p
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "127.0.0.1:54321"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeJSONBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}
