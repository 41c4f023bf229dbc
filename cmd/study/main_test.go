package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/studyhall/internal/config"
	"github.com/phrazzld/studyhall/internal/query"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := fmt.Sprintf(`server:
  port: 8080
  log_level: error
storage:
  driver: sqlite
  sqlite_path: %s
  seed_on_start: false
`, filepath.Join(dir, "library.db"))
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand(&out)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCommands_SeedReviewStats(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample data loaded.")

	out, err = run(t, cfg, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")

	out, err = run(t, cfg, "stats")
	require.NoError(t, err)
	var stats query.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 2, stats.Materials)
	assert.Equal(t, 5, stats.Flashcards)
	assert.Equal(t, 3, stats.DueFlashcards)

	out, err = run(t, cfg, "due")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	cardID := strings.Fields(lines[1])[0]

	out, err = run(t, cfg, "review", cardID, "good")
	require.NoError(t, err)
	assert.Contains(t, out, "Next review")

	out, err = run(t, cfg, "due")
	require.NoError(t, err)
	assert.NotContains(t, out, cardID)

	out, err = run(t, cfg, "decks")
	require.NoError(t, err)
	assert.Contains(t, out, "biology")
	assert.Contains(t, out, "math")

	_, err = run(t, cfg, "review", "not-a-uuid", "good")
	assert.Error(t, err)
	_, err = run(t, cfg, "review", cardID, "perfect")
	assert.Error(t, err)
}

func TestMigrate_RequiresPostgres(t *testing.T) {
	cfg := writeConfig(t)

	_, err := run(t, cfg, "migrate", "status")
	assert.ErrorIs(t, err, errNeedsPostgres)
}

func TestParseRating(t *testing.T) {
	q, _, isQuality := parseRating("4")
	assert.True(t, isQuality)
	assert.Equal(t, 4, q)

	_, outcome, isQuality := parseRating("easy")
	assert.False(t, isQuality)
	assert.Equal(t, "easy", string(outcome))
}

func TestServe_Lifecycle(t *testing.T) {
	c := &cli{
		cfg: &config.Config{
			Server: config.ServerConfig{LogLevel: "error", ShutdownTimeout: 5 * time.Second},
			Storage: config.StorageConfig{
				Driver:      config.DriverMemory,
				SeedOnStart: true,
			},
			Generation: config.GenerationConfig{
				Workers:      1,
				QueueSize:    4,
				Timeout:      time.Second,
				AutoGenerate: true,
			},
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		out:    io.Discard,
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/api/stats")
	require.NoError(t, err)
	var stats query.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 2, stats.Materials, "the sample is seeded on start")

	// A new material is generated for automatically.
	body := strings.NewReader(`{"title":"Atoms","type":"text","content":"An atom is the smallest unit of matter."}`)
	resp, err = http.Post(base+"/api/materials", "application/json", body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var s query.Stats
		if json.NewDecoder(resp.Body).Decode(&s) != nil {
			return false
		}
		return s.ProcessedMaterials == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
