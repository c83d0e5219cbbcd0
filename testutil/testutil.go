// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/audit"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/auth"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/cliparse"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/db"
	"github.com/AryanSahu2805/Blockchain-Based-Voting-System-sub001/registry"
)

// FakeClock is a settable election.Clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a clock fixed at 2025-01-15 12:00 UTC.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SetupTestDB opens a fresh in-memory SQLite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       ":memory:",
		DatabaseType:      "sqlite",
		IdentitySalt:      "test-identity-salt",
		NATSSubjectPrefix: "elections",
		RelayInterval:     time.Second,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Env bundles a registry recording into an in-memory audit log.
type Env struct {
	Registry *registry.Registry
	Log      *audit.Log
	Clock    *FakeClock
	Config   cliparse.Config
}

func NewTestEnv(t *testing.T) *Env {
	t.Helper()
	clock := NewFakeClock()
	log := audit.NewLog(nil)
	return &Env{
		Registry: registry.New(registry.Options{Clock: clock, Sink: log}),
		Log:      log,
		Clock:    clock,
		Config:   GetTestConfig(),
	}
}

// CreateTestElection creates an election owned by creator that opens in one
// hour and closes 24 hours later. Candidates default to "A" and "B".
func CreateTestElection(t *testing.T, reg *registry.Registry, clock *FakeClock, creator string, names ...string) uint64 {
	t.Helper()
	if len(names) == 0 {
		names = []string{"A", "B"}
	}
	id, err := reg.CreateElection(context.Background(), creator, registry.CreateParams{
		Title:          "Test Election",
		StartTime:      clock.Now().Add(time.Hour),
		EndTime:        clock.Now().Add(25 * time.Hour),
		CandidateNames: names,
	})
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return id
}

// IdentityHeaders returns the signed identity headers for identity
func IdentityHeaders(cfg cliparse.Config, identity string) map[string]string {
	return map[string]string{
		auth.HeaderIdentity:  identity,
		auth.HeaderSignature: auth.SignIdentity(identity, cfg.IdentitySalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
