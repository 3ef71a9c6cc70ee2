package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/andresmejia3/facelog/internal/types"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestToFloat32(t *testing.T) {
	got := toFloat32([]float64{0.5, -1.25})
	if len(got) != 2 || got[0] != 0.5 || got[1] != -1.25 {
		t.Errorf("toFloat32() = %v", got)
	}
}

// TestStoreIntegration runs a full integration test against a real Postgres container.
// It requires Docker to be running.
func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// Explicitly check for Docker availability and fail hard if missing
	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	// The pgvector image ships the extension
	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("facelog_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	// Initialize Store (runs migrations)
	s, err := New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to store: %v", err)
	}
	defer s.Close(ctx)

	// --- Identities ---

	vecA := make([]float64, types.EncodingDim)
	vecA[0] = 1.0
	if err := s.UpsertIdentity(ctx, "alice", vecA); err != nil {
		t.Fatalf("UpsertIdentity failed: %v", err)
	}

	// Exact match
	id, name, dist, err := s.FindClosestIdentity(ctx, vecA, 0.4)
	if err != nil {
		t.Fatalf("FindClosestIdentity failed: %v", err)
	}
	if id <= 0 || name != "alice" || dist > 1e-6 {
		t.Errorf("Expected alice at distance 0, got id=%d name=%q dist=%f", id, name, dist)
	}

	// No match: distance sqrt(2) from alice
	vecB := make([]float64, types.EncodingDim)
	vecB[1] = 1.0
	noMatch, _, _, err := s.FindClosestIdentity(ctx, vecB, 0.4)
	if err != nil {
		t.Fatalf("FindClosestIdentity error: %v", err)
	}
	if noMatch != -1 {
		t.Errorf("Expected no match (-1), got %d", noMatch)
	}

	// Upsert replaces the stored encoding
	if err := s.UpsertIdentity(ctx, "alice", vecB); err != nil {
		t.Fatalf("Second UpsertIdentity failed: %v", err)
	}
	stored, err := s.GetIdentityVector(ctx, "alice")
	if err != nil {
		t.Fatalf("GetIdentityVector failed: %v", err)
	}
	if len(stored) != types.EncodingDim || math.Abs(stored[1]-1.0) > 1e-6 || math.Abs(stored[0]) > 1e-6 {
		t.Errorf("Encoding was not replaced: %v", stored[:2])
	}

	if err := s.RenameIdentity(ctx, "alice", "alice_smith"); err != nil {
		t.Fatalf("RenameIdentity failed: %v", err)
	}
	if err := s.RenameIdentity(ctx, "alice", "bob"); !errors.Is(err, ErrIdentityNotFound) {
		t.Errorf("Expected ErrIdentityNotFound, got %v", err)
	}

	identities, err := s.ListIdentities(ctx)
	if err != nil {
		t.Fatalf("ListIdentities failed: %v", err)
	}
	if len(identities) != 1 || identities[0].Name != "alice_smith" {
		t.Errorf("Expected only alice_smith, got %+v", identities)
	}

	// --- Attendance ---

	sessionID := uuid.NewString()
	start := time.Now().Truncate(time.Second)
	if err := s.EnsureSession(ctx, sessionID, "0", start); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	sink := SessionSink{Store: s, SessionID: sessionID}
	if err := sink.RecordAttendance(ctx, types.Record{Name: "alice", Time: start}); err != nil {
		t.Fatalf("RecordAttendance failed: %v", err)
	}
	// Duplicate in the same session is ignored
	if err := sink.RecordAttendance(ctx, types.Record{Name: "alice", Time: start.Add(time.Minute)}); err != nil {
		t.Fatalf("Duplicate RecordAttendance failed: %v", err)
	}

	rows, err := s.ListAttendance(ctx, sessionID)
	if err != nil {
		t.Fatalf("ListAttendance failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "alice" || rows[0].SessionID != sessionID {
		t.Errorf("Unexpected attendance rows %+v", rows)
	}
	if !rows[0].SeenAt.Equal(start) {
		t.Errorf("Expected seen_at %v, got %v", start, rows[0].SeenAt)
	}

	if err := s.EndSession(ctx, sessionID, start.Add(time.Hour)); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}

	// --- Reset ---

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, err := s.ListIdentities(ctx); err == nil {
		t.Error("Expected tables to be gone after Reset")
	}
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
