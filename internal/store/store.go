package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresmejia3/facelog/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

// ErrIdentityNotFound is returned when no identity has the given name.
var ErrIdentityNotFound = errors.New("identity not found")

// Store mirrors attendance and the gallery into PostgreSQL.
type Store struct {
	conn *pgx.Conn
}

// Identity is a gallery entry as stored in the database.
type Identity struct {
	ID        int
	Name      string
	UpdatedAt time.Time
}

// AttendanceRow is one recorded check-in.
type AttendanceRow struct {
	SessionID string
	Name      string
	SeenAt    time.Time
}

// New establishes a connection to the database and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	// Initialize schema (Auto-Migration)
	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	// The vector type only exists once the extension has been created
	if err := pgxvec.RegisterTypes(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to register vector types: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the tables and the vector extension if they don't exist.
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY,
			device TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS known_identities (
			id SERIAL PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			embedding VECTOR(128) NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS attendance (
			id BIGSERIAL PRIMARY KEY,
			session_id UUID REFERENCES sessions(id),
			name TEXT NOT NULL,
			seen_at TIMESTAMPTZ NOT NULL,
			UNIQUE (session_id, name)
		);
		CREATE INDEX IF NOT EXISTS attendance_seen_at_idx ON attendance (seen_at);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// Close terminates the database connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}

// EnsureSession registers a session. Re-registering the same ID is a no-op.
func (s *Store) EnsureSession(ctx context.Context, sessionID, device string, startedAt time.Time) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO sessions (id, device, started_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, sessionID, device, startedAt)
	return err
}

// EndSession stamps the end time of a session.
func (s *Store) EndSession(ctx context.Context, sessionID string, endedAt time.Time) error {
	_, err := s.conn.Exec(ctx, "UPDATE sessions SET ended_at = $1 WHERE id = $2", endedAt, sessionID)
	return err
}

// InsertAttendance records a check-in. A second row for the same person in
// the same session is ignored, matching the CSV log.
func (s *Store) InsertAttendance(ctx context.Context, sessionID string, rec types.Record) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO attendance (session_id, name, seen_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id, name) DO NOTHING
	`, sessionID, rec.Name, rec.Time)
	return err
}

// ListAttendance returns check-ins, newest first. An empty sessionID lists
// every session.
func (s *Store) ListAttendance(ctx context.Context, sessionID string) ([]AttendanceRow, error) {
	query := `SELECT session_id::text, name, seen_at FROM attendance`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = $1`
		args = append(args, sessionID)
	}
	query += ` ORDER BY seen_at DESC, id DESC`

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttendanceRow
	for rows.Next() {
		var r AttendanceRow
		if err := rows.Scan(&r.SessionID, &r.Name, &r.SeenAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertIdentity stores or replaces the encoding for a gallery name.
func (s *Store) UpsertIdentity(ctx context.Context, name string, vec []float64) error {
	_, err := s.conn.Exec(ctx, `
		INSERT INTO known_identities (name, embedding, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = NOW()
	`, name, pgvector.NewVector(toFloat32(vec)))
	return err
}

// FindClosestIdentity returns the nearest stored identity by Euclidean
// distance. It returns -1 if nothing lies strictly within the threshold.
func (s *Store) FindClosestIdentity(ctx context.Context, vec []float64, threshold float64) (int, string, float64, error) {
	// <-> is the L2 distance operator in pgvector
	query := `SELECT id, name, embedding <-> $1 AS dist FROM known_identities ORDER BY embedding <-> $1 ASC, id ASC LIMIT 1`

	var (
		id   int
		name string
		dist float64
	)
	err := s.conn.QueryRow(ctx, query, pgvector.NewVector(toFloat32(vec))).Scan(&id, &name, &dist)
	if errors.Is(err, pgx.ErrNoRows) {
		return -1, "", 0, nil
	}
	if err != nil {
		return 0, "", 0, err
	}
	if dist >= threshold {
		return -1, "", dist, nil
	}
	return id, name, dist, nil
}

// RenameIdentity changes the name of a stored identity. Past attendance rows
// keep the name they were recorded under.
func (s *Store) RenameIdentity(ctx context.Context, oldName, newName string) error {
	tag, err := s.conn.Exec(ctx, "UPDATE known_identities SET name = $1, updated_at = NOW() WHERE name = $2", newName, oldName)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrIdentityNotFound, oldName)
	}
	return nil
}

// GetIdentityVector returns the stored encoding for a name.
func (s *Store) GetIdentityVector(ctx context.Context, name string) ([]float64, error) {
	var vec pgvector.Vector
	err := s.conn.QueryRow(ctx, "SELECT embedding FROM known_identities WHERE name = $1", name).Scan(&vec)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(vec.Slice()))
	for i, v := range vec.Slice() {
		out[i] = float64(v)
	}
	return out, nil
}

// ListIdentities returns every stored identity ordered by name.
func (s *Store) ListIdentities(ctx context.Context) ([]Identity, error) {
	rows, err := s.conn.Query(ctx, "SELECT id, name, updated_at FROM known_identities ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Identity
	for rows.Next() {
		var id Identity
		if err := rows.Scan(&id.ID, &id.Name, &id.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// Reset drops all application tables to clear the database state.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, `
		DROP TABLE IF EXISTS attendance CASCADE;
		DROP TABLE IF EXISTS known_identities CASCADE;
		DROP TABLE IF EXISTS sessions CASCADE;
	`)
	return err
}

// SessionSink feeds attendance records of one session into the store.
type SessionSink struct {
	Store     *Store
	SessionID string
}

// RecordAttendance implements attendance.Sink.
func (s SessionSink) RecordAttendance(ctx context.Context, rec types.Record) error {
	return s.Store.InsertAttendance(ctx, s.SessionID, rec)
}

func toFloat32(vec []float64) []float32 {
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(v)
	}
	return out
}
