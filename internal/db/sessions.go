package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-coach/internal/session"
)

// SessionStore implements session.Store on PostgreSQL. The transcript is
// stored as one JSONB column so a Save replaces the whole record atomically;
// a version column guards against lost updates (compare-and-swap).
type SessionStore struct {
	db *DB
}

// Sessions returns the PostgreSQL-backed session store.
func (db *DB) Sessions() *SessionStore {
	return &SessionStore{db: db}
}

// Create inserts a new session at version 1.
func (s *SessionStore) Create(ctx context.Context, sess *session.Session) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	sess.Version = 1
	_, err = s.db.pool.Exec(ctx,
		`INSERT INTO interview_sessions
		   (id, user_id, company, role_level, job_context, status, messages,
		    total_turns, max_questions, overall_score, final_summary,
		    started_at, completed_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		sess.ID, sess.UserID, sess.Company, sess.RoleLevel, sess.JobContext,
		sess.Status, messages, sess.TotalTurns, sess.MaxQuestions,
		sess.OverallScore, sess.FinalSummary, sess.StartedAt, sess.CompletedAt,
		sess.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// Load retrieves a session by ID.
func (s *SessionStore) Load(ctx context.Context, id uuid.UUID) (*session.Session, error) {
	row := s.db.pool.QueryRow(ctx,
		`SELECT id, user_id, company, role_level, job_context, status, messages,
		        total_turns, max_questions, overall_score, final_summary,
		        started_at, completed_at, version
		 FROM interview_sessions WHERE id = $1`,
		id,
	)
	return scanSession(row)
}

// Save writes the whole session record in one statement, guarded by the
// version the caller loaded. A concurrent commit in between makes the guard
// miss and Save returns session.ErrConflict without applying anything.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	messages, err := json.Marshal(sess.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	tag, err := s.db.pool.Exec(ctx,
		`UPDATE interview_sessions
		 SET status = $2, messages = $3, total_turns = $4, overall_score = $5,
		     final_summary = $6, completed_at = $7, version = version + 1
		 WHERE id = $1 AND version = $8`,
		sess.ID, sess.Status, messages, sess.TotalTurns, sess.OverallScore,
		sess.FinalSummary, sess.CompletedAt, sess.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a stale version from a missing row.
		var exists bool
		err := s.db.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM interview_sessions WHERE id = $1)`,
			sess.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check session existence: %w", err)
		}
		if exists {
			return session.ErrConflict
		}
		return session.ErrNotFound
	}

	sess.Version++
	return nil
}

// ListByUser retrieves a user's sessions, newest first.
func (s *SessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*session.Session, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT id, user_id, company, role_level, job_context, status, messages,
		        total_turns, max_questions, overall_score, final_summary,
		        started_at, completed_at, version
		 FROM interview_sessions WHERE user_id = $1
		 ORDER BY started_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var sess session.Session
	var messages []byte
	err := row.Scan(
		&sess.ID, &sess.UserID, &sess.Company, &sess.RoleLevel, &sess.JobContext,
		&sess.Status, &messages, &sess.TotalTurns, &sess.MaxQuestions,
		&sess.OverallScore, &sess.FinalSummary, &sess.StartedAt,
		&sess.CompletedAt, &sess.Version,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	if err := json.Unmarshal(messages, &sess.Messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return &sess, nil
}
