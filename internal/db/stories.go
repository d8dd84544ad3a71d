package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/interview-coach/internal/stories"
)

// CreateStory inserts a story and returns its ID. The strength score is
// computed here so stored rows never go stale against their own text.
func (db *DB) CreateStory(ctx context.Context, s *stories.Story) (uuid.UUID, error) {
	s.Strength = stories.StrengthScore(*s)
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO stories (user_id, title, situation, task, action, result, tags, strength)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		s.UserID, s.Title, s.Situation, s.Task, s.Action, s.Result, s.Tags, s.Strength,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create story: %w", err)
	}
	s.ID = id
	return id, nil
}

// GetStory retrieves a story by ID. Returns nil when not found.
func (db *DB) GetStory(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	var s stories.Story
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, situation, task, action, result, tags, strength,
		        created_at, updated_at
		 FROM stories WHERE id = $1`,
		id,
	).Scan(&s.ID, &s.UserID, &s.Title, &s.Situation, &s.Task, &s.Action,
		&s.Result, &s.Tags, &s.Strength, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get story: %w", err)
	}
	return &s, nil
}

// ListStories retrieves a user's stories, weakest first so the ones that
// need drilling surface at the top.
func (db *DB) ListStories(ctx context.Context, userID uuid.UUID) ([]stories.Story, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, title, situation, task, action, result, tags, strength,
		        created_at, updated_at
		 FROM stories WHERE user_id = $1
		 ORDER BY strength ASC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	defer rows.Close()

	var out []stories.Story
	for rows.Next() {
		var s stories.Story
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Situation, &s.Task,
			&s.Action, &s.Result, &s.Tags, &s.Strength, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStory replaces a story's text fields and recomputes its strength.
func (db *DB) UpdateStory(ctx context.Context, s *stories.Story) error {
	s.Strength = stories.StrengthScore(*s)
	tag, err := db.pool.Exec(ctx,
		`UPDATE stories
		 SET title = $2, situation = $3, task = $4, action = $5, result = $6,
		     tags = $7, strength = $8, updated_at = NOW()
		 WHERE id = $1`,
		s.ID, s.Title, s.Situation, s.Task, s.Action, s.Result, s.Tags, s.Strength,
	)
	if err != nil {
		return fmt.Errorf("failed to update story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("story not found: %s", s.ID)
	}
	return nil
}

// DeleteStory removes a story.
func (db *DB) DeleteStory(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("story not found: %s", id)
	}
	return nil
}
