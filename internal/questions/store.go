// Package questions persists the question bank the evaluation pipeline
// scores answers against.
package questions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gradepilot/evaluator-api/internal/models"
)

// Store is read-only: the question bank is written by the content side of
// the application, this pipeline only looks questions up.
type Store interface {
	GetByID(ctx context.Context, id string) (*models.Question, error)
}

type store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db}
}

type questionRow struct {
	ID        string    `db:"id"`
	Text      string    `db:"text"`
	MaxMarks  int       `db:"max_marks"`
	Keywords  string    `db:"keywords"`
	Guideline string    `db:"guideline"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r questionRow) toModel() (models.Question, error) {
	q := models.Question{
		ID:        r.ID,
		Text:      r.Text,
		MaxMarks:  r.MaxMarks,
		Guideline: r.Guideline,
	}
	if err := json.Unmarshal([]byte(r.Keywords), &q.Keywords); err != nil {
		return q, fmt.Errorf("bad keywords for question %s: %w", r.ID, err)
	}
	return q, nil
}

func (s *store) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var row questionRow
	query := `
		SELECT id, text, max_marks, keywords, guideline, created_at, updated_at
		FROM questions
		WHERE id = $1
	`
	err := s.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	q, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &q, nil
}

