package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"diagnosis-quiz-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// RecordStore keeps published quizzes in the quizzes table. The definition
// column is json, not jsonb, so result order survives storage.
type RecordStore struct {
	pool *pgxpool.Pool
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	return &RecordStore{pool: pool}
}

func (s *RecordStore) Insert(ctx context.Context, rec domain.QuizRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(rec.Definition)
	if err != nil {
		return "", fmt.Errorf("marshal quiz: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, owner_email, is_public, data, created_at) VALUES ($1, $2, $3, $4::json, $5)`,
		rec.ID, rec.OwnerEmail, rec.Public, string(data), rec.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert quiz: %w", err)
	}
	return rec.ID, nil
}

func (s *RecordStore) Get(ctx context.Context, id string) (domain.QuizRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, owner_email, is_public, data, created_at FROM quizzes WHERE id=$1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.QuizRecord{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.QuizRecord{}, fmt.Errorf("load quiz: %w", err)
	}
	return rec, nil
}

func (s *RecordStore) ListPublic(ctx context.Context, limit int) ([]domain.QuizRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_email, is_public, data, created_at FROM quizzes WHERE is_public ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.QuizRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list quizzes: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (domain.QuizRecord, error) {
	var (
		rec domain.QuizRecord
		raw []byte
	)
	if err := row.Scan(&rec.ID, &rec.OwnerEmail, &rec.Public, &raw, &rec.CreatedAt); err != nil {
		return domain.QuizRecord{}, err
	}
	if err := json.Unmarshal(raw, &rec.Definition); err != nil {
		return domain.QuizRecord{}, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return rec, nil
}
