package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examly/examly-backend/internal/model"
)

// QuestionRepository handles question bank data access.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// QuestionFilter narrows question listings. Zero values mean no filter.
type QuestionFilter struct {
	Field   string
	Subject string
}

// QuestionRecord is one question prepared for insertion.
type QuestionRecord struct {
	Field          string
	Subject        *string
	QuestionText   string
	SampleResponse *string
}

// CreateBatch inserts a batch of questions in a single transaction and
// returns the created rows.
func (r *QuestionRepository) CreateBatch(ctx context.Context, records []QuestionRecord, createdBy string, isPublic bool) ([]model.Question, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]model.Question, 0, len(records))
	for _, in := range records {
		var q model.Question
		err := tx.QueryRow(ctx,
			`INSERT INTO questions (field, subject, question_text, sample_response, created_by, is_public)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, field, subject, question_text, sample_response, created_by, is_public, created_at`,
			in.Field, in.Subject, in.QuestionText, in.SampleResponse, createdBy, isPublic,
		).Scan(&q.ID, &q.Field, &q.Subject, &q.QuestionText, &q.SampleResponse, &q.CreatedBy, &q.IsPublic, &q.CreatedAt)
		if err != nil {
			return nil, err
		}
		created = append(created, q)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// List pages through questions visible to a teacher, filtered server side.
// Visible means owned by the teacher or marked public.
func (r *QuestionRepository) List(ctx context.Context, viewerEmail string, filter QuestionFilter, limit, offset int) ([]model.Question, int, error) {
	conds := []string{"(created_by = $1 OR is_public = TRUE)"}
	args := []any{viewerEmail}

	if filter.Field != "" {
		args = append(args, filter.Field)
		conds = append(conds, fmt.Sprintf("field = $%d", len(args)))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conds = append(conds, fmt.Sprintf("subject = $%d", len(args)))
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM questions WHERE "+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, field, subject, question_text, sample_response, created_by, is_public, created_at
		 FROM questions WHERE %s
		 ORDER BY created_at DESC, id
		 LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Field, &q.Subject, &q.QuestionText, &q.SampleResponse, &q.CreatedBy, &q.IsPublic, &q.CreatedAt); err != nil {
			return nil, 0, err
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

// GetByIDs fetches questions by id. Missing ids are simply absent from the
// result; callers decide whether that is an error.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, field, subject, question_text, sample_response, created_by, is_public, created_at
		 FROM questions WHERE id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Field, &q.Subject, &q.QuestionText, &q.SampleResponse, &q.CreatedBy, &q.IsPublic, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetOwned retrieves a question only if the teacher owns it.
func (r *QuestionRepository) GetOwned(ctx context.Context, id uuid.UUID, ownerEmail string) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, field, subject, question_text, sample_response, created_by, is_public, created_at
		 FROM questions WHERE id = $1 AND created_by = $2`, id, ownerEmail,
	).Scan(&q.ID, &q.Field, &q.Subject, &q.QuestionText, &q.SampleResponse, &q.CreatedBy, &q.IsPublic, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Delete removes a question owned by the teacher.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID, ownerEmail string) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM questions WHERE id = $1 AND created_by = $2`, id, ownerEmail,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Facets returns the distinct field and subject values visible to a teacher,
// for populating filter dropdowns.
func (r *QuestionRepository) Facets(ctx context.Context, viewerEmail string) (*model.QuestionFacets, error) {
	facets := &model.QuestionFacets{Fields: []string{}, Subjects: []string{}}

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT field FROM questions
		 WHERE created_by = $1 OR is_public = TRUE
		 ORDER BY field`, viewerEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		facets.Fields = append(facets.Fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.pool.Query(ctx,
		`SELECT DISTINCT subject FROM questions
		 WHERE (created_by = $1 OR is_public = TRUE) AND subject IS NOT NULL
		 ORDER BY subject`, viewerEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		facets.Subjects = append(facets.Subjects, s)
	}
	return facets, rows.Err()
}
