package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examly/examly-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `id, title, description, question_ids, created_by, class_id, assigned_to, is_public, state, created_at, updated_at`

func scanExam(row pgx.Row) (*model.Exam, error) {
	e := &model.Exam{}
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.QuestionIDs, &e.CreatedBy,
		&e.ClassID, &e.AssignedTo, &e.IsPublic, &e.State, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new unassigned exam.
func (r *ExamRepository) Create(ctx context.Context, title, description string, questionIDs []uuid.UUID, createdBy string) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`INSERT INTO exams (title, description, question_ids, created_by, state)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+examColumns,
		title, description, questionIDs, createdBy, model.ExamStateUnassigned,
	))
}

// GetByID retrieves an exam by id.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return scanExam(r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams WHERE id = $1`, id,
	))
}

// ListByCreator lists exams created by a teacher, newest first.
func (r *ExamRepository) ListByCreator(ctx context.Context, createdBy string) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams
		 WHERE created_by = $1
		 ORDER BY created_at DESC`, createdBy,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// UpdateAssignment sets who takes the exam. Any of the three targets can be
// combined; assigning anything moves the exam to the assigned state.
func (r *ExamRepository) UpdateAssignment(ctx context.Context, id uuid.UUID, classID *uuid.UUID, emails []string, isPublic bool) (*model.Exam, error) {
	if emails == nil {
		emails = []string{}
	}
	return scanExam(r.pool.QueryRow(ctx,
		`UPDATE exams
		 SET class_id = $2, assigned_to = $3, is_public = $4, state = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+examColumns,
		id, classID, emails, isPublic, model.ExamStateAssigned,
	))
}

// Delete removes an exam owned by the teacher. Attempts against it are
// removed by the schema's ON DELETE CASCADE.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID, ownerEmail string) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM exams WHERE id = $1 AND created_by = $2`, id, ownerEmail,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListAssignedTo returns every assigned exam a student can see. Visibility is
// resolved in SQL: public exams, direct email assignment, or membership in
// the assigned class roster.
func (r *ExamRepository) ListAssignedTo(ctx context.Context, studentEmail string) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams e
		 WHERE e.state = $1
		   AND (e.is_public = TRUE
		        OR $2 = ANY(e.assigned_to)
		        OR EXISTS (
		            SELECT 1 FROM class_groups c
		            WHERE c.id = e.class_id AND $2 = ANY(c.students)))
		 ORDER BY e.created_at DESC`,
		model.ExamStateAssigned, studentEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectExams(rows)
}

// IsAssignedTo reports whether a single exam is visible to a student.
func (r *ExamRepository) IsAssignedTo(ctx context.Context, id uuid.UUID, studentEmail string) (bool, error) {
	var assigned bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		    SELECT 1 FROM exams e
		    WHERE e.id = $1 AND e.state = $2
		      AND (e.is_public = TRUE
		           OR $3 = ANY(e.assigned_to)
		           OR EXISTS (
		               SELECT 1 FROM class_groups c
		               WHERE c.id = e.class_id AND $3 = ANY(c.students))))`,
		id, model.ExamStateAssigned, studentEmail,
	).Scan(&assigned)
	return assigned, err
}

func collectExams(rows pgx.Rows) ([]model.Exam, error) {
	exams := []model.Exam{}
	for rows.Next() {
		var e model.Exam
		err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.QuestionIDs, &e.CreatedBy,
			&e.ClassID, &e.AssignedTo, &e.IsPublic, &e.State, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
