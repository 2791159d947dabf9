package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examly/examly-backend/internal/model"
)

// ClassRepository handles class group data access.
type ClassRepository struct {
	pool *pgxpool.Pool
}

// NewClassRepository creates a new ClassRepository.
func NewClassRepository(pool *pgxpool.Pool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// Create inserts a new class group owned by the given professor.
func (r *ClassRepository) Create(ctx context.Context, name, professorEmail string) (*model.ClassGroup, error) {
	c := &model.ClassGroup{}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO class_groups (name, professor_email, students)
		 VALUES ($1, $2, '{}')
		 RETURNING id, name, professor_email, students, created_at, updated_at`,
		name, professorEmail,
	).Scan(&c.ID, &c.Name, &c.ProfessorEmail, &c.Students, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID retrieves a class group by id.
func (r *ClassRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ClassGroup, error) {
	c := &model.ClassGroup{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, professor_email, students, created_at, updated_at
		 FROM class_groups WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.ProfessorEmail, &c.Students, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListByProfessor lists every class group owned by a professor, newest first.
func (r *ClassRepository) ListByProfessor(ctx context.Context, professorEmail string) ([]model.ClassGroup, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, professor_email, students, created_at, updated_at
		 FROM class_groups
		 WHERE professor_email = $1
		 ORDER BY created_at DESC`, professorEmail,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	classes := []model.ClassGroup{}
	for rows.Next() {
		var c model.ClassGroup
		if err := rows.Scan(&c.ID, &c.Name, &c.ProfessorEmail, &c.Students, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

// AddStudent appends a student email to the roster. The ANY guard makes the
// operation idempotent, so re-adding an enrolled student changes nothing.
func (r *ClassRepository) AddStudent(ctx context.Context, id uuid.UUID, email string) (*model.ClassGroup, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE class_groups
		 SET students = array_append(students, $2), updated_at = NOW()
		 WHERE id = $1 AND NOT ($2 = ANY(students))`,
		id, email,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// RemoveStudent drops a student email from the roster. Removing an absent
// email is a no-op.
func (r *ClassRepository) RemoveStudent(ctx context.Context, id uuid.UUID, email string) (*model.ClassGroup, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE class_groups
		 SET students = array_remove(students, $2), updated_at = NOW()
		 WHERE id = $1`,
		id, email,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a class group. Exams assigned to the class keep their
// class_id reference cleared by the schema's ON DELETE SET NULL.
func (r *ClassRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM class_groups WHERE id = $1`, id)
	return err
}
