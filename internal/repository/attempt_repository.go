package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/examly/examly-backend/internal/model"
)

// AttemptRepository handles exam attempt data access. Responses live in the
// attempt_responses child table keyed (attempt_id, question_id) so repeated
// submissions for a question overwrite in place.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

const attemptColumns = `a.id, a.exam_id, a.exam_title, a.student_email, a.student_name,
	a.professor_email, a.question_order, a.started_at, a.ended_at, a.total_time_taken,
	a.warnings, a.completed, a.is_reviewed, a.total_grade, a.reviewed_by, a.reviewed_at`

func scanAttempt(row pgx.Row) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := row.Scan(&a.ID, &a.ExamID, &a.ExamTitle, &a.StudentEmail, &a.StudentName,
		&a.ProfessorEmail, &a.QuestionOrder, &a.StartedAt, &a.EndedAt, &a.TotalTimeTaken,
		&a.Warnings, &a.Completed, &a.IsReviewed, &a.TotalGrade, &a.ReviewedBy, &a.ReviewedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Start creates an attempt for (examID, studentEmail) if none exists and
// returns the row. A second start never resets the clock or the question
// order recorded by the first.
func (r *AttemptRepository) Start(ctx context.Context, exam *model.Exam, studentEmail, studentName string, questionOrder []uuid.UUID) (*model.Attempt, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exam_attempts
		   (exam_id, exam_title, student_email, student_name, professor_email, question_order)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (exam_id, student_email) DO NOTHING`,
		exam.ID, exam.Title, studentEmail, studentName, exam.CreatedBy, questionOrder,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByExamAndStudent(ctx, exam.ID, studentEmail)
}

// GetByExamAndStudent retrieves an attempt with its responses.
func (r *AttemptRepository) GetByExamAndStudent(ctx context.Context, examID uuid.UUID, studentEmail string) (*model.Attempt, error) {
	a, err := scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts a
		 WHERE a.exam_id = $1 AND a.student_email = $2`, examID, studentEmail,
	))
	if err != nil {
		return nil, err
	}
	if err := r.loadResponses(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID retrieves an attempt with its responses.
func (r *AttemptRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	a, err := scanAttempt(r.pool.QueryRow(ctx,
		`SELECT `+attemptColumns+` FROM exam_attempts a WHERE a.id = $1`, id,
	))
	if err != nil {
		return nil, err
	}
	if err := r.loadResponses(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AttemptRepository) loadResponses(ctx context.Context, a *model.Attempt) error {
	rows, err := r.pool.Query(ctx,
		`SELECT position, question_id, question_text, answer, time_taken, grade, feedback
		 FROM attempt_responses
		 WHERE attempt_id = $1
		 ORDER BY position`, a.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	// Grades are keyed by the response's ordinal in the loaded list, not by
	// the stored position. A student who answers out of order and finishes
	// early leaves gaps in position; review indexes the dense list.
	a.Responses = []model.Response{}
	a.Grades = map[int]model.ResponseGrade{}
	for rows.Next() {
		var (
			pos      int
			resp     model.Response
			grade    *float64
			feedback *string
		)
		if err := rows.Scan(&pos, &resp.QuestionID, &resp.QuestionText, &resp.Answer, &resp.TimeTaken, &grade, &feedback); err != nil {
			return err
		}
		a.Responses = append(a.Responses, resp)
		if grade != nil {
			g := model.ResponseGrade{Grade: *grade}
			if feedback != nil {
				g.Feedback = *feedback
			}
			a.Grades[len(a.Responses)-1] = g
		}
	}
	return rows.Err()
}

// ResponseRecord is one answer queued for persistence.
type ResponseRecord struct {
	AttemptID    uuid.UUID
	QuestionID   uuid.UUID
	QuestionText string
	Answer       string
	TimeTaken    float64
}

// UpsertResponse stores one answer. The insert is guarded so answers against
// a completed attempt are silently dropped; the caller checks completion
// before queueing, this guard covers the race with finish.
func (r *AttemptRepository) UpsertResponse(ctx context.Context, rec ResponseRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempt_responses (attempt_id, position, question_id, question_text, answer, time_taken)
		 SELECT a.id, array_position(a.question_order, $2) - 1, $2, $3, $4, $5
		 FROM exam_attempts a
		 WHERE a.id = $1 AND a.completed = FALSE
		 ON CONFLICT (attempt_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer,
		     time_taken = EXCLUDED.time_taken,
		     question_text = EXCLUDED.question_text`,
		rec.AttemptID, rec.QuestionID, rec.QuestionText, rec.Answer, rec.TimeTaken,
	)
	return err
}

// UpsertResponses persists a drained batch of answers in one transaction.
func (r *AttemptRepository) UpsertResponses(ctx context.Context, recs []ResponseRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, rec := range recs {
		_, err := tx.Exec(ctx,
			`INSERT INTO attempt_responses (attempt_id, position, question_id, question_text, answer, time_taken)
			 SELECT a.id, array_position(a.question_order, $2) - 1, $2, $3, $4, $5
			 FROM exam_attempts a
			 WHERE a.id = $1 AND a.completed = FALSE
			 ON CONFLICT (attempt_id, question_id) DO UPDATE
			 SET answer = EXCLUDED.answer,
			     time_taken = EXCLUDED.time_taken,
			     question_text = EXCLUDED.question_text`,
			rec.AttemptID, rec.QuestionID, rec.QuestionText, rec.Answer, rec.TimeTaken,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// IncrementWarnings bumps the proctoring counter on an open attempt and
// returns the new count. Completed attempts are left untouched.
func (r *AttemptRepository) IncrementWarnings(ctx context.Context, id uuid.UUID) (int, error) {
	var warnings int
	err := r.pool.QueryRow(ctx,
		`UPDATE exam_attempts
		 SET warnings = warnings + 1
		 WHERE id = $1 AND completed = FALSE
		 RETURNING warnings`, id,
	).Scan(&warnings)
	return warnings, err
}

// WarningEvent is one proctoring event queued for persistence.
type WarningEvent struct {
	AttemptID  uuid.UUID
	Reason     string
	OccurredAt time.Time
}

// InsertWarningEvents bulk-loads proctoring events via COPY.
func (r *AttemptRepository) InsertWarningEvents(ctx context.Context, events []WarningEvent) error {
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"attempt_warnings"},
		[]string{"attempt_id", "reason", "occurred_at"},
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return []any{events[i].AttemptID, events[i].Reason, events[i].OccurredAt}, nil
		}),
	)
	return err
}

// Finish closes an attempt, stamping the end time and the wall-clock seconds
// elapsed since the attempt started. Finishing twice leaves the first result
// intact.
func (r *AttemptRepository) Finish(ctx context.Context, id uuid.UUID) (*model.Attempt, error) {
	_, err := r.pool.Exec(ctx,
		`UPDATE exam_attempts a
		 SET completed = TRUE,
		     ended_at = NOW(),
		     total_time_taken = EXTRACT(EPOCH FROM (NOW() - a.started_at))
		 WHERE a.id = $1 AND a.completed = FALSE`, id,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ListByProfessor lists completed attempts against a professor's exams,
// filtered by review status in SQL. reviewed is a tri-state: nil means both.
func (r *AttemptRepository) ListByProfessor(ctx context.Context, professorEmail string, reviewed *bool) ([]model.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM exam_attempts a
		 WHERE a.professor_email = $1 AND a.completed = TRUE`
	args := []any{professorEmail}
	if reviewed != nil {
		query += ` AND a.is_reviewed = $2`
		args = append(args, *reviewed)
	}
	query += ` ORDER BY a.ended_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// ListByStudent lists a student's own completed attempts for the results
// page, newest first. reviewed is a tri-state: nil means both.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentEmail string, reviewed *bool) ([]model.Attempt, error) {
	query := `SELECT ` + attemptColumns + ` FROM exam_attempts a
		 WHERE a.student_email = $1 AND a.completed = TRUE`
	args := []any{studentEmail}
	if reviewed != nil {
		query += ` AND a.is_reviewed = $2`
		args = append(args, *reviewed)
	}
	query += ` ORDER BY a.ended_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAttempts(rows)
}

// StatusesForStudent maps exam id to attempt status for a student, covering
// the given exams in one query.
func (r *AttemptRepository) StatusesForStudent(ctx context.Context, examIDs []uuid.UUID, studentEmail string) (map[uuid.UUID]model.AttemptStatus, error) {
	statuses := make(map[uuid.UUID]model.AttemptStatus, len(examIDs))
	for _, id := range examIDs {
		statuses[id] = model.AttemptStatusNotStarted
	}
	if len(examIDs) == 0 {
		return statuses, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT exam_id, completed FROM exam_attempts
		 WHERE student_email = $1 AND exam_id = ANY($2)`, studentEmail, examIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			examID    uuid.UUID
			completed bool
		)
		if err := rows.Scan(&examID, &completed); err != nil {
			return nil, err
		}
		if completed {
			statuses[examID] = model.AttemptStatusCompleted
		} else {
			statuses[examID] = model.AttemptStatusInProgress
		}
	}
	return statuses, rows.Err()
}

// Review writes per-response grades and the overall mark in one transaction.
// The attempt row update is guarded on is_reviewed so a review sticks once.
// Grades are keyed by question so they land on the answered rows regardless
// of the positions the student left behind; a grade that matches no response
// rolls the whole review back.
func (r *AttemptRepository) Review(ctx context.Context, id uuid.UUID, grades map[uuid.UUID]model.ResponseGrade, totalGrade float64, reviewerEmail string) (*model.Attempt, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ct, err := tx.Exec(ctx,
		`UPDATE exam_attempts
		 SET is_reviewed = TRUE, total_grade = $2, reviewed_by = $3, reviewed_at = NOW()
		 WHERE id = $1 AND is_reviewed = FALSE`,
		id, totalGrade, reviewerEmail,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}

	for questionID, g := range grades {
		ct, err := tx.Exec(ctx,
			`UPDATE attempt_responses
			 SET grade = $3, feedback = $4
			 WHERE attempt_id = $1 AND question_id = $2`,
			id, questionID, g.Grade, g.Feedback,
		)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() == 0 {
			return nil, fmt.Errorf("no response for question %s", questionID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func collectAttempts(rows pgx.Rows) ([]model.Attempt, error) {
	attempts := []model.Attempt{}
	for rows.Next() {
		var a model.Attempt
		err := rows.Scan(&a.ID, &a.ExamID, &a.ExamTitle, &a.StudentEmail, &a.StudentName,
			&a.ProfessorEmail, &a.QuestionOrder, &a.StartedAt, &a.EndedAt, &a.TotalTimeTaken,
			&a.Warnings, &a.Completed, &a.IsReviewed, &a.TotalGrade, &a.ReviewedBy, &a.ReviewedAt)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
