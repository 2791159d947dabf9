package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/model"
	"github.com/examly/examly-backend/internal/repository"
)

// Common attempt errors.
var (
	ErrExamNotAssigned   = errors.New("exam is not assigned to this student")
	ErrNoQuestions       = errors.New("exam has no questions")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrAttemptCompleted  = errors.New("attempt is already completed")
	ErrQuestionNotInExam = errors.New("question does not belong to this exam")
)

// AttemptService handles the student side of taking an exam: starting,
// answering, proctoring warnings and finishing.
type AttemptService struct {
	attemptRepo  *repository.AttemptRepository
	examRepo     *repository.ExamRepository
	questionRepo *repository.QuestionRepository
	rdb          *redis.Client
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(
	attemptRepo *repository.AttemptRepository,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	rdb *redis.Client,
) *AttemptService {
	return &AttemptService{
		attemptRepo:  attemptRepo,
		examRepo:     examRepo,
		questionRepo: questionRepo,
		rdb:          rdb,
	}
}

// ListAssigned returns the exams a student can see, with the status of their
// own attempt overlaid on each.
func (s *AttemptService) ListAssigned(ctx context.Context, studentEmail string) ([]model.AssignedExam, error) {
	exams, err := s.examRepo.ListAssignedTo(ctx, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("list assigned exams: %w", err)
	}

	ids := make([]uuid.UUID, len(exams))
	for i := range exams {
		ids[i] = exams[i].ID
	}
	statuses, err := s.attemptRepo.StatusesForStudent(ctx, ids, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("attempt statuses: %w", err)
	}

	assigned := make([]model.AssignedExam, len(exams))
	for i, e := range exams {
		assigned[i] = model.AssignedExam{Exam: e, AttemptStatus: statuses[e.ID]}
	}
	return assigned, nil
}

// Start opens an attempt for the student on the given exam. Starting is
// idempotent: a second call resumes the existing attempt with its original
// question order and start time. Question order is shuffled per student.
func (s *AttemptService) Start(ctx context.Context, examID uuid.UUID, studentEmail, studentName string) (*model.AttemptState, error) {
	assigned, err := s.examRepo.IsAssignedTo(ctx, examID, studentEmail)
	if err != nil {
		return nil, fmt.Errorf("check assignment: %w", err)
	}
	if !assigned {
		return nil, ErrExamNotAssigned
	}

	exam, err := s.examRepo.GetByID(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if len(exam.QuestionIDs) == 0 {
		return nil, ErrNoQuestions
	}

	order := ShuffleQuestionIDs(exam.QuestionIDs)
	attempt, err := s.attemptRepo.Start(ctx, exam, studentEmail, studentName, order)
	if err != nil {
		return nil, fmt.Errorf("start attempt: %w", err)
	}

	// Cache the start time and the active exam pointer for fast resume.
	_ = s.rdb.Set(ctx, config.CacheKey.AttemptStartKey(examID.String(), studentEmail),
		attempt.StartedAt.Unix(), 0).Err()
	if !attempt.Completed {
		_ = s.rdb.Set(ctx, config.CacheKey.StudentActiveExamKey(studentEmail),
			examID.String(), 0).Err()
	}

	return s.buildState(ctx, attempt)
}

// ShuffleQuestionIDs returns a new slice holding a uniform random permutation
// of the given question IDs. The input is left untouched.
func ShuffleQuestionIDs(ids []uuid.UUID) []uuid.UUID {
	order := make([]uuid.UUID, len(ids))
	copy(order, ids)
	rand.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	return order
}

// GetState returns the resumable state of a student's attempt, merging any
// answers still waiting in the persistence queue.
func (s *AttemptService) GetState(ctx context.Context, examID uuid.UUID, studentEmail string) (*model.AttemptState, error) {
	attempt, err := s.getAttempt(ctx, examID, studentEmail)
	if err != nil {
		return nil, err
	}
	return s.buildState(ctx, attempt)
}

func (s *AttemptService) getAttempt(ctx context.Context, examID uuid.UUID, studentEmail string) (*model.Attempt, error) {
	attempt, err := s.attemptRepo.GetByExamAndStudent(ctx, examID, studentEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	return attempt, nil
}

// buildState overlays Redis-buffered answers onto the persisted ones so a
// reconnecting client never sees an answer it already submitted go missing.
func (s *AttemptService) buildState(ctx context.Context, attempt *model.Attempt) (*model.AttemptState, error) {
	responses := attempt.Responses
	if !attempt.Completed {
		pending, err := s.pendingResponses(ctx, attempt)
		if err != nil {
			return nil, err
		}
		responses = mergeResponses(attempt.QuestionOrder, responses, pending)
	}

	elapsed := time.Since(attempt.StartedAt).Seconds()
	if attempt.Completed && attempt.TotalTimeTaken != nil {
		elapsed = *attempt.TotalTimeTaken
	}

	return &model.AttemptState{
		AttemptID:      attempt.ID,
		ExamID:         attempt.ExamID,
		QuestionOrder:  attempt.QuestionOrder,
		NextQuestion:   len(responses),
		Responses:      responses,
		Warnings:       attempt.Warnings,
		Completed:      attempt.Completed,
		ElapsedSeconds: elapsed,
	}, nil
}

func (s *AttemptService) pendingResponses(ctx context.Context, attempt *model.Attempt) ([]model.Response, error) {
	key := config.CacheKey.AttemptProgressKey(attempt.ExamID.String(), attempt.StudentEmail)
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read progress cache: %w", err)
	}

	pending := make([]model.Response, 0, len(raw))
	for _, v := range raw {
		var resp model.Response
		if err := json.Unmarshal([]byte(v), &resp); err != nil {
			continue
		}
		pending = append(pending, resp)
	}
	return pending, nil
}

// mergeResponses unions persisted and pending answers, pending winning on
// conflict, ordered by the attempt's question order.
func mergeResponses(order []uuid.UUID, persisted, pending []model.Response) []model.Response {
	byQuestion := make(map[uuid.UUID]model.Response, len(persisted)+len(pending))
	for _, r := range persisted {
		byQuestion[r.QuestionID] = r
	}
	for _, r := range pending {
		byQuestion[r.QuestionID] = r
	}

	merged := make([]model.Response, 0, len(byQuestion))
	for _, qid := range order {
		if r, ok := byQuestion[qid]; ok {
			merged = append(merged, r)
		}
	}
	return merged
}

// SubmitResponse records an answer for one question of an open attempt. The
// answer lands in Redis immediately and is flushed to PostgreSQL by the
// persistence worker.
func (s *AttemptService) SubmitResponse(ctx context.Context, examID uuid.UUID, studentEmail string, req *model.SubmitResponseRequest) (*model.Response, error) {
	attempt, err := s.getAttempt(ctx, examID, studentEmail)
	if err != nil {
		return nil, err
	}
	if attempt.Completed {
		return nil, ErrAttemptCompleted
	}

	inExam := false
	for _, qid := range attempt.QuestionOrder {
		if qid == req.QuestionID {
			inExam = true
			break
		}
	}
	if !inExam {
		return nil, ErrQuestionNotInExam
	}

	questions, err := s.questionRepo.GetByIDs(ctx, []uuid.UUID{req.QuestionID})
	if err != nil {
		return nil, fmt.Errorf("resolve question: %w", err)
	}
	questionText := ""
	if len(questions) > 0 {
		questionText = questions[0].QuestionText
	}

	resp := &model.Response{
		QuestionID:   req.QuestionID,
		QuestionText: questionText,
		Answer:       req.Answer,
		TimeTaken:    req.TimeTaken,
	}

	buf, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	progressKey := config.CacheKey.AttemptProgressKey(examID.String(), studentEmail)
	if err := s.rdb.HSet(ctx, progressKey, req.QuestionID.String(), buf).Err(); err != nil {
		return nil, fmt.Errorf("buffer response: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"attempt_id":    attempt.ID.String(),
		"question_id":   req.QuestionID.String(),
		"question_text": questionText,
		"answer":        req.Answer,
		"time_taken":    req.TimeTaken,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	if err := s.rdb.LPush(ctx, config.WorkerKey.PersistResponsesQueue, payload).Err(); err != nil {
		return nil, fmt.Errorf("enqueue response: %w", err)
	}

	return resp, nil
}

// RecordWarning increments the proctoring counter for an open attempt and
// returns the new count. The event itself is queued for the audit log.
func (s *AttemptService) RecordWarning(ctx context.Context, examID uuid.UUID, studentEmail, reason string) (int, error) {
	attempt, err := s.getAttempt(ctx, examID, studentEmail)
	if err != nil {
		return 0, err
	}
	if attempt.Completed {
		return 0, ErrAttemptCompleted
	}

	warnings, err := s.attemptRepo.IncrementWarnings(ctx, attempt.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAttemptCompleted
		}
		return 0, fmt.Errorf("increment warnings: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"attempt_id":  attempt.ID.String(),
		"reason":      reason,
		"occurred_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err == nil {
		_ = s.rdb.LPush(ctx, config.WorkerKey.PersistWarningsQueue, payload).Err()
	}

	// Keep the cached counter in step for monitoring reads.
	_ = s.rdb.Set(ctx, config.CacheKey.AttemptWarningsKey(examID.String(), studentEmail),
		warnings, 0).Err()

	return warnings, nil
}

// Finish closes the attempt. Any answers still buffered in Redis are flushed
// synchronously first so nothing submitted before the deadline is lost.
// Finishing an already completed attempt returns it unchanged.
func (s *AttemptService) Finish(ctx context.Context, examID uuid.UUID, studentEmail string) (*model.Attempt, error) {
	attempt, err := s.getAttempt(ctx, examID, studentEmail)
	if err != nil {
		return nil, err
	}
	if attempt.Completed {
		return attempt, nil
	}

	pending, err := s.pendingResponses(ctx, attempt)
	if err != nil {
		return nil, err
	}
	if len(pending) > 0 {
		recs := make([]repository.ResponseRecord, len(pending))
		for i, r := range pending {
			recs[i] = repository.ResponseRecord{
				AttemptID:    attempt.ID,
				QuestionID:   r.QuestionID,
				QuestionText: r.QuestionText,
				Answer:       r.Answer,
				TimeTaken:    r.TimeTaken,
			}
		}
		if err := s.attemptRepo.UpsertResponses(ctx, recs); err != nil {
			return nil, fmt.Errorf("flush responses: %w", err)
		}
	}

	finished, err := s.attemptRepo.Finish(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("finish attempt: %w", err)
	}

	// Attempt is frozen now; drop the working keys.
	_ = s.rdb.Del(ctx,
		config.CacheKey.AttemptProgressKey(examID.String(), studentEmail),
		config.CacheKey.AttemptStartKey(examID.String(), studentEmail),
		config.CacheKey.AttemptWarningsKey(examID.String(), studentEmail),
		config.CacheKey.StudentActiveExamKey(studentEmail),
	).Err()

	return finished, nil
}
