package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/examly/examly-backend/internal/config"
	"github.com/examly/examly-backend/internal/repository"
)

// MaxRetries bounds how often a failed item is requeued before it is dropped.
const MaxRetries = 5

// ResponseWorker consumes persist_responses_queue and UPSERTs answers to
// PostgreSQL. Submits hit Redis first so the request path never waits on the
// database.
type ResponseWorker struct {
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewResponseWorker creates a new ResponseWorker.
func NewResponseWorker(attemptRepo *repository.AttemptRepository, rdb *redis.Client, log zerolog.Logger) *ResponseWorker {
	return &ResponseWorker{
		attemptRepo: attemptRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "response_worker").Logger(),
	}
}

type responsePayload struct {
	AttemptID    string  `json:"attempt_id"`
	QuestionID   string  `json:"question_id"`
	QuestionText string  `json:"question_text"`
	Answer       string  `json:"answer"`
	TimeTaken    float64 `json:"time_taken"`
	Retries      int     `json:"retries,omitempty"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *ResponseWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *ResponseWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.PersistResponsesQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		// Malformed JSON can never succeed. Log and discard.
		w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed payload")
		return
	}

	if err := w.persist(ctx, &payload); err != nil {
		w.retry(ctx, &payload, err)
	}
}

func (w *ResponseWorker) persist(ctx context.Context, p *responsePayload) error {
	attemptID, err := uuid.Parse(p.AttemptID)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	return w.attemptRepo.UpsertResponse(ctx, repository.ResponseRecord{
		AttemptID:    attemptID,
		QuestionID:   questionID,
		QuestionText: p.QuestionText,
		Answer:       p.Answer,
		TimeTaken:    p.TimeTaken,
	})
}

// retry pushes a failed item back with an incremented counter, dropping it
// once the retry budget is spent.
func (w *ResponseWorker) retry(ctx context.Context, p *responsePayload, cause error) {
	p.Retries++
	if p.Retries > MaxRetries {
		w.log.Error().Err(cause).
			Str("attempt_id", p.AttemptID).
			Str("question_id", p.QuestionID).
			Msg("Dropping response after max retries")
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		w.log.Error().Err(err).Msg("Marshal for requeue failed")
		return
	}

	w.log.Warn().Err(cause).
		Str("attempt_id", p.AttemptID).
		Int("retries", p.Retries).
		Msg("Persist failed, requeueing")
	w.rdb.RPush(ctx, config.WorkerKey.PersistResponsesQueue, data)
	time.Sleep(2 * time.Second)
}

// drain processes all remaining items in the queue before shutdown.
func (w *ResponseWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.PersistResponsesQueue).Result()
		if err != nil {
			break
		}

		var payload responsePayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persist(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.PersistResponsesQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
