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

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// WarningWorker consumes persist_warnings_queue and bulk-loads proctoring
// events into the audit table. The live counter on the attempt row is
// updated synchronously in the request path; this log exists for review.
type WarningWorker struct {
	attemptRepo *repository.AttemptRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewWarningWorker creates a new WarningWorker.
func NewWarningWorker(attemptRepo *repository.AttemptRepository, rdb *redis.Client, log zerolog.Logger) *WarningWorker {
	return &WarningWorker{
		attemptRepo: attemptRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "warning_worker").Logger(),
	}
}

type warningPayload struct {
	AttemptID  string `json:"attempt_id"`
	Reason     string `json:"reason"`
	OccurredAt string `json:"occurred_at"`
	Retries    int    `json:"retries,omitempty"`
}

// Start begins the batching worker loop. Call in a goroutine.
func (w *WarningWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	buffer := make([]*warningPayload, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// 1. Check flush conditions (time or size).
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0] // Clear buffer, keep capacity
				lastFlushTime = time.Now()
			}
		}

		// 2. Check context (graceful shutdown).
		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		// 3. Fetch from Redis. BLPop blocks for 1 second and returns
		// immediately if data exists.
		result, err := w.rdb.BLPop(ctx, PollTimeout, config.WorkerKey.PersistWarningsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check flush timer
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload warningPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON can never succeed. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed payload")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts a bulk COPY, falling back to row-by-row inserts with
// bounded requeue when the batch fails.
func (w *WarningWorker) flushSafe(ctx context.Context, batch []*warningPayload) {
	events, bad := w.toEvents(batch)
	for _, p := range bad {
		w.log.Error().Str("attempt_id", p.AttemptID).Msg("Dropping warning event with invalid fields")
	}
	if len(events) == 0 {
		return
	}

	if err := w.attemptRepo.InsertWarningEvents(ctx, events); err != nil {
		w.log.Warn().Err(err).Int("count", len(events)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *WarningWorker) toEvents(batch []*warningPayload) ([]repository.WarningEvent, []*warningPayload) {
	events := make([]repository.WarningEvent, 0, len(batch))
	var bad []*warningPayload
	for _, p := range batch {
		ev, err := w.toEvent(p)
		if err != nil {
			bad = append(bad, p)
			continue
		}
		events = append(events, ev)
	}
	return events, bad
}

func (w *WarningWorker) toEvent(p *warningPayload) (repository.WarningEvent, error) {
	attemptID, err := uuid.Parse(p.AttemptID)
	if err != nil {
		return repository.WarningEvent{}, err
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, p.OccurredAt)
	if err != nil {
		occurredAt = time.Now().UTC()
	}
	return repository.WarningEvent{
		AttemptID:  attemptID,
		Reason:     p.Reason,
		OccurredAt: occurredAt,
	}, nil
}

func (w *WarningWorker) fallbackInsert(ctx context.Context, batch []*warningPayload) {
	requeueList := make([]*warningPayload, 0)

	for _, p := range batch {
		ev, err := w.toEvent(p)
		if err != nil {
			w.log.Error().Str("attempt_id", p.AttemptID).Msg("Dropping warning event with invalid UUID")
			continue
		}

		if err := w.attemptRepo.InsertWarningEvents(ctx, []repository.WarningEvent{ev}); err != nil {
			w.log.Error().Err(err).Str("attempt_id", p.AttemptID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

// requeue pushes failed items back with an incremented counter, dropping
// anything past the retry budget.
func (w *WarningWorker) requeue(ctx context.Context, items []*warningPayload) {
	pipe := w.rdb.Pipeline()
	queued := 0
	for _, p := range items {
		p.Retries++
		if p.Retries > MaxRetries {
			w.log.Error().Str("attempt_id", p.AttemptID).Msg("Dropping warning event after max retries")
			continue
		}
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.WorkerKey.PersistWarningsQueue, data)
		queued++
	}
	if queued == 0 {
		return
	}

	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
		return
	}

	w.log.Info().Int("count", queued).Msg("Requeued failed items back to Redis")
	// Back off to avoid thrashing while the database is down.
	time.Sleep(2 * time.Second)
}

func (w *WarningWorker) shutdown(buffer []*warningPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}
