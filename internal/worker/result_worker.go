package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/campusmemory/quiz-backend/internal/config"
	"github.com/campusmemory/quiz-backend/internal/model"
)

const (
	ResultBatchSize    = 50
	ResultBatchTimeout = 2 * time.Second
	ResultPollTimeout  = 1 * time.Second
)

// ResultStore is the slice of the result repository the worker needs.
type ResultStore interface {
	Create(ctx context.Context, res *model.QuizResult) error
	CreateBatch(ctx context.Context, results []model.QuizResult) error
}

// CacheInvalidator is notified after a batch lands so stale leaderboard
// slices are dropped.
type CacheInvalidator interface {
	Invalidate(ctx context.Context)
}

// ResultWorker drains completed quiz results off the Redis queue and
// batch-inserts them, so a burst of finishing players costs one round
// trip to Postgres instead of one per player.
type ResultWorker struct {
	store ResultStore
	rdb   *redis.Client
	cache CacheInvalidator
	log   zerolog.Logger
}

func NewResultWorker(store ResultStore, rdb *redis.Client, cache CacheInvalidator, log zerolog.Logger) *ResultWorker {
	return &ResultWorker{
		store: store,
		rdb:   rdb,
		cache: cache,
		log:   log.With().Str("component", "result_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ResultWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ResultWorker started")

	batch := make([]model.QuizResult, 0, ResultBatchSize)
	lastFlush := time.Now()

	for {
		// Should flush?
		if len(batch) > 0 &&
			(len(batch) >= ResultBatchSize || time.Since(lastFlush) >= ResultBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ResultPollTimeout, config.WorkerKey.PersistResultsQueue).Result()
			if err != nil {
				if err != redis.Nil && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var res model.QuizResult
			if err := json.Unmarshal([]byte(item[1]), &res); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, res)
		}
	}
}

// ----------------------------------------------------------------
// Batch insert wrapper with per-row fallback
// ----------------------------------------------------------------

func (w *ResultWorker) flushSafe(ctx context.Context, batch []model.QuizResult) {
	if len(batch) == 0 {
		return
	}

	if err := w.store.CreateBatch(ctx, batch); err != nil {
		w.log.Warn().Err(err).Msg("bulk result insert failed, using fallback")

		for i := range batch {
			if err := w.store.Create(ctx, &batch[i]); err != nil {
				w.log.Error().Err(err).Msg("single insert failed, requeueing")
				raw, _ := json.Marshal(batch[i])
				w.rdb.RPush(ctx, config.WorkerKey.PersistResultsQueue, raw)
			}
		}
	}

	if w.cache != nil {
		w.cache.Invalidate(ctx)
	}

	w.log.Debug().Int("count", len(batch)).Msg("Result batch flushed")
}
