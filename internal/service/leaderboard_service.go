package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/campusmemory/quiz-backend/internal/config"
	"github.com/campusmemory/quiz-backend/internal/engine"
	"github.com/campusmemory/quiz-backend/internal/model"
)

// LeaderboardService ranks persisted results and caches the top slice
// in Redis. The ranking itself is recomputed from the full result set
// on every cache miss, which keeps the ordering rules in one place
// (the engine) instead of maintaining an incremental sorted structure.
type LeaderboardService struct {
	results  ResultRepository
	rdb      *redis.Client
	log      zerolog.Logger
	size     int
	cacheTTL time.Duration
	fill     singleflight.Group
}

func NewLeaderboardService(results ResultRepository, rdb *redis.Client, log zerolog.Logger, size int, cacheTTL time.Duration) *LeaderboardService {
	if size <= 0 {
		size = engine.DefaultLeaderboardSize
	}
	return &LeaderboardService{
		results:  results,
		rdb:      rdb,
		log:      log.With().Str("component", "leaderboard_service").Logger(),
		size:     size,
		cacheTTL: cacheTTL,
	}
}

// Top returns the best results, at most n entries (capped at the
// configured board size). Concurrent cache misses collapse into a
// single database read.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]model.QuizResult, error) {
	if n <= 0 || n > s.size {
		n = s.size
	}

	key := config.CacheKey.LeaderboardKey(n)
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, key).Result()
		if err == nil {
			var board []model.QuizResult
			if err := json.Unmarshal([]byte(cached), &board); err == nil {
				return board, nil
			}
			// Corrupt entry; fall through and overwrite it.
		}
	}

	v, err, _ := s.fill.Do(fmt.Sprintf("top:%d", n), func() (any, error) {
		all, err := s.results.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load results: %w", err)
		}
		board := engine.Rank(all, n)

		if s.rdb != nil {
			if payload, err := json.Marshal(board); err == nil {
				if err := s.rdb.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
					s.log.Warn().Err(err).Msg("Failed to cache leaderboard")
				}
			}
		}
		return board, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]model.QuizResult), nil
}

// Invalidate drops every cached board slice up to the configured size.
// Called by the result worker after a batch lands so the next read
// reflects it immediately instead of waiting out the TTL.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	keys := make([]string, 0, s.size)
	for n := 1; n <= s.size; n++ {
		keys = append(keys, config.CacheKey.LeaderboardKey(n))
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate leaderboard cache")
	}
}
