package worker

// retry_cron.go
// Failed jobs wait in a sorted set scored by their next attempt time. A
// background goroutine moves due jobs back to their queue every tick.

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	RetryKey          = "jobs:reintentos"
	MaxAttempts       = 5
	retryTickInterval = 15 * time.Second
	retryBatchSize    = 50
	retryBaseDelay    = 30 * time.Second
	retryMaxDelay     = 10 * time.Minute
)

// computeRetryBackoff: 30s, 1m, 2m, 4m ... capped at 10m.
func computeRetryBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := retryBaseDelay
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= retryMaxDelay {
			return retryMaxDelay
		}
	}
	return d
}

func scheduleRetry(ctx context.Context, rdb *redis.Client, job Job, cause error) {
	encoded, err := json.Marshal(job)
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("retry: failed to marshal job")
		return
	}
	next := time.Now().Add(computeRetryBackoff(job.Attempts))
	if err := rdb.ZAdd(ctx, RetryKey, redis.Z{Score: float64(next.Unix()), Member: encoded}).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("retry: failed to schedule")
		return
	}
	log.Warn().
		Err(cause).
		Str("job_id", job.ID).
		Str("queue", job.Queue).
		Int("attempt", job.Attempts).
		Time("next_retry_at", next).
		Msg("retry: job failed, scheduled next attempt")
}

// StartRetryCron launches the goroutine that re-queues due jobs. It respects
// the context for graceful shutdown.
func StartRetryCron(ctx context.Context, rdb *redis.Client) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				if n, err := requeueDue(ctx, rdb, time.Now()); err != nil {
					log.Error().Err(err).Msg("retry_cron: failed to requeue")
				} else if n > 0 {
					log.Info().Int("count", n).Msg("retry_cron: jobs requeued")
				}
			}
		}
	}()
}

// requeueDue moves jobs whose retry time is <= now back to their queue.
// ZREM decides ownership, so two processes never requeue the same job.
func requeueDue(ctx context.Context, rdb *redis.Client, now time.Time) (int, error) {
	due, err := rdb.ZRangeByScore(ctx, RetryKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.Unix(), 10),
		Count: retryBatchSize,
	}).Result()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, raw := range due {
		removed, err := rdb.ZRem(ctx, RetryKey, raw).Result()
		if err != nil {
			return n, err
		}
		if removed == 0 {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			log.Error().Err(err).Msg("retry_cron: dropping undecodable job")
			continue
		}
		if err := pushJob(ctx, rdb, job); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
