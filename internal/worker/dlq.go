package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Dead jobs live in one Redis list per source queue, newest first.
const DLQPrefix = "dlq:"

type DeadJob struct {
	Job
	Motivo  string    `json:"motivo"`
	FalloEn time.Time `json:"fallo_en"`
}

// SendToDLQ parks job for manual inspection. Errors are only logged: a job
// that cannot even be parked is lost either way.
func SendToDLQ(ctx context.Context, rdb *redis.Client, job Job, motivo string) {
	data, err := json.Marshal(DeadJob{Job: job, Motivo: motivo, FalloEn: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Msg("dlq: encode")
		return
	}
	if err := rdb.LPush(ctx, DLQPrefix+job.Queue, data).Err(); err != nil {
		log.Error().Err(err).Str("job_id", job.ID).Str("queue", job.Queue).Msg("dlq: push")
		return
	}
	log.Warn().
		Str("job_id", job.ID).
		Str("queue", job.Queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Str("motivo", motivo).
		Msg("dlq: job parked")
}

// DLQEntries returns up to n dead jobs of queue, newest first. Entries that no
// longer decode are skipped.
func DLQEntries(ctx context.Context, rdb *redis.Client, queue string, n int64) ([]DeadJob, error) {
	raw, err := rdb.LRange(ctx, DLQPrefix+queue, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]DeadJob, 0, len(raw))
	for _, r := range raw {
		var d DeadJob
		if json.Unmarshal([]byte(r), &d) == nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}

// ReplayDLQ moves every dead job of queue back onto it with a fresh attempt
// count, oldest first. Returns how many were moved.
func ReplayDLQ(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	n := 0
	for {
		raw, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		var d DeadJob
		if err := json.Unmarshal([]byte(raw), &d); err != nil || d.Type == "" {
			log.Error().Str("queue", queue).Msg("dlq: dropping undecodable entry on replay")
			continue
		}
		d.Job.Queue = queue
		d.Job.Attempts = 0
		if err := pushJob(ctx, rdb, d.Job); err != nil {
			return n, err
		}
		n++
	}
}
