//go:build integration

package worker

// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"joyeriapos/internal/infra"
)

func redisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

type recorder struct {
	mu   sync.Mutex
	seen []json.RawMessage
	err  error
}

func (r *recorder) Process(_ context.Context, p json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, p)
	return r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestPool_ProcesaTickets(t *testing.T) {
	rdb := redisClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	pool := NewPool(rdb, 2, map[string]Processor{QueueTickets: rec})
	pool.Start(ctx)

	d := NewDispatcher(rdb)
	require.NoError(t, d.EncolarTicket(ctx, 7))
	require.NoError(t, d.EncolarTicket(ctx, 8))

	require.Eventually(t, func() bool { return rec.count() == 2 }, 10*time.Second, 50*time.Millisecond)
	cancel()
	pool.Wait()
}

func TestPool_FalloTransitorioProgramaReintento(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()
	p := NewPool(rdb, 1, map[string]Processor{QueueCierres: &recorder{err: errors.New("disk busy")}})

	job, _ := json.Marshal(Job{ID: "j1", Type: "cierre", Queue: QueueCierres, Payload: json.RawMessage(`{"sesion_id":1}`)})
	p.processJob(ctx, QueueCierres, string(job))

	n, err := rdb.ZCard(ctx, RetryKey).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	moved, err := requeueDue(ctx, rdb, time.Now())
	require.NoError(t, err)
	assert.Zero(t, moved, "not due yet")

	moved, err = requeueDue(ctx, rdb, time.Now().Add(computeRetryBackoff(1)+time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	raw, err := rdb.RPop(ctx, QueueCierres).Result()
	require.NoError(t, err)
	var requeued Job
	require.NoError(t, json.Unmarshal([]byte(raw), &requeued))
	assert.Equal(t, "j1", requeued.ID)
	assert.Equal(t, 1, requeued.Attempts)
}

func TestPool_DLQ(t *testing.T) {
	rdb := redisClient(t)
	ctx := context.Background()

	permanent := &recorder{err: ErrPermanent}
	flaky := &recorder{err: errors.New("smtp down")}
	p := NewPool(rdb, 1, map[string]Processor{QueueTickets: permanent, QueueEmail: flaky})

	job, _ := json.Marshal(Job{ID: "a", Type: "ticket", Payload: json.RawMessage(`{"venta_id":1}`)})
	p.processJob(ctx, QueueTickets, string(job))

	job, _ = json.Marshal(Job{ID: "b", Type: "email", Payload: json.RawMessage(`{}`), Attempts: MaxAttempts - 1})
	p.processJob(ctx, QueueEmail, string(job))

	p.processJob(ctx, QueueEmail, "not json")

	n, err := DLQLength(ctx, rdb, QueueTickets)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	entries, err := DLQEntries(ctx, rdb, QueueEmail, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0].Motivo, "undecodable")
	assert.Equal(t, MaxAttempts, entries[1].Attempts)
	assert.Equal(t, "email", entries[1].Type)
	assert.Equal(t, "b", entries[1].ID)

	retries, err := rdb.ZCard(ctx, RetryKey).Result()
	require.NoError(t, err)
	assert.Zero(t, retries)

	// the undecodable entry has no type and is dropped
	moved, err := ReplayDLQ(ctx, rdb, QueueEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	n, err = DLQLength(ctx, rdb, QueueEmail)
	require.NoError(t, err)
	assert.Zero(t, n)

	raw, err := rdb.RPop(ctx, QueueEmail).Result()
	require.NoError(t, err)
	var replayed Job
	require.NoError(t, json.Unmarshal([]byte(raw), &replayed))
	assert.Equal(t, "b", replayed.ID)
	assert.Zero(t, replayed.Attempts)
}
