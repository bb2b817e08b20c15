package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"joyeriapos/internal/service"
)

const (
	QueueTickets = "jobs:tickets"
	QueueEmail   = "jobs:email"
	QueueCierres = "jobs:cierres"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Queue    string          `json:"queue"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Processor handles the jobs of one queue. A returned error schedules a retry.
type Processor interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// ErrPermanent marks a failure that retrying cannot fix; the job goes
// straight to the DLQ.
var ErrPermanent = errors.New("worker: permanent failure")

// ── Dispatcher ────────────────────────────────────────────────────────────────

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

var _ service.Encolador = (*Dispatcher)(nil)

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EncolarTicket queues the PDF ticket of a sale.
func (d *Dispatcher) EncolarTicket(ctx context.Context, ventaID int64) error {
	return d.enqueue(ctx, QueueTickets, "ticket", TicketJobPayload{VentaID: ventaID})
}

// EncolarCierre queues the cash-close report of a session.
func (d *Dispatcher) EncolarCierre(ctx context.Context, sesionID int64) error {
	return d.enqueue(ctx, QueueCierres, "cierre", CierreJobPayload{SesionID: sesionID})
}

// EncolarEmail queues an e-mail with an optional PDF attachment.
func (d *Dispatcher) EncolarEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, "email", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, Job{ID: uuid.NewString(), Type: jobType, Queue: queue, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, job.Queue, encoded).Err()
}

// ── Pool ──────────────────────────────────────────────────────────────────────

// Pool runs N goroutines consuming every registered queue.
type Pool struct {
	rdb        *redis.Client
	size       int
	processors map[string]Processor
	wg         sync.WaitGroup
}

// NewPool builds a pool of size workers; processors is keyed by queue name.
func NewPool(rdb *redis.Client, size int, processors map[string]Processor) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{rdb: rdb, size: size, processors: processors}
}

// Start launches the workers. They stop when ctx is cancelled; Wait blocks
// until they have.
// Each goroutine blocks on BRPOP, so idle workers use no CPU.
func (p *Pool) Start(ctx context.Context) {
	queues := make([]string, 0, len(p.processors))
	for q := range p.processors {
		queues = append(queues, q)
	}
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id, queues)
		}(i)
	}
	log.Info().Int("workers", p.size).Strs("queues", queues).Msg("worker pool started")
}

func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	for {
		if ctx.Err() != nil {
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		}
		// Blocking pop: waits up to 5s then loops to check ctx
		result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				log.Warn().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
				time.Sleep(time.Second)
			}
			continue
		}
		if len(result) < 2 {
			continue
		}
		p.processJob(ctx, result[0], result[1])
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, Job{Queue: queue, Payload: quoted}, "undecodable job: "+err.Error())
		return
	}
	job.Queue = queue

	proc, ok := p.processors[queue]
	if !ok {
		SendToDLQ(ctx, p.rdb, job, "no processor for queue")
		return
	}

	job.Attempts++
	err := proc.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job done")
		return
	}
	if errors.Is(err, ErrPermanent) || job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, p.rdb, job, err.Error())
		return
	}
	scheduleRetry(ctx, p.rdb, job, err)
}
