package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vistoria/inspection-api/internal/core/domain"
	"github.com/vistoria/inspection-api/internal/pkg/metrics"
)

const (
	defaultWorkers     = 8
	defaultMaxAttempts = 5
	channelBuffer      = 256
	baseBackoff        = 500 * time.Millisecond
	maxBackoff         = 30 * time.Second
)

// Handler applies one stored sync operation. A non-nil error asks for a
// retry; permanent failures are recorded by the handler and reported as nil.
type Handler interface {
	Process(ctx context.Context, id string) error
}

type job struct {
	id      string
	shard   string
	attempt int
}

// Dispatcher routes sync operations to a fixed set of workers using
// consistent hashing on the company id, so operations of one tenant start in
// submission order. A failed operation is retried after a backoff and rejoins
// the back of its worker's queue, behind operations submitted later.
type Dispatcher struct {
	workers     []chan job
	handler     Handler
	maxAttempts int
	log         zerolog.Logger

	mu  sync.RWMutex
	ctx context.Context
	wg  sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers, maxAttempts int, handler Handler, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	d := &Dispatcher{
		workers:     make([]chan job, numWorkers),
		handler:     handler,
		maxAttempts: maxAttempts,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan job, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()

	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue hands an operation to the worker of its company. It never blocks:
// when the worker channel is full the operation is offered again later.
func (d *Dispatcher) Enqueue(op *domain.SyncOperation) {
	d.push(job{id: op.ID, shard: op.CompanyID, attempt: 1})
}

func (d *Dispatcher) push(j job) {
	idx := d.shardIndex(j.shard)
	select {
	case d.workers[idx] <- j:
		metrics.SyncQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("sync_id", j.id).Int("worker_id", idx).Msg("sync worker queue full, deferring")
		d.later(j, baseBackoff)
	}
}

// later re-offers j after delay unless the dispatcher is shutting down.
func (d *Dispatcher) later(j job, delay time.Duration) {
	time.AfterFunc(delay, func() {
		d.mu.RLock()
		ctx := d.ctx
		d.mu.RUnlock()
		if ctx != nil && ctx.Err() != nil {
			return
		}
		d.push(j)
	})
}

// shardIndex maps a company id deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		return maxBackoff
	}
	delay := baseBackoff << (attempt - 1)
	if delay > maxBackoff {
		return maxBackoff
	}
	return delay
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan job) {
	defer d.wg.Done()
	label := strconv.Itoa(id)

	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-ch:
			if !ok {
				return
			}
			metrics.SyncQueueDepth.WithLabelValues(label).Set(float64(len(ch)))

			err := d.handler.Process(ctx, j.id)
			if err == nil {
				continue
			}
			log := d.log.With().Err(err).Str("sync_id", j.id).Int("worker_id", id).Int("attempt", j.attempt).Logger()
			if j.attempt >= d.maxAttempts {
				log.Error().Msg("sync operation abandoned after retries")
				continue
			}
			log.Warn().Msg("sync operation processing failed, retrying")
			j.attempt++
			d.later(j, backoff(j.attempt-1))
		}
	}
}
