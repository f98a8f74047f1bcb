package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/cineapp/catalog-api/internal/api/metrics"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

type mailJob struct {
	toEmail  string
	resetURL string
}

// MailDispatcher delivers outbound mail asynchronously on a fixed set of
// workers, sharded by recipient so mail to the same address is sent in order.
// It implements ports.Mailer, so callers enqueue without blocking on SES.
type MailDispatcher struct {
	workers []chan mailJob
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewMailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan mailJob, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan mailJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// SendPasswordReset enqueues the message for its recipient's worker. The
// call is non-blocking up to channelBuffer capacity.
func (d *MailDispatcher) SendPasswordReset(_ context.Context, toEmail, resetURL string) error {
	idx := d.shardIndex(toEmail)
	d.workers[idx] <- mailJob{toEmail: toEmail, resetURL: resetURL}
	metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(toEmail string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(toEmail))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan mailJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			if err := d.mailer.SendPasswordReset(ctx, job.toEmail, job.resetURL); err != nil {
				d.log.Error().Err(err).
					Str("to", job.toEmail).
					Int("worker_id", id).
					Msg("mail delivery failed")
			}
			metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
