package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/inkpress/cms-backend/internal/core/domain"
	"github.com/inkpress/cms-backend/internal/core/ports"
	"github.com/inkpress/cms-backend/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	jobTimeout     = 10 * time.Second
)

// PostSource loads the current state of a post for indexing.
type PostSource interface {
	FindByID(ctx context.Context, id string) (*domain.Post, error)
}

// Dispatcher routes index jobs to a fixed set of workers using consistent
// hashing on the post ID, so changes to one post are applied in order.
type Dispatcher struct {
	workers []chan ports.IndexJob
	posts   PostSource
	indexer ports.PostIndexer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, posts PostSource, indexer ports.PostIndexer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.IndexJob, numWorkers),
		posts:   posts,
		indexer: indexer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.IndexJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands job to the worker responsible for its post. It never blocks
// the request path: when that worker's buffer is full the job is dropped and
// the post is picked up again on its next change.
func (d *Dispatcher) Enqueue(job ports.IndexJob) {
	idx := d.shardIndex(job.PostID)
	select {
	case d.workers[idx] <- job:
		metrics.IndexQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.IndexJobsTotal.WithLabelValues(string(job.Op), "dropped").Inc()
		d.log.Warn().Str("post_id", job.PostID).Str("op", string(job.Op)).Msg("index queue full, job dropped")
	}
}

// shardIndex maps a post ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(postID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(postID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.IndexJob) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			metrics.IndexQueueDepth.WithLabelValues(workerID).Dec()

			start := time.Now()
			err := d.process(ctx, job)
			metrics.IndexJobDuration.WithLabelValues(string(job.Op)).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.IndexJobsTotal.WithLabelValues(string(job.Op), "error").Inc()
				d.log.Error().Err(err).
					Str("post_id", job.PostID).
					Str("op", string(job.Op)).
					Int("worker_id", id).
					Msg("index job failed")
				continue
			}
			metrics.IndexJobsTotal.WithLabelValues(string(job.Op), "success").Inc()
		}
	}
}

// process applies one job. An upsert for a post that no longer exists turns
// into a delete.
func (d *Dispatcher) process(ctx context.Context, job ports.IndexJob) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	if job.Op == ports.IndexDelete {
		return d.indexer.DeletePost(ctx, job.PostID)
	}

	post, err := d.posts.FindByID(ctx, job.PostID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return d.indexer.DeletePost(ctx, job.PostID)
		}
		return err
	}
	return d.indexer.IndexPost(ctx, post)
}
