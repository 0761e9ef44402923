package batch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/docgate/docgate/constants"
	"github.com/docgate/docgate/internal/common"
	"github.com/docgate/docgate/internal/entity"
)

// ErrQueueClosed is returned by Enqueue once Shutdown has begun.
var ErrQueueClosed = errors.New("batch queue closed")

// Runner is the per-document work the queue drains into. *pipeline.Processor
// satisfies it.
type Runner interface {
	Process(ctx context.Context, raw *entity.RawDocument) *entity.ProcessingResult
}

// Job is one document queued for a batch run.
type Job struct {
	Doc         *entity.RawDocument
	SubmittedAt time.Time
}

// Queue fans documents out to a bounded pool of workers, each running the
// full pipeline. A failed document is recorded like any other outcome; the
// batch always drains.
type Queue struct {
	proc    Runner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	quit chan struct{}
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	senders sync.WaitGroup
	results []*entity.ProcessingResult
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

// WithDocumentTimeout bounds how long one document may spend in the
// pipeline, external calls included.
func WithDocumentTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc Runner, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
		quit:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("batch.worker.start", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := common.WithTimeout(context.Background(), q.timeout)
					res := q.proc.Process(ctx, job.Doc)
					cancel()

					q.record(res)

					wait := int64(0)
					if !job.SubmittedAt.IsZero() {
						wait = time.Since(job.SubmittedAt).Milliseconds() - res.Meta.ElapsedMS
					}
					if res.Status == constants.StatusError {
						q.logger.Error("batch.doc.failed",
							"worker_id", workerID,
							"file", job.Doc.Filename,
							"reason", res.Reason)
					} else {
						q.logger.Info("batch.doc.done",
							"worker_id", workerID,
							"file", job.Doc.Filename,
							"status", res.Status,
							"doc_type", res.DocumentType,
							"wait_ms", wait)
					}
				}

				q.logger.Debug("batch.worker.stop", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) record(res *entity.ProcessingResult) {
	q.mu.Lock()
	q.results = append(q.results, res)
	q.mu.Unlock()
}

// Enqueue submits one document. It blocks when the queue is full and returns
// ctx's error if the caller gives up waiting, or ErrQueueClosed once Shutdown
// begins. The blocking send happens outside the mutex: workers take the same
// lock in record() between jobs, so a send under the lock starves the pool
// the moment the channel fills.
func (q *Queue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.senders.Add(1)
	q.mu.Unlock()
	defer q.senders.Done()

	select {
	case q.ch <- job:
		return nil
	default:
	}

	q.logger.Warn("batch.queue.full", "file", job.Doc.Filename)
	select {
	case q.ch <- job:
		return nil
	case <-q.quit:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for in-flight documents, giving up when
// ctx expires.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	// Release blocked senders, then wait for them before closing the channel
	// so no send can race the close.
	close(q.quit)
	q.senders.Wait()
	close(q.ch)

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("batch.shutdown.interrupted")
	case <-done:
		q.logger.Info("batch.finished", "documents", len(q.Results()))
	}
}

// Results returns a snapshot of every terminal result recorded so far, in
// completion order.
func (q *Queue) Results() []*entity.ProcessingResult {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*entity.ProcessingResult, len(q.results))
	copy(out, q.results)
	return out
}
