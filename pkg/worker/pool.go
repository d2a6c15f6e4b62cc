// Package worker provides an asynchronous worker pool for persisting
// finished chat turns into a conversation store.
//
// The pool decouples disk writes and embedding generation from the chat
// loop so the terminal stays responsive while a turn is recorded.
package worker

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/hearthchat/hearth/pkg/memory"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool: one completed exchange to
// record and persist.
type Job struct {
	// Backend identifies which session the turn belongs to.
	Backend string

	// UserContent is the user's message; empty when only the assistant
	// turn is being recorded.
	UserContent string

	// AssistantContent is the assistant's finished response.
	AssistantContent string

	// Persist writes the session to disk after the turn is recorded.
	Persist bool
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Manager is the session manager the turns are recorded into.
	Manager *memory.Manager

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes turn-recording jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Manager == nil {
		return nil, fmt.Errorf("worker pool requires a session manager")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			zap.String("backend", job.Backend),
			zap.Bool("persist", job.Persist),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("backend", job.Backend),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the chat loop has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("turn worker stopped", zap.Uint("worker_id", id))
}

// processJob records the exchange in the backend's session, embeddings
// included, and optionally persists the conversation file. Errors are logged
// but not surfaced; recording is best-effort off the chat hot path.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if job.UserContent != "" {
		if err := p.config.Manager.AddMessage(ctx, job.Backend, memory.RoleUser, job.UserContent); err != nil {
			p.logger.Error("async turn recording failed",
				zap.String("backend", job.Backend),
				zap.String("role", memory.RoleUser),
				zap.Error(err),
			)
			return
		}
	}

	if job.AssistantContent != "" {
		if err := p.config.Manager.AddMessage(ctx, job.Backend, memory.RoleAssistant, job.AssistantContent); err != nil {
			p.logger.Error("async turn recording failed",
				zap.String("backend", job.Backend),
				zap.String("role", memory.RoleAssistant),
				zap.Error(err),
			)
			return
		}
	}

	if job.Persist {
		if err := p.config.Manager.Save(job.Backend); err != nil {
			p.logger.Warn("conversation save failed",
				zap.String("backend", job.Backend),
				zap.Error(err),
			)
			return
		}
	}

	p.logger.Info("turn recorded",
		zap.String("backend", job.Backend),
		zap.Bool("persisted", job.Persist),
	)
}
