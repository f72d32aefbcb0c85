package board

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/javiermolinar/shcadule/internal/weekid"
)

// Job asks the generator to run AutoGenerateFutureWeeks.
type Job struct {
	UserID     string
	Template   weekid.ID
	WeeksAhead int
}

func (j Job) key() string {
	return j.UserID + "/" + string(j.Template)
}

type queuedJob struct {
	ctx context.Context
	job Job
}

// Generator runs generation jobs on a small worker pool, detached from the
// request that queued them. Failures are logged and never returned to the caller.
type Generator struct {
	run     func(context.Context, Job) (GenerateResult, error)
	logger  *zap.Logger
	timeout time.Duration

	jobs    chan queuedJob
	group   singleflight.Group
	pending sync.WaitGroup
	workers sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func newGenerator(run func(context.Context, Job) (GenerateResult, error), logger *zap.Logger, cfg generatorConfig) *Generator {
	g := &Generator{
		run:     run,
		logger:  logger,
		timeout: cfg.timeout,
		jobs:    make(chan queuedJob, cfg.queueSize),
	}
	for range cfg.workers {
		g.workers.Add(1)
		go g.loop()
	}
	return g
}

// Enqueue queues job without blocking. It reports false if the job was dropped
// because the queue is full or the generator is closed. The job keeps ctx's
// values but not its deadline or cancellation.
func (g *Generator) Enqueue(ctx context.Context, job Job) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	log := g.logger.With(zap.String("user", job.UserID), zap.Stringer("template", job.Template))
	if g.closed {
		log.Warn("generator closed, dropping job")
		return false
	}

	g.pending.Add(1)
	select {
	case g.jobs <- queuedJob{ctx: context.WithoutCancel(ctx), job: job}:
		log.Debug("generation job queued")
		return true
	default:
		g.pending.Done()
		log.Warn("generation queue full, dropping job")
		return false
	}
}

// Wait blocks until every queued job has finished.
func (g *Generator) Wait() {
	g.pending.Wait()
}

// Close stops accepting jobs, lets queued jobs finish, and stops the workers.
func (g *Generator) Close() {
	g.mu.Lock()
	if !g.closed {
		g.closed = true
		close(g.jobs)
	}
	g.mu.Unlock()

	g.workers.Wait()
}

func (g *Generator) loop() {
	defer g.workers.Done()
	for q := range g.jobs {
		g.process(q)
	}
}

func (g *Generator) process(q queuedJob) {
	defer g.pending.Done()

	log := g.logger.With(zap.String("user", q.job.UserID), zap.Stringer("template", q.job.Template))

	v, err, shared := g.group.Do(q.job.key(), func() (any, error) {
		ctx, cancel := context.WithTimeout(q.ctx, g.timeout)
		defer cancel()
		res, err := g.run(ctx, q.job)
		return res, err
	})
	if err != nil {
		log.Error("generating future weeks failed", zap.Error(err))
		return
	}

	res := v.(GenerateResult)
	log.Info("generation job finished",
		zap.Stringer("result", res), zap.Bool("shared", shared))
}

// runJob is the Service's generation entry point for the Generator.
func (s *Service) runJob(ctx context.Context, job Job) (GenerateResult, error) {
	return s.AutoGenerateFutureWeeks(ctx, job.UserID, job.Template, job.WeeksAhead)
}
