package assets

import (
	"context"
	"log/slog"
	"sync"

	"ark-render/internal/config"
	"ark-render/internal/graphics/renderer"
)

// DecodeJob asks the pool for one file. The result goes to Result.
type DecodeJob struct {
	Path   string
	Result chan<- DecodeResult
}

type DecodeResult struct {
	Path   string
	Bitmap *renderer.Bitmap
	Err    error
}

// Pool streams bitmap decodes on a fixed set of goroutines, for loaders
// that hand bitmaps to textures as they arrive.
type Pool struct {
	root   string
	jobs   chan DecodeJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool starts config.GetDecodeWorkers workers reading from a queue of
// queueSize jobs.
func NewPool(root string, queueSize int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		root:   root,
		jobs:   make(chan DecodeJob, queueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	workers := config.GetDecodeWorkers()
	for range workers {
		p.wg.Add(1)
		go p.worker()
	}
	slog.Debug("decode pool started", "workers", workers, "queue", queueSize)
	return p
}

// Submit queues job, returning false when the queue is full.
func (p *Pool) Submit(job DecodeJob) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// SubmitBlocking waits for queue space or shutdown.
func (p *Pool) SubmitBlocking(job DecodeJob) {
	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobs:
			b, err := DecodeFile(p.root, job.Path, config.GetMaxTextureSize())
			if err != nil {
				slog.Warn("decode failed", "path", job.Path, "err", err)
			}
			select {
			case job.Result <- DecodeResult{Path: job.Path, Bitmap: b, Err: err}:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

// Shutdown stops the workers; queued jobs are dropped.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

func (p *Pool) QueueLength() int {
	return len(p.jobs)
}
