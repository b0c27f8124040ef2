package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arunvm123/ticketavailability/ticket-service/model"
	"github.com/arunvm123/ticketavailability/ticket-service/pkg/logger"
	"github.com/arunvm123/ticketavailability/ticket-service/repository"
	"github.com/segmentio/kafka-go"
)

const (
	shutdownTimeout = 30 * time.Second
	metricsInterval = 30 * time.Second
	readyTimeout    = 5 * time.Second
)

// Pool for decoded lookup events
var lookupEventPool = sync.Pool{
	New: func() interface{} {
		return &model.LookupEvent{}
	},
}

// resetLookupEvent clears a lookup event for reuse
func resetLookupEvent(e *model.LookupEvent) {
	e.LookupID = ""
	e.EventID = 0
	e.Succeeded = false
	e.StatusCode = 0
	e.TicketCount = 0
	e.SectionIDs = nil
	e.ErrorMessage = ""
	e.DurationMs = 0
	e.RequestedAt = time.Time{}
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type LookupProcessor struct {
	repo     repository.LookupRepository
	consumer messageReader
	l        logger.Logger

	// Worker pool for managing goroutines
	workerPool chan chan kafka.Message
	workers    []*LookupWorker

	// Metrics
	processedCount int64
	failedCount    int64
	activeWorkers  int64
}

type LookupWorker struct {
	id         int
	processor  *LookupProcessor
	jobChannel chan kafka.Message
	workerPool chan chan kafka.Message
	quit       chan struct{}
}

func NewLookupProcessor(repo repository.LookupRepository, consumer messageReader, maxWorkers int, l logger.Logger) *LookupProcessor {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	processor := &LookupProcessor{
		repo:       repo,
		consumer:   consumer,
		l:          l,
		workerPool: make(chan chan kafka.Message, maxWorkers),
		workers:    make([]*LookupWorker, maxWorkers),
	}

	for i := 0; i < maxWorkers; i++ {
		processor.workers[i] = &LookupWorker{
			id:         i,
			processor:  processor,
			jobChannel: make(chan kafka.Message),
			workerPool: processor.workerPool,
			quit:       make(chan struct{}),
		}
	}

	return processor
}

// Start consumes lookup events until ctx is cancelled. It refuses to consume
// while the lookup store is unreachable.
func (p *LookupProcessor) Start(ctx context.Context) error {
	if err := p.checkReady(ctx); err != nil {
		return err
	}

	p.l.Infof(ctx, "Starting lookup processor with %d workers", len(p.workers))

	for _, worker := range p.workers {
		worker.start(ctx)
	}

	go p.reportMetrics(ctx)

	for {
		msg, err := p.consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.shutdown(ctx)
				return ctx.Err()
			}
			p.l.Errorf(ctx, "Error reading message: %v", err)
			continue
		}

		// Blocks while all workers are busy
		select {
		case jobChannel := <-p.workerPool:
			jobChannel <- msg
		case <-ctx.Done():
			p.shutdown(ctx)
			return ctx.Err()
		}
	}
}

func (p *LookupProcessor) checkReady(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	if err := p.repo.Ping(pingCtx); err != nil {
		return fmt.Errorf("lookup store not ready: %w", err)
	}

	return nil
}

func (w *LookupWorker) start(ctx context.Context) {
	go func() {
		for {
			// Register this worker in the pool
			select {
			case w.workerPool <- w.jobChannel:
			case <-w.quit:
				return
			}

			select {
			case job := <-w.jobChannel:
				atomic.AddInt64(&w.processor.activeWorkers, 1)

				if err := w.processor.processLookup(ctx, job); err != nil {
					atomic.AddInt64(&w.processor.failedCount, 1)
					w.processor.l.Warnf(ctx, "Worker %d skipped message at offset %d: %v", w.id, job.Offset, err)
				}

				atomic.AddInt64(&w.processor.processedCount, 1)
				atomic.AddInt64(&w.processor.activeWorkers, -1)

			case <-w.quit:
				return
			}
		}
	}()
}

func (w *LookupWorker) stop() {
	close(w.quit)
}

// shutdown stops all workers and waits for in-flight lookups
func (p *LookupProcessor) shutdown(ctx context.Context) {
	p.l.Info(ctx, "Shutting down lookup processor workers")

	for _, worker := range p.workers {
		worker.stop()
	}

	timeout := time.After(shutdownTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			p.l.Warn(ctx, "Shutdown timeout reached, forcing exit")
			return
		case <-ticker.C:
			if atomic.LoadInt64(&p.activeWorkers) == 0 {
				p.l.Info(ctx, "All workers finished gracefully")
				return
			}
		}
	}
}

func (p *LookupProcessor) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.l.Infof(ctx, "Lookup Processor Metrics - Processed: %d, Failed: %d, Active Workers: %d",
				atomic.LoadInt64(&p.processedCount),
				atomic.LoadInt64(&p.failedCount),
				atomic.LoadInt64(&p.activeWorkers))
		}
	}
}

// processLookup stores a single lookup event
func (p *LookupProcessor) processLookup(ctx context.Context, msg kafka.Message) error {
	event := lookupEventPool.Get().(*model.LookupEvent)
	defer func() {
		resetLookupEvent(event)
		lookupEventPool.Put(event)
	}()

	if err := json.Unmarshal(msg.Value, event); err != nil {
		return fmt.Errorf("failed to unmarshal lookup event: %w", err)
	}

	if event.EventID < 1 {
		return fmt.Errorf("lookup %s has invalid event id %d", event.LookupID, event.EventID)
	}

	lookup, err := p.repo.CreateLookup(event.ToCreateLookupRequest())
	if err != nil {
		return err
	}

	p.l.Debugf(ctx, "Stored lookup %s for event %d", lookup.ID, lookup.EventID)
	return nil
}
