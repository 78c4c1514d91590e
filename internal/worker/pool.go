package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"video-publisher/internal/queue"
)

// Consumer is the consuming side of the broker (implementation: queue.Broker).
type Consumer interface {
	StartConsumer(ctx context.Context, consumerTag string, handler queue.Handler) error
}

type Pool struct {
	consumer     Consumer
	processor    *Processor
	workers      int
	restartDelay time.Duration
	logger       *zap.Logger
}

func NewPool(consumer Consumer, processor *Processor, workers int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		consumer:     consumer,
		processor:    processor,
		workers:      workers,
		restartDelay: 5 * time.Second,
		logger:       logger.Named("pool"),
	}
}

// Run starts one consumer per worker, each holding its own prefetch=1
// channel, and blocks until ctx is cancelled. A consumer that stops with an
// error is restarted after a delay.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("worker pool started", zap.Int("workers", p.workers))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		tag := fmt.Sprintf("publisher-worker-%d", i+1)
		g.Go(func() error {
			p.consume(ctx, tag)
			return nil
		})
	}

	err := g.Wait()
	p.logger.Info("worker pool stopped")
	return err
}

func (p *Pool) consume(ctx context.Context, tag string) {
	log := p.logger.With(zap.String("consumer", tag))
	for {
		err := p.consumer.StartConsumer(ctx, tag, p.processor.Handle)
		if ctx.Err() != nil {
			return
		}
		log.Error("consumer stopped, restarting",
			zap.Duration("delay", p.restartDelay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.restartDelay):
		}
	}
}
