package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"video-publisher/internal/queue"
)

type flakyConsumer struct {
	calls atomic.Int32
}

func (c *flakyConsumer) StartConsumer(ctx context.Context, _ string, _ queue.Handler) error {
	if c.calls.Add(1) < 3 {
		return errors.New("delivery channel closed")
	}
	<-ctx.Done()
	return nil
}

func TestPool_RestartsStoppedConsumer(t *testing.T) {
	c := &flakyConsumer{}
	p := NewPool(c, NewProcessor(nil, nil, nil, nil, nil), 1, zap.NewNop())
	p.restartDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return c.calls.Load() == 3 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(3), c.calls.Load())
}
