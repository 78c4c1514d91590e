package worker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"video-publisher/internal/entity"
	"video-publisher/internal/queue"
	"video-publisher/internal/queue/queuetest"
	"video-publisher/internal/worker"
)

func TestPool_ConsumesFromBroker(t *testing.T) {
	srv := queuetest.NewServer()
	broker := queue.NewBroker("amqp://localhost:5672", zaptest.NewLogger(t),
		queue.WithDialer(srv.Dial),
		queue.WithPolling(time.Millisecond, time.Millisecond, time.Second),
	)
	t.Cleanup(func() { _ = broker.Close() })
	require.NoError(t, broker.Start(context.Background()))

	ok := newHarness(entity.TaskPending, entity.PlatformYouTube)
	ok.register(entity.PlatformYouTube, worker.UploadResult{PlatformPostID: "yt-1"}, nil)
	p := worker.NewProcessor(ok.repo, fakeTokens{token: "t"}, broker, ok.registry, zaptest.NewLogger(t))

	require.NoError(t, broker.PublishTask(context.Background(), ok.msg(0)))
	// unknown task: dead-lettered
	require.NoError(t, broker.PublishTask(context.Background(), entity.TaskMessage{PublishingTaskID: "7f8a3c0e-0000-4000-8000-000000000000"}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.NewPool(broker, p, 2, zaptest.NewLogger(t)).Run(ctx) }()

	require.Eventually(t, func() bool {
		return ok.task().Status == entity.TaskPublished && len(srv.Messages(queue.DeadLetterQueue)) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, srv.Acked(), 1)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}

func TestPool_ShutdownDuringUploadRequeuesTask(t *testing.T) {
	srv := queuetest.NewServer()
	broker := queue.NewBroker("amqp://localhost:5672", zaptest.NewLogger(t),
		queue.WithDialer(srv.Dial),
		queue.WithPolling(time.Millisecond, time.Millisecond, time.Second),
	)
	t.Cleanup(func() { _ = broker.Close() })
	require.NoError(t, broker.Start(context.Background()))

	h := newHarness(entity.TaskPending, entity.PlatformYouTube)
	uploading := make(chan struct{})
	h.registry.Register(entity.PlatformYouTube, worker.UploaderFunc(func(ctx context.Context, _ worker.UploadRequest) (worker.UploadResult, error) {
		close(uploading)
		<-ctx.Done()
		return worker.UploadResult{}, ctx.Err()
	}))
	p := worker.NewProcessor(h.repo, fakeTokens{token: "t"}, broker, h.registry, zaptest.NewLogger(t))

	require.NoError(t, broker.PublishTask(context.Background(), h.msg(0)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.NewPool(broker, p, 1, zaptest.NewLogger(t)).Run(ctx) }()

	select {
	case <-uploading:
	case <-time.After(2 * time.Second):
		t.Fatal("upload did not start")
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}

	assert.Equal(t, entity.TaskPending, h.task().Status)
	assert.Empty(t, srv.Messages(queue.DeadLetterQueue))
	assert.Len(t, srv.Messages(queue.MainQueue), 1)
	assert.Empty(t, h.retrier.msgs)
}
