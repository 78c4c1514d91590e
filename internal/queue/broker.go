// Package queue is the RabbitMQ transport for publishing task messages.
//
// One Broker is created per process. It owns the connection and a shared
// channel used for declarations, publishing and inspection; consumers acquire
// their own channel so each can hold its own prefetch window.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"video-publisher/internal/entity"
)

var (
	ErrNotConnected     = errors.New("rabbitmq channel not initialized")
	ErrNotReady         = errors.New("rabbitmq not ready within timeout")
	ErrConnectExhausted = errors.New("rabbitmq connect attempts exhausted")
)

const publishTimeout = 5 * time.Second

type Stats struct {
	Pending    int `json:"pending"`
	Retry      int `json:"retry"`
	DeadLetter int `json:"deadLetter"`
}

type Broker struct {
	url    string
	dial   DialFunc
	logger *zap.Logger

	connectAttempts int
	connectBackoff  time.Duration
	readyPoll       time.Duration
	consumerWait    time.Duration
	consumerPoll    time.Duration

	mu   sync.RWMutex
	conn Connection
	ch   Channel

	// serializes use of the shared channel
	pubMu sync.Mutex
	ready atomic.Bool
}

type Option func(*Broker)

func WithDialer(d DialFunc) Option {
	return func(b *Broker) { b.dial = d }
}

// WithConnectRetry overrides the bounded connect policy (default 5 attempts, 2s apart).
func WithConnectRetry(attempts int, backoff time.Duration) Option {
	return func(b *Broker) {
		b.connectAttempts = attempts
		b.connectBackoff = backoff
	}
}

func WithPolling(readyPoll, consumerPoll, consumerWait time.Duration) Option {
	return func(b *Broker) {
		b.readyPoll = readyPoll
		b.consumerPoll = consumerPoll
		b.consumerWait = consumerWait
	}
}

func NewBroker(url string, logger *zap.Logger, opts ...Option) *Broker {
	b := &Broker{
		url:             url,
		dial:            DialAMQP,
		logger:          logger.Named("rabbitmq"),
		connectAttempts: 5,
		connectBackoff:  2 * time.Second,
		readyPoll:       100 * time.Millisecond,
		consumerWait:    10 * time.Second,
		consumerPoll:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.connectAttempts <= 0 {
		b.connectAttempts = 1
	}
	return b
}

// Start connects and declares the topology. A failure here is fatal for the
// publishing subsystem.
func (b *Broker) Start(ctx context.Context) error {
	if err := b.Connect(ctx); err != nil {
		return err
	}
	return b.SetupQueues(ctx)
}

// Connect dials the broker with a bounded number of fixed-backoff attempts.
func (b *Broker) Connect(ctx context.Context) error {
	var lastErr error

	for attempt := 1; attempt <= b.connectAttempts; attempt++ {
		b.logger.Info("connecting",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", b.connectAttempts),
		)

		conn, ch, err := b.open()
		if err == nil {
			b.mu.Lock()
			b.conn, b.ch = conn, ch
			b.mu.Unlock()

			b.watch(conn)
			b.logger.Info("connected")
			return nil
		}

		lastErr = err
		b.logger.Error("connect failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", b.connectAttempts),
			zap.Error(err),
		)

		if attempt == b.connectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.connectBackoff):
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrConnectExhausted, b.connectAttempts, lastErr)
}

func (b *Broker) open() (Connection, Channel, error) {
	conn, err := b.dial(b.url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return conn, ch, nil
}

// watch logs unexpected disconnects. It never terminates the process.
func (b *Broker) watch(conn Connection) {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		for err := range closed {
			b.logger.Error("connection error", zap.Error(err))
		}
		b.ready.Store(false)
		b.logger.Warn("connection closed")
	}()
}

// SetupQueues idempotently declares the main, dead-letter and retry queues.
func (b *Broker) SetupQueues(_ context.Context) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	for _, q := range Topology() {
		if _, err := ch.QueueDeclare(q.Name, true, false, false, false, q.Args); err != nil {
			b.logger.Error("queue declare failed", zap.String("queue", q.Name), zap.Error(err))
			return fmt.Errorf("declare queue %s: %w", q.Name, err)
		}
	}

	b.ready.Store(true)
	b.logger.Info("queues setup completed")
	return nil
}

// PublishTask places msg on the main queue as a persistent message.
func (b *Broker) PublishTask(ctx context.Context, msg entity.TaskMessage) error {
	if err := b.publish(ctx, MainQueue, msg.MessageID(), msg); err != nil {
		b.logger.Error("publish task failed",
			zap.String("task_id", msg.PublishingTaskID),
			zap.Error(err),
		)
		return err
	}
	b.logger.Info("published task", zap.String("task_id", msg.PublishingTaskID))
	return nil
}

// RetryTask places msg on the retry queue; it reappears on main after RetryDelay.
func (b *Broker) RetryTask(ctx context.Context, msg entity.TaskMessage) error {
	if err := b.publish(ctx, RetryQueue, msg.RetryMessageID(), msg); err != nil {
		b.logger.Error("retry task failed",
			zap.String("task_id", msg.PublishingTaskID),
			zap.Int("attempts", msg.Attempts),
			zap.Error(err),
		)
		return err
	}
	b.logger.Info("sent task to retry queue",
		zap.String("task_id", msg.PublishingTaskID),
		zap.Int("attempts", msg.Attempts),
	)
	return nil
}

func (b *Broker) publish(ctx context.Context, queueName, messageID string, msg entity.TaskMessage) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Now(),
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish to %s: %w", queueName, err)
	}
	return nil
}

func (b *Broker) Stats(_ context.Context) (Stats, error) {
	ch, err := b.channel()
	if err != nil {
		return Stats{}, err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	counts := make(map[string]int, 3)
	for _, q := range Topology() {
		info, err := ch.QueueDeclarePassive(q.Name, true, false, false, false, q.Args)
		if err != nil {
			b.logger.Error("queue inspect failed", zap.String("queue", q.Name), zap.Error(err))
			return Stats{}, fmt.Errorf("inspect queue %s: %w", q.Name, err)
		}
		counts[q.Name] = info.Messages
	}

	return Stats{
		Pending:    counts[MainQueue],
		Retry:      counts[RetryQueue],
		DeadLetter: counts[DeadLetterQueue],
	}, nil
}

func (b *Broker) Purge(_ context.Context) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}

	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	for _, name := range []string{MainQueue, RetryQueue, DeadLetterQueue} {
		if _, err := ch.QueuePurge(name, false); err != nil {
			return fmt.Errorf("purge queue %s: %w", name, err)
		}
	}
	b.logger.Info("all queues purged")
	return nil
}

func (b *Broker) IsReady() bool {
	return b.ready.Load()
}

func (b *Broker) IsHealthy() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conn != nil && b.ch != nil && !b.conn.IsClosed()
}

func (b *Broker) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return b.waitReady(ctx, timeout, b.readyPoll)
}

func (b *Broker) waitReady(ctx context.Context, timeout, poll time.Duration) error {
	deadline := time.Now().Add(timeout)
	for !b.IsReady() {
		if time.Now().After(deadline) {
			return ErrNotReady
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(poll):
		}
	}
	return nil
}

// Acquire opens a dedicated channel. The caller owns and closes it.
func (b *Broker) Acquire() (Channel, error) {
	b.mu.RLock()
	conn := b.conn
	b.mu.RUnlock()
	if conn == nil {
		return nil, ErrNotConnected
	}
	return conn.Channel()
}

func (b *Broker) Close() error {
	b.ready.Store(false)

	b.mu.Lock()
	ch, conn := b.ch, b.conn
	b.ch, b.conn = nil, nil
	b.mu.Unlock()

	var errs []error
	if ch != nil {
		errs = append(errs, ch.Close())
	}
	if conn != nil {
		errs = append(errs, conn.Close())
	}
	return errors.Join(errs...)
}

func (b *Broker) channel() (Channel, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.ch == nil {
		return nil, ErrNotConnected
	}
	return b.ch, nil
}
