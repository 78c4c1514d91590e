// Package queuetest provides an in-memory AMQP server for exercising queue.Broker
// without a running RabbitMQ. It implements default-exchange routing, prefetch,
// manual acknowledgement and dead-letter routing on reject.
package queuetest

import (
	"context"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"video-publisher/internal/queue"
)

type fakeQueue struct {
	args amqp.Table
	msgs []amqp.Publishing
}

type unacked struct {
	queue string
	pub   amqp.Publishing
	ch    *Channel
}

type Server struct {
	mu sync.Mutex

	queues     map[string]*fakeQueue
	unacked    map[uint64]unacked
	nextTag    uint64
	acked      []amqp.Publishing
	dials      int
	failDials  int
	publishErr error
	conns      []*Conn
}

func NewServer() *Server {
	return &Server{
		queues:  map[string]*fakeQueue{},
		unacked: map[uint64]unacked{},
	}
}

// FailDials makes the next n dials fail.
func (s *Server) FailDials(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDials = n
}

// SetPublishError makes every publish fail with err (nil clears it).
func (s *Server) SetPublishError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishErr = err
}

func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

func (s *Server) Dial(string) (queue.Connection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dials++
	if s.failDials > 0 {
		s.failDials--
		return nil, errors.New("dial tcp: connection refused")
	}
	c := &Conn{s: s}
	s.conns = append(s.conns, c)
	return c, nil
}

// DropConnections simulates the broker closing every open connection with err.
func (s *Server) DropConnections(err *amqp.Error) {
	s.mu.Lock()
	conns := append([]*Conn(nil), s.conns...)
	s.mu.Unlock()

	for _, c := range conns {
		c.shutdown(err)
	}
}

func (s *Server) Declared(name string) (amqp.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[name]
	if !ok {
		return nil, false
	}
	return q.args, true
}

func (s *Server) Messages(name string) []amqp.Publishing {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[name]
	if !ok {
		return nil
	}
	return append([]amqp.Publishing(nil), q.msgs...)
}

// Acked returns every message acknowledged so far, in ack order.
func (s *Server) Acked() []amqp.Publishing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]amqp.Publishing(nil), s.acked...)
}

// Expire dead-letters every ready message on name, as a TTL expiry would.
func (s *Server) Expire(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.queues[name]
	if !ok {
		return
	}
	msgs := q.msgs
	q.msgs = nil
	for _, m := range msgs {
		s.deadLetterLocked(name, m)
	}
}

func (s *Server) deadLetterLocked(from string, pub amqp.Publishing) {
	q := s.queues[from]
	if q == nil {
		return
	}
	target, _ := q.args["x-dead-letter-routing-key"].(string)
	if dst, ok := s.queues[target]; ok {
		dst.msgs = append(dst.msgs, pub)
	}
}

type Conn struct {
	s *Server

	mu     sync.Mutex
	closed bool
	notify []chan *amqp.Error
	chans  []*Channel
}

func (c *Conn) Channel() (queue.Channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, amqp.ErrClosed
	}
	ch := &Channel{s: c.s, done: make(chan struct{})}
	c.chans = append(c.chans, ch)
	return ch, nil
}

func (c *Conn) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = append(c.notify, receiver)
	return receiver
}

func (c *Conn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) Close() error {
	c.shutdown(nil)
	return nil
}

func (c *Conn) shutdown(err *amqp.Error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	notify, chans := c.notify, c.chans
	c.notify, c.chans = nil, nil
	c.mu.Unlock()

	for _, ch := range chans {
		_ = ch.Close()
	}
	for _, n := range notify {
		if err != nil {
			n <- err
		}
		close(n)
	}
}

type Channel struct {
	s *Server

	// guarded by s.mu
	prefetch    int
	outstanding int
	closed      bool

	done chan struct{}
}

func (c *Channel) QueueDeclare(name string, _, _, _, _ bool, args amqp.Table) (amqp.Queue, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	q, ok := c.s.queues[name]
	if !ok {
		q = &fakeQueue{args: args}
		c.s.queues[name] = q
	}
	return amqp.Queue{Name: name, Messages: len(q.msgs)}, nil
}

func (c *Channel) QueueDeclarePassive(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	q, ok := c.s.queues[name]
	if !ok {
		return amqp.Queue{}, &amqp.Error{Code: amqp.NotFound, Reason: "NOT_FOUND - no queue '" + name + "'"}
	}
	return amqp.Queue{Name: name, Messages: len(q.msgs)}, nil
}

func (c *Channel) QueuePurge(name string, _ bool) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	q, ok := c.s.queues[name]
	if !ok {
		return 0, &amqp.Error{Code: amqp.NotFound, Reason: "NOT_FOUND"}
	}
	n := len(q.msgs)
	q.msgs = nil
	return n, nil
}

func (c *Channel) Qos(prefetchCount, _ int, _ bool) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.prefetch = prefetchCount
	return nil
}

func (c *Channel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	if c.s.publishErr != nil {
		return c.s.publishErr
	}
	if exchange != "" {
		return &amqp.Error{Code: amqp.NotFound, Reason: "NOT_FOUND - no exchange '" + exchange + "'"}
	}
	// unroutable messages on the default exchange are dropped
	if q, ok := c.s.queues[key]; ok {
		q.msgs = append(q.msgs, msg)
	}
	return nil
}

func (c *Channel) Consume(queueName, _ string, autoAck, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	c.s.mu.Lock()
	_, ok := c.s.queues[queueName]
	c.s.mu.Unlock()
	if !ok {
		return nil, &amqp.Error{Code: amqp.NotFound, Reason: "NOT_FOUND"}
	}

	out := make(chan amqp.Delivery)
	go c.dispatch(queueName, autoAck, out)
	return out, nil
}

func (c *Channel) dispatch(queueName string, autoAck bool, out chan<- amqp.Delivery) {
	defer close(out)
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
		}

		d, ok := c.next(queueName, autoAck)
		if !ok {
			continue
		}
		select {
		case out <- d:
		case <-c.done:
			return
		}
	}
}

func (c *Channel) next(queueName string, autoAck bool) (amqp.Delivery, bool) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.closed {
		return amqp.Delivery{}, false
	}
	if !autoAck && c.prefetch > 0 && c.outstanding >= c.prefetch {
		return amqp.Delivery{}, false
	}
	q := c.s.queues[queueName]
	if q == nil || len(q.msgs) == 0 {
		return amqp.Delivery{}, false
	}

	pub := q.msgs[0]
	q.msgs = q.msgs[1:]
	c.s.nextTag++
	tag := c.s.nextTag
	if !autoAck {
		c.outstanding++
		c.s.unacked[tag] = unacked{queue: queueName, pub: pub, ch: c}
	}

	return amqp.Delivery{
		Acknowledger: c,
		DeliveryTag:  tag,
		RoutingKey:   queueName,
		MessageId:    pub.MessageId,
		ContentType:  pub.ContentType,
		DeliveryMode: pub.DeliveryMode,
		Timestamp:    pub.Timestamp,
		Body:         pub.Body,
	}, true
}

func (c *Channel) Ack(tag uint64, _ bool) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	u, ok := c.settleLocked(tag)
	if !ok {
		return errors.New("unknown delivery tag")
	}
	c.s.acked = append(c.s.acked, u.pub)
	return nil
}

func (c *Channel) Nack(tag uint64, _ bool, requeue bool) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	u, ok := c.settleLocked(tag)
	if !ok {
		return errors.New("unknown delivery tag")
	}
	if requeue {
		q := c.s.queues[u.queue]
		q.msgs = append([]amqp.Publishing{u.pub}, q.msgs...)
		return nil
	}
	c.s.deadLetterLocked(u.queue, u.pub)
	return nil
}

func (c *Channel) Reject(tag uint64, requeue bool) error {
	return c.Nack(tag, false, requeue)
}

func (c *Channel) settleLocked(tag uint64) (unacked, bool) {
	u, ok := c.s.unacked[tag]
	if !ok || u.ch != c {
		return unacked{}, false
	}
	delete(c.s.unacked, tag)
	c.outstanding--
	return u, true
}

// Close requeues this channel's unacknowledged deliveries, as the broker would.
func (c *Channel) Close() error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	for tag, u := range c.s.unacked {
		if u.ch != c {
			continue
		}
		delete(c.s.unacked, tag)
		if q := c.s.queues[u.queue]; q != nil {
			q.msgs = append([]amqp.Publishing{u.pub}, q.msgs...)
		}
	}
	c.outstanding = 0
	return nil
}
