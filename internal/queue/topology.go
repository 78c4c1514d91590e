package queue

import (
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	MainQueue       = "video-publish-tasks-queue"
	DeadLetterQueue = "video-publish-tasks-dlq"
	RetryQueue      = "video-publish-retry-queue"

	// RetryDelay is how long a message waits on the retry queue before returning to main.
	RetryDelay = 30 * time.Second
)

type QueueSpec struct {
	Name string
	Args amqp.Table
}

// Topology returns the three durable queues in declaration order.
//
// Rejected main-queue messages dead-letter through the default exchange into the DLQ.
// Retry-queue messages expire after RetryDelay and dead-letter back into main.
func Topology() []QueueSpec {
	return []QueueSpec{
		{
			Name: MainQueue,
			Args: amqp.Table{
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": DeadLetterQueue,
			},
		},
		{
			Name: DeadLetterQueue,
		},
		{
			Name: RetryQueue,
			Args: amqp.Table{
				"x-message-ttl":             int32(RetryDelay / time.Millisecond),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": MainQueue,
			},
		},
	}
}
