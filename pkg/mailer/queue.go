package mailer

import (
	"context"
)

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Queue hands jobs to the email worker instead of sending them inline.
// Templates are rendered by the worker.
type Queue struct {
	Publisher Publisher
}

func NewQueue(p Publisher) *Queue {
	return &Queue{Publisher: p}
}

func (q *Queue) Send(ctx context.Context, job EmailJob) error {
	return q.Publisher.PublishJSON(ctx, job)
}
