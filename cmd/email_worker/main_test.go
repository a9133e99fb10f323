package main

import (
	"context"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
)

type ackLog struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackLog) Ack(uint64, bool) error {
	a.acked = true
	return nil
}

func (a *ackLog) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func (a *ackLog) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

type stubSender struct {
	err  error
	sent []mailer.EmailJob
}

func (s *stubSender) Send(_ context.Context, job mailer.EmailJob) error {
	s.sent = append(s.sent, job)
	return s.err
}

func delivery(body string, redelivered bool) (amqp.Delivery, *ackLog) {
	acks := &ackLog{}
	return amqp.Delivery{Acknowledger: acks, Body: []byte(body), Redelivered: redelivered}, acks
}

func TestHandle(t *testing.T) {
	logger := helpers.NewNopLogger()
	job := `{"to":"john@gmail.com","template":"reset_password","data":{"ResetURL":"http://x/y"}}`

	t.Run("acks sent mail", func(t *testing.T) {
		s := &stubSender{}
		msg, acks := delivery(job, false)
		handle(logger, s, msg)
		assert.True(t, acks.acked)
		assert.Len(t, s.sent, 1)
		assert.Equal(t, "john@gmail.com", s.sent[0].To)
		assert.Equal(t, "http://x/y", s.sent[0].Data["ResetURL"])
	})

	t.Run("drops malformed jobs", func(t *testing.T) {
		s := &stubSender{}
		msg, acks := delivery("{", false)
		handle(logger, s, msg)
		assert.True(t, acks.nacked)
		assert.False(t, acks.requeue)
		assert.Empty(t, s.sent)
	})

	t.Run("requeues a first failure only", func(t *testing.T) {
		s := &stubSender{err: errors.New("mailgun down")}
		msg, acks := delivery(job, false)
		handle(logger, s, msg)
		assert.True(t, acks.nacked)
		assert.True(t, acks.requeue)

		msg, acks = delivery(job, true)
		handle(logger, s, msg)
		assert.True(t, acks.nacked)
		assert.False(t, acks.requeue)
	})
}
