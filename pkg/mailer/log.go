package mailer

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Log writes rendered mail to the logger. Used in development when no
// transport is configured.
type Log struct {
	Logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log {
	return &Log{Logger: logger}
}

func (l *Log) Send(_ context.Context, job EmailJob) error {
	if err := job.Render(); err != nil {
		return err
	}
	l.Logger.WithFields(logrus.Fields{
		"to":      job.To,
		"subject": job.Subject,
	}).Info("email (log transport)\n" + job.Text)
	return nil
}
