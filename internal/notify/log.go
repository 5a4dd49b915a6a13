package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
)

// LogQueue only logs jobs. Meant for local development without a broker.
type LogQueue struct {
	logger *zap.SugaredLogger
}

func NewLogQueue(logger *zap.SugaredLogger) *LogQueue {
	return &LogQueue{logger: logger}
}

func (q *LogQueue) Enqueue(_ context.Context, to string, u *entity.User) error {
	job := NewWelcomeJob(to, u)
	q.logger.Infow("welcome email job", "job_id", job.ID, "to", job.To, "user_id", job.UserID)
	return nil
}

func (q *LogQueue) Close() error { return nil }
