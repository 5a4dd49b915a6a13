// Package notify queues welcome emails for later asynchronous delivery.
// Delivery itself happens in a separate worker that consumes the queue.
package notify

import (
	"encoding/json"
	"time"

	"github.com/ovaphlow/pitchfork/service-user-go/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-user-go/pkg/utilities"
)

// KindWelcome marks a welcome email job.
const KindWelcome = "welcome"

// Job is the queued payload. One job is produced per destination address.
type Job struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	To           string    `json:"to"`
	UserID       int64     `json:"user_id"`
	UserFullName string    `json:"user_full_name"`
	QueuedAt     time.Time `json:"queued_at"`
}

// NewWelcomeJob builds the welcome job for address to of u.
func NewWelcomeJob(to string, u *entity.User) Job {
	return Job{
		ID:           utilities.NewSnowflakeID(),
		Kind:         KindWelcome,
		To:           to,
		UserID:       u.ID,
		UserFullName: u.FullName(),
		QueuedAt:     time.Now().UTC(),
	}
}

func (j Job) encode() ([]byte, error) {
	return json.Marshal(j)
}
