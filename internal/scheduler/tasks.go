package scheduler

import (
	"encoding/json"
	"time"

	"terrasite_backend/internal/leads/domain"

	"github.com/hibiken/asynq"
)

const TaskLeadNotify = "leads.notify"

// leadNotifyTimeout covers every notifier of one lead.
const leadNotifyTimeout = 2 * time.Minute

type LeadNotifyPayload struct {
	Lead domain.Lead `json:"lead"`
}

// NewLeadNotifyTask builds a task that is attempted once. A failed
// notification is logged, never retried.
func NewLeadNotifyTask(payload LeadNotifyPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotify, data, asynq.MaxRetry(0), asynq.Timeout(leadNotifyTimeout)), nil
}

func ParseLeadNotifyPayload(task *asynq.Task) (LeadNotifyPayload, error) {
	var payload LeadNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadNotifyPayload{}, err
	}
	return payload, nil
}
