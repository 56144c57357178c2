package common

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"qms/src/lib"

	"github.com/google/uuid"
)

const (
	QUEUE_EVENT_JOINED   = "joined"
	QUEUE_EVENT_SERVING  = "serving"
	QUEUE_EVENT_WAITING  = "waiting"
	QUEUE_EVENT_COMPLETE = "complete"
	QUEUE_EVENT_PROMOTED = "promoted"
)

// QueueEvent is the payload fanned out on the per-service redis channel.
// Delivery is best-effort; the allocator never waits on subscribers.
type QueueEvent struct {
	EventID     string `json:"event_id"`
	Type        string `json:"type"`
	ServiceID   uint   `json:"service_id"`
	EntryID     uint   `json:"entry_id"`
	TokenNumber uint   `json:"token_number"`
	GroupSize   uint   `json:"group_size,omitempty"`
}

func queueChannel(serviceID uint) string {
	return fmt.Sprintf("queue:%d", serviceID)
}

// PublishQueueEvent announces a queue transition to any listening delivery
// collaborator (socket gateway, push relay). Failures are logged and
// swallowed: notification delivery is not part of the admission contract.
func PublishQueueEvent(eventType string, serviceID, entryID, tokenNumber, groupSize uint) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	event := QueueEvent{
		EventID:     uuid.NewString(),
		Type:        eventType,
		ServiceID:   serviceID,
		EntryID:     entryID,
		TokenNumber: tokenNumber,
		GroupSize:   groupSize,
	}
	payload, err := json.Marshal(&event)
	if err != nil {
		log.Printf("[queue-events] Error serializing event: %s\n", err.Error())
		return
	}
	if err := rd.Publish(context.Background(), queueChannel(serviceID), payload).Err(); err != nil {
		log.Printf("[queue-events] Error publishing %s for service [%d]: %s\n", eventType, serviceID, err.Error())
	}
}
