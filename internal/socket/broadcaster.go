package socket

import "github.com/Marga-Ghale/ora-crm-backend/internal/logger"

// Broadcaster provides high-level methods for broadcasting events
type Broadcaster struct {
	hub *Hub
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// Publish sends a change event to every connection of userID.
func (b *Broadcaster) Publish(userID string, msgType MessageType, payload interface{}) {
	b.hub.SendToUser(userID, msgType, payload)
}

// SendOverdueDigest tells a user how many of their tasks are past due.
func (b *Broadcaster) SendOverdueDigest(userID string, taskIDs []string) {
	if !b.hub.IsUserOnline(userID) {
		return
	}
	b.hub.SendToUser(userID, MessageTasksOverdue, map[string]interface{}{
		"count":   len(taskIDs),
		"taskIds": taskIDs,
	})
	logger.App().WithField("user_id", userID).Debugf("[Broadcaster] Overdue digest sent: %d tasks", len(taskIDs))
}
