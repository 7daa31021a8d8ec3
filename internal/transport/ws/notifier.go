package ws

import (
	"log"

	"github.com/nvukovic/memberhub/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
// Events fan out to exactly the two participants of the affected row;
// the filter lives here, server-side, not in the clients.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyMessageInserted(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageNew, MessagePayload{Message: *msg})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.DeliverToMembers(evt, msg.SenderID, msg.RecipientID)
}

func (n *HubNotifier) NotifyMessageRead(msg *domain.Message) {
	evt, err := NewEvent(EventTypeMessageRead, MessageReadPayload{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		ReadAt:      msg.ReadAt,
	})
	if err != nil {
		log.Printf("ws notifier: marshal error: %v", err)
		return
	}
	n.hub.DeliverToMembers(evt, msg.SenderID, msg.RecipientID)
}
