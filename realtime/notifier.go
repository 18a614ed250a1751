package realtime

// RatingNotifier адаптирует хаб под services.Notifier.
type RatingNotifier struct {
	hub *Hub
}

func NewRatingNotifier(hub *Hub) *RatingNotifier {
	return &RatingNotifier{hub: hub}
}

func (n *RatingNotifier) RatingResultsUpdated(ratingID int) {
	room := RatingRoom(ratingID)
	n.hub.BroadcastToRoom(room, Message{
		Type:    EventRatingResultsUpdated,
		Payload: map[string]int{"rating_id": ratingID},
		RoomID:  room,
	})
}
