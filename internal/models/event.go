package models

// Event operations published to Kafka.
const (
	OperationPlaceCreated  = "place.created"
	OperationPlaceUpdated  = "place.updated"
	OperationPlaceDeleted  = "place.deleted"
	OperationFavoriteAdded = "favorite.added"
	OperationUserDeleted   = "user.deleted"
)

// Event describes a change to a marketplace entity.
type Event struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix timestamp (in seconds) of the change.
	Operation string `json:"operation"` // Operation is one of the Operation* constants.
	EntityID  string `json:"entity_id"` // EntityID is the id of the place or user that changed.
	UserID    string `json:"user_id"`   // UserID is the user who triggered the change.
}
