package domain

import (
	"time"
)

// Relationship connects one client to one therapist. A client may have many
// therapists and vice versa; the pair itself is unique.
type Relationship struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	TherapistID int64     `json:"therapist_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConnectedClient is a therapist-facing view of one connected client.
type ConnectedClient struct {
	RelationshipID int64  `json:"relationship_id"`
	UserID         int64  `json:"user_id"`
	TelegramID     int64  `json:"telegram_id"`
	Name           string `json:"name"`
}
