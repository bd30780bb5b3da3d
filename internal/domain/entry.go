package domain

import (
	"time"
)

// Entry is a single journal entry. The entry date is the client's local
// calendar day as a YYYY-MM-DD string, kept separate from the server-side
// created_at timestamp.
type Entry struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	Text              string    `json:"text"`
	EntryDate         string    `json:"entry_date"`
	TherapistComments *string   `json:"therapist_comments,omitempty"`
	IsHighlighted     bool      `json:"is_highlighted"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Redacted returns a copy of the entry with the therapist-only fields removed.
// Clients never see their therapist's comments or highlights.
func (e Entry) Redacted() Entry {
	e.TherapistComments = nil
	e.IsHighlighted = false
	return e
}

// ClientEntryCount is one line of a therapist's daily digest.
type ClientEntryCount struct {
	ClientID   int64  `json:"client_id"`
	ClientName string `json:"client_name"`
	Count      int    `json:"count"`
}
