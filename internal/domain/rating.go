package domain

import (
	"time"
)

// DayRating holds the per-day 1-5 ratings for a client. The client and the
// connected therapist each own one side; a day has at most one row per user.
type DayRating struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Date            string    `json:"date"`
	ClientRating    *int      `json:"client_rating,omitempty"`
	TherapistRating *int      `json:"therapist_rating,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Redacted returns a copy with the therapist's rating removed.
func (r DayRating) Redacted() DayRating {
	r.TherapistRating = nil
	return r
}

// ValidRating reports whether v is inside the allowed 1-5 range.
func ValidRating(v int) bool {
	return v >= 1 && v <= 5
}
