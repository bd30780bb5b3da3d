package domain

import (
	"time"
)

// InviteType determines which side of the relationship the redeemer joins.
type InviteType string

const (
	// InviteTherapist is issued by a client; the redeemer becomes their therapist
	// and is promoted to the therapist role.
	InviteTherapist InviteType = "invite_therapist"
	// InviteClient is issued by a therapist; the redeemer becomes their client.
	InviteClient InviteType = "invite_client"
)

// Valid reports whether t is one of the known invite types.
func (t InviteType) Valid() bool {
	return t == InviteTherapist || t == InviteClient
}

// InviteTTL is how long an invite token stays redeemable.
const InviteTTL = 48 * time.Hour

// Invite is a single-use pairing token.
type Invite struct {
	ID         int64      `json:"id"`
	Token      string     `json:"token"`
	InviterID  int64      `json:"inviter_id"`
	InviteType InviteType `json:"invite_type"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	UsedBy     *int64     `json:"used_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Redeemable reports whether the invite is still unused and unexpired at now.
func (i *Invite) Redeemable(now time.Time) bool {
	return i.UsedAt == nil && now.Before(i.ExpiresAt)
}
