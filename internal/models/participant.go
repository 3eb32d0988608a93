package models

import "strings"

// SelfID is the participant ID of the signed-in user inside their own ledger.
const SelfID = "you"

// Participant is an identity in the splitting graph: self or a friend.
// Participants are created the first time an expense or a friend-add action
// references them and are never deleted.
type Participant struct {
	// ID is the stable identifier, derived from the display name.
	ID string

	// DisplayName is the name as first entered.
	DisplayName string

	// CreatedAt is the Unix timestamp of the first reference.
	CreatedAt int64
}

// ParticipantID derives the stable participant ID for a display name:
// trimmed, lower-cased, with inner whitespace collapsed to a single dash.
// "You" (in any case) maps to SelfID.
func ParticipantID(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// IsSelf reports whether the participant ID refers to the ledger owner.
func IsSelf(id string) bool {
	return id == SelfID
}
