package models

// SharedExpense is a single group spend event.
type SharedExpense struct {
	// ID is the unique identifier (UUID format).
	ID string

	// Title is the user-provided description, e.g. "Pizza".
	Title string

	// TotalAmount is the full amount paid, in minor currency units. Always > 0.
	TotalAmount int64

	// Payer is the participant ID of whoever paid.
	Payer string

	// Participants is the ordered, non-empty set of participant IDs sharing
	// the expense. The payer may or may not be included.
	Participants []string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// LedgerEntry is the net relationship between self and one counterparty.
type LedgerEntry struct {
	// Counterparty is the participant ID on the other side.
	Counterparty string

	// NetAmount is positive when the counterparty owes self and negative when
	// self owes the counterparty. Zero means the entry is clear.
	NetAmount int64

	// LastUpdatedAt is the Unix timestamp of the last applied delta or settle.
	LastUpdatedAt int64
}

// Outstanding reports whether the entry carries a non-zero balance.
func (e LedgerEntry) Outstanding() bool {
	return e.NetAmount != 0
}

// Direction tells which way money moved in a settlement.
type Direction string

const (
	// DirectionPaid means self paid the counterparty.
	DirectionPaid Direction = "paid"
	// DirectionReceived means the counterparty paid self.
	DirectionReceived Direction = "received"
)

// SettlementEvent is an immutable record of a settle action.
type SettlementEvent struct {
	// ID is the unique identifier (UUID format).
	ID string

	// Counterparty is the participant ID that was settled with.
	Counterparty string

	// Amount is the absolute amount that changed hands, in minor units.
	Amount int64

	// Direction is DirectionPaid or DirectionReceived.
	Direction Direction

	// Timestamp is the Unix timestamp of the settle action.
	Timestamp int64
}

// Delta is a signed adjustment to one ledger entry produced by one shared
// expense. Positive means the counterparty now owes self more.
type Delta struct {
	Counterparty string
	SignedAmount int64
}
