package domain

import "time"

// UserID identifies a Telegram chat a ticket belongs to.
type UserID int64

// TicketRecord is one monitored departure extracted from an uploaded
// ticket. Immutable once created; identity is (TrainNumber, DepartureAt).
type TicketRecord struct {
	TrainNumber string
	DepartureAt time.Time // Kyiv time
}

// TicketKey is the comparable identity of a TicketRecord, usable as a
// map key. time.Time itself is a poor map key (monotonic clock,
// location pointer), so the departure collapses to a unix timestamp.
type TicketKey struct {
	TrainNumber string
	DepartureAt int64
}

// Key returns the ticket's set-membership identity.
func (t TicketRecord) Key() TicketKey {
	return TicketKey{TrainNumber: t.TrainNumber, DepartureAt: t.DepartureAt.Unix()}
}
