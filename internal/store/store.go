package store

import (
	"errors"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

// ErrUserNotFound is returned by Remove when the user has no entry.
var ErrUserNotFound = errors.New("user not found")

// UserTickets is one user's ticket set as captured by Users.
type UserTickets struct {
	User    domain.UserID
	Tickets []domain.TicketRecord
}

// Store keeps each user's set of monitored tickets. Implementations
// must be safe for concurrent use by the upload handlers and the
// monitoring loop. Reads are weak snapshots: an upsert concurrent with
// Users or Tickets may or may not be reflected in that call.
type Store interface {
	// Upsert adds a ticket to the user's set, creating the set if
	// absent. Duplicate (train number, departure) pairs collapse to
	// one entry.
	Upsert(user domain.UserID, ticket domain.TicketRecord)

	// Tickets returns a snapshot copy of the user's current set, or
	// nil if the user is unknown.
	Tickets(user domain.UserID) []domain.TicketRecord

	// Users returns a snapshot of all users and their ticket sets.
	Users() []UserTickets

	// Remove deletes one ticket from a user's set.
	Remove(user domain.UserID, ticket domain.TicketRecord) error
}
