package store

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

// Memory is the in-process Store: a sharded concurrent map of per-user
// locked ticket sets. There is no global transaction and no
// durability; all state is lost on restart.
type Memory struct {
	users *xsync.MapOf[domain.UserID, *ticketSet]
}

func NewMemory() *Memory {
	return &Memory{users: xsync.NewMapOf[domain.UserID, *ticketSet]()}
}

func (m *Memory) Upsert(user domain.UserID, ticket domain.TicketRecord) {
	set, _ := m.users.LoadOrCompute(user, newTicketSet)
	set.add(ticket)
}

func (m *Memory) Tickets(user domain.UserID) []domain.TicketRecord {
	set, ok := m.users.Load(user)
	if !ok {
		return nil
	}
	return set.snapshot()
}

func (m *Memory) Users() []UserTickets {
	var all []UserTickets
	m.users.Range(func(user domain.UserID, set *ticketSet) bool {
		all = append(all, UserTickets{User: user, Tickets: set.snapshot()})
		return true
	})
	return all
}

// Remove deletes one ticket. The user's entry stays even when its set
// becomes empty; removing for an unknown user is ErrUserNotFound.
func (m *Memory) Remove(user domain.UserID, ticket domain.TicketRecord) error {
	set, ok := m.users.Load(user)
	if !ok {
		return ErrUserNotFound
	}
	set.remove(ticket)
	return nil
}

// ticketSet is a mutex-guarded set keyed by ticket identity.
type ticketSet struct {
	mu      sync.Mutex
	tickets map[domain.TicketKey]domain.TicketRecord
}

func newTicketSet() *ticketSet {
	return &ticketSet{tickets: make(map[domain.TicketKey]domain.TicketRecord)}
}

func (s *ticketSet) add(t domain.TicketRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[t.Key()] = t
}

func (s *ticketSet) remove(t domain.TicketRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, t.Key())
}

func (s *ticketSet) snapshot() []domain.TicketRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TicketRecord, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	return out
}
