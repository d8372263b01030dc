package store

import (
	"errors"
	"testing"
	"time"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

func kyivDate(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, domain.Kyiv())
}

func TestUpsertIdempotent(t *testing.T) {
	m := NewMemory()
	user := domain.UserID(144441960)
	ticket := domain.TicketRecord{
		TrainNumber: "705",
		DepartureAt: kyivDate(t, 2024, time.April, 10, 15, 49),
	}

	m.Upsert(user, ticket)
	m.Upsert(user, ticket)

	got := m.Tickets(user)
	if len(got) != 1 {
		t.Fatalf("want 1 ticket after duplicate upsert, got %d", len(got))
	}
	if got[0].TrainNumber != "705" {
		t.Fatalf("want train 705, got %s", got[0].TrainNumber)
	}
	if !got[0].DepartureAt.Equal(ticket.DepartureAt) {
		t.Fatalf("want departure %v, got %v", ticket.DepartureAt, got[0].DepartureAt)
	}
}

func TestUserIsolation(t *testing.T) {
	m := NewMemory()
	userA := domain.UserID(1)
	userB := domain.UserID(2)

	m.Upsert(userA, domain.TicketRecord{
		TrainNumber: "35",
		DepartureAt: kyivDate(t, 2024, time.April, 9, 20, 36),
	})

	if got := m.Tickets(userB); len(got) != 0 {
		t.Fatalf("want no tickets for user B, got %d", len(got))
	}
	if got := m.Tickets(userA); len(got) != 1 {
		t.Fatalf("want 1 ticket for user A, got %d", len(got))
	}
}

func TestUsersSnapshot(t *testing.T) {
	m := NewMemory()
	dep := kyivDate(t, 2024, time.April, 9, 20, 36)
	m.Upsert(domain.UserID(1), domain.TicketRecord{TrainNumber: "35", DepartureAt: dep})
	m.Upsert(domain.UserID(2), domain.TicketRecord{TrainNumber: "35", DepartureAt: dep})

	all := m.Users()
	if len(all) != 2 {
		t.Fatalf("want 2 users, got %d", len(all))
	}
	for _, ut := range all {
		if len(ut.Tickets) != 1 {
			t.Fatalf("want 1 ticket for user %d, got %d", ut.User, len(ut.Tickets))
		}
	}
}

func TestRemove(t *testing.T) {
	m := NewMemory()
	user := domain.UserID(7)
	ticket := domain.TicketRecord{
		TrainNumber: "705",
		DepartureAt: kyivDate(t, 2024, time.April, 10, 15, 49),
	}
	m.Upsert(user, ticket)

	if err := m.Remove(user, ticket); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := m.Tickets(user); len(got) != 0 {
		t.Fatalf("want empty set after remove, got %d tickets", len(got))
	}
}

func TestRemoveUnknownUser(t *testing.T) {
	m := NewMemory()
	err := m.Remove(domain.UserID(42), domain.TicketRecord{TrainNumber: "705"})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}
