package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/perioh/tg-uz-reminder/internal/domain"
	"github.com/perioh/tg-uz-reminder/internal/store"
)

type stubFeed struct {
	records []domain.DelayRecord
	err     error
}

func (f *stubFeed) DelayedTrains(context.Context) ([]domain.DelayRecord, error) {
	return f.records, f.err
}

type captureSender struct {
	chats []int64
	texts []string
}

func (s *captureSender) SendMessage(chatID int64, text string) error {
	s.chats = append(s.chats, chatID)
	s.texts = append(s.texts, text)
	return nil
}

func newTestMonitor(st store.Store, feed Feed, sender Sender, now time.Time) *Monitor {
	m := New(st, feed, sender, zap.NewNop())
	m.now = func() time.Time { return now }
	return m
}

func kyivDate(y int, mo time.Month, d, hh, mm int) time.Time {
	return time.Date(y, mo, d, hh, mm, 0, 0, domain.Kyiv())
}

func TestTrackerTightestWindow(t *testing.T) {
	now := kyivDate(2024, time.April, 10, 12, 0)
	tests := []struct {
		name      string
		departure time.Time
		want      time.Duration
		fires     bool
	}{
		{"20 minutes out fires 30m window", now.Add(20 * time.Minute), 30 * time.Minute, true},
		{"10 minutes out fires 15m window", now.Add(10 * time.Minute), 15 * time.Minute, true},
		{"59 minutes out fires 60m window", now.Add(59 * time.Minute), 60 * time.Minute, true},
		{"already departed fires nothing", now.Add(-time.Minute), 0, false},
		{"two hours out fires nothing", now.Add(2 * time.Hour), 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr := newWindowTracker(notifyBefore)
			got, ok := tr.match(domain.UserID(1), tc.departure, now)
			if ok != tc.fires {
				t.Fatalf("want fires=%v, got %v", tc.fires, ok)
			}
			if ok && got != tc.want {
				t.Fatalf("want threshold %v, got %v", tc.want, got)
			}
		})
	}
}

func TestTrackerProgression(t *testing.T) {
	now := kyivDate(2024, time.April, 10, 12, 0)
	departure := now.Add(10 * time.Minute)
	user := domain.UserID(1)
	tr := newWindowTracker(notifyBefore)

	want := []time.Duration{15 * time.Minute, 30 * time.Minute, 60 * time.Minute}
	for i, w := range want {
		got, ok := tr.match(user, departure, now)
		if !ok {
			t.Fatalf("evaluation %d: want a firing threshold", i+1)
		}
		if got != w {
			t.Fatalf("evaluation %d: want %v, got %v", i+1, w, got)
		}
	}

	if _, ok := tr.match(user, departure, now); ok {
		t.Fatal("want no match after all thresholds fired")
	}
	if !tr.exhausted(user) {
		t.Fatal("want user exhausted after all thresholds fired")
	}
}

// The fired set is keyed by user: a window used by one ticket is used
// up for every other ticket of the same user, but not for other users.
func TestTrackerSharedAcrossTickets(t *testing.T) {
	now := kyivDate(2024, time.April, 10, 12, 0)
	userA := domain.UserID(1)
	userB := domain.UserID(2)
	tr := newWindowTracker(notifyBefore)

	got, ok := tr.match(userA, now.Add(10*time.Minute), now)
	if !ok || got != 15*time.Minute {
		t.Fatalf("first ticket: want 15m, got %v (fired=%v)", got, ok)
	}
	got, ok = tr.match(userA, now.Add(12*time.Minute), now)
	if !ok || got != 30*time.Minute {
		t.Fatalf("second ticket of same user: want 30m, got %v (fired=%v)", got, ok)
	}

	got, ok = tr.match(userB, now.Add(10*time.Minute), now)
	if !ok || got != 15*time.Minute {
		t.Fatalf("other user: want fresh 15m window, got %v (fired=%v)", got, ok)
	}
}

func TestTickDelayProjection(t *testing.T) {
	departure := kyivDate(2024, time.April, 10, 15, 49)
	now := departure.Add(-20 * time.Minute)
	user := domain.UserID(144441960)

	st := store.NewMemory()
	st.Upsert(user, domain.TicketRecord{TrainNumber: "705", DepartureAt: departure})

	feed := &stubFeed{records: []domain.DelayRecord{{
		Numbers:   []string{"705", "706"},
		Direction: "Пшемисль Головний-Київ-Пас.",
		Delay:     30 * time.Minute,
	}}}
	sender := &captureSender{}

	newTestMonitor(st, feed, sender, now).tick(context.Background())

	if len(sender.texts) != 1 {
		t.Fatalf("want 1 notification, got %d", len(sender.texts))
	}
	want := "Your train №705 Пшемисль Головний-Київ-Пас. is delayed by 30 minutes.\n" +
		"Probable arrival time is 16:19 Kyiv time."
	if sender.texts[0] != want {
		t.Fatalf("want %q, got %q", want, sender.texts[0])
	}
	if sender.chats[0] != 144441960 {
		t.Fatalf("want chat 144441960, got %d", sender.chats[0])
	}
}

func TestTickNoMatchFallback(t *testing.T) {
	departure := kyivDate(2024, time.April, 10, 15, 49)
	now := departure.Add(-20 * time.Minute)

	st := store.NewMemory()
	st.Upsert(domain.UserID(1), domain.TicketRecord{TrainNumber: "705", DepartureAt: departure})

	feed := &stubFeed{records: []domain.DelayRecord{{
		Numbers:   []string{"999"},
		Direction: "Київ-Пас.-Харків-Пас.",
		Delay:     10 * time.Minute,
	}}}
	sender := &captureSender{}

	newTestMonitor(st, feed, sender, now).tick(context.Background())

	if len(sender.texts) != 1 {
		t.Fatalf("want 1 notification, got %d", len(sender.texts))
	}
	want := "No delays found for your train №705!\nArrival time is 15:49 Kyiv time."
	if sender.texts[0] != want {
		t.Fatalf("want %q, got %q", want, sender.texts[0])
	}
}

func TestTickSkipsCycleOnFeedError(t *testing.T) {
	departure := kyivDate(2024, time.April, 10, 15, 49)
	now := departure.Add(-20 * time.Minute)
	user := domain.UserID(1)

	st := store.NewMemory()
	st.Upsert(user, domain.TicketRecord{TrainNumber: "705", DepartureAt: departure})

	feed := &stubFeed{err: errors.New("connection refused")}
	sender := &captureSender{}
	m := newTestMonitor(st, feed, sender, now)

	m.tick(context.Background())
	if len(sender.texts) != 0 {
		t.Fatalf("want no notifications on feed failure, got %d", len(sender.texts))
	}

	// The failed cycle must not consume any window: once the feed
	// recovers, the ticket still fires.
	feed.err = nil
	m.tick(context.Background())
	if len(sender.texts) != 1 {
		t.Fatalf("want 1 notification after recovery, got %d", len(sender.texts))
	}
}

func TestExhaustionEviction(t *testing.T) {
	departure := kyivDate(2024, time.April, 10, 15, 49)
	now := departure.Add(-10 * time.Minute)
	user := domain.UserID(1)

	st := store.NewMemory()
	st.Upsert(user, domain.TicketRecord{TrainNumber: "705", DepartureAt: departure})

	feed := &stubFeed{}
	sender := &captureSender{}
	m := newTestMonitor(st, feed, sender, now)

	// Three cycles fire the three windows, the fourth finds the user
	// exhausted and evicts the ticket.
	for i := 0; i < 4; i++ {
		m.tick(context.Background())
	}

	if len(sender.texts) != 3 {
		t.Fatalf("want 3 notifications, got %d", len(sender.texts))
	}
	if got := st.Tickets(user); len(got) != 0 {
		t.Fatalf("want ticket evicted after exhaustion, got %d tickets", len(got))
	}
}
