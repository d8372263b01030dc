// Package monitor owns the poll cycle: fetch the delay feed, walk the
// ticket store, decide which tickets hit a notification window, send
// the notifications and evict exhausted tickets.
package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/perioh/tg-uz-reminder/internal/domain"
	"github.com/perioh/tg-uz-reminder/internal/store"
	"github.com/perioh/tg-uz-reminder/internal/telegram"
)

const pollInterval = 10 * time.Second

// Thresholds before departure at which a user is notified once each.
var notifyBefore = []time.Duration{
	15 * time.Minute,
	30 * time.Minute,
	60 * time.Minute,
}

// Feed supplies the current delay records.
type Feed interface {
	DelayedTrains(ctx context.Context) ([]domain.DelayRecord, error)
}

// Sender is the minimal interface the monitor needs to deliver a text
// message. telegram.Router implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Monitor runs the periodic delay-matching loop.
type Monitor struct {
	store    store.Store
	feed     Feed
	sender   Sender
	log      *zap.Logger
	tracker  *windowTracker
	interval time.Duration
	now      func() time.Time
}

func New(st store.Store, feed Feed, sender Sender, log *zap.Logger) *Monitor {
	return &Monitor{
		store:    st,
		feed:     feed,
		sender:   sender,
		log:      log,
		tracker:  newWindowTracker(notifyBefore),
		interval: pollInterval,
		now:      domain.Now,
	}
}

// Run polls until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopping")
			return
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick performs one poll cycle. A feed failure abandons the whole
// cycle; the next attempt waits for the regular interval.
func (m *Monitor) tick(ctx context.Context) {
	now := m.now()

	delays, err := m.feed.DelayedTrains(ctx)
	if err != nil {
		m.log.Warn("delay feed unavailable, skipping cycle", zap.Error(err))
		return
	}

	for _, ut := range m.store.Users() {
		for _, t := range ut.Tickets {
			threshold, ok := m.tracker.match(ut.User, t.DepartureAt, now)
			if !ok {
				if m.tracker.exhausted(ut.User) {
					m.log.Debug("all notifications sent, evicting ticket",
						zap.Int64("chat_id", int64(ut.User)),
						zap.String("train", t.TrainNumber))
					if err := m.store.Remove(ut.User, t); err != nil {
						m.log.Warn("evicting ticket", zap.Error(err),
							zap.Int64("chat_id", int64(ut.User)))
					}
				}
				continue
			}

			text := telegram.NotificationText(t, findDelay(delays, t.TrainNumber))
			if err := m.sender.SendMessage(int64(ut.User), text); err != nil {
				m.log.Warn("sending notification", zap.Error(err),
					zap.Int64("chat_id", int64(ut.User)),
					zap.String("train", t.TrainNumber),
					zap.Duration("threshold", threshold))
			}
		}
	}
}

// findDelay returns the first delay record covering the train number,
// or nil when the train is not on the feed.
func findDelay(delays []domain.DelayRecord, trainNumber string) *domain.DelayRecord {
	for i := range delays {
		if delays[i].Matches(trainNumber) {
			return &delays[i]
		}
	}
	return nil
}
