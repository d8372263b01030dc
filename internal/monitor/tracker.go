package monitor

import (
	"cmp"
	"slices"
	"time"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

// windowTracker records which notification thresholds have already
// fired per user. The granularity is deliberately per-user, not
// per-ticket: all of a user's tickets share one fired set, so each
// window produces at most one notification per user. Owned by the
// monitor goroutine; not safe for concurrent use.
type windowTracker struct {
	thresholds []time.Duration // descending
	fired      map[domain.UserID]map[time.Duration]struct{}
}

func newWindowTracker(thresholds []time.Duration) *windowTracker {
	desc := slices.Clone(thresholds)
	slices.SortFunc(desc, func(a, b time.Duration) int { return cmp.Compare(b, a) })
	return &windowTracker{
		thresholds: desc,
		fired:      make(map[domain.UserID]map[time.Duration]struct{}),
	}
}

// match scans thresholds largest to smallest and fires the tightest
// unfired window containing the departure: a smaller threshold whose
// window still contains the departure supersedes a wider one, so a
// ticket submitted 20 minutes before departure fires the 30m window,
// not the 60m one. At most one threshold fires per call.
func (t *windowTracker) match(user domain.UserID, departure, now time.Time) (time.Duration, bool) {
	set := t.fired[user]
	if set == nil {
		set = make(map[time.Duration]struct{})
		t.fired[user] = set
	}

	var (
		selected time.Duration
		found    bool
	)
	for _, threshold := range t.thresholds {
		if _, done := set[threshold]; done {
			continue
		}
		if departure.After(now) && !departure.After(now.Add(threshold)) {
			selected = threshold
			found = true
		}
	}
	if found {
		set[selected] = struct{}{}
	}
	return selected, found
}

// exhausted reports whether every threshold has fired for the user.
func (t *windowTracker) exhausted(user domain.UserID) bool {
	return len(t.fired[user]) == len(t.thresholds)
}
