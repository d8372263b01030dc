package domain

import "time"

// DelayRecord is one entry of the scraped delay feed: a delayed route,
// its paired train numbers (e.g. 705/706) and the reported delay.
// Produced fresh each poll cycle, never persisted.
type DelayRecord struct {
	Numbers   []string
	Direction string
	Delay     time.Duration
}

// Matches reports whether the record covers the given train number.
func (d DelayRecord) Matches(trainNumber string) bool {
	for _, n := range d.Numbers {
		if n == trainNumber {
			return true
		}
	}
	return false
}
