// Package uzfeed fetches and parses the UZ delayed-trains page. Each
// list entry follows the grammar `№<n1>[/<n2>…] <direction> (+<H>:<MM>)`.
package uzfeed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

const containerClass = "delayform-list"

var (
	ErrMarkup            = errors.New("markup unparsable")
	ErrContainerNotFound = errors.New("delayed trains container not found")
	ErrEntryNumbers      = errors.New("entry missing numbers separator")
	ErrEntryDirection    = errors.New("entry missing direction/delay separator")
	ErrDelaySeparator    = errors.New("delay missing hour/minute separator")
	ErrDelayHour         = errors.New("delay hour not numeric")
	ErrDelayMinute       = errors.New("delay minute not numeric")
)

// Parse extracts delay records from the scraped page. The batch is
// all-or-nothing: the first malformed entry aborts the whole fetch.
func Parse(markup string) ([]domain.DelayRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkup, err)
	}

	container := doc.Find("." + containerClass).First()
	if container.Length() == 0 {
		return nil, ErrContainerNotFound
	}

	var (
		records  []domain.DelayRecord
		entryErr error
	)
	container.Children().EachWithBreak(func(_ int, item *goquery.Selection) bool {
		first := item.Nodes[0].FirstChild
		if first == nil || first.Type != html.TextNode {
			return true
		}
		entry := strings.TrimSpace(first.Data)
		if entry == "" {
			return true
		}
		record, err := parseEntry(entry)
		if err != nil {
			entryErr = err
			return false
		}
		records = append(records, record)
		return true
	})
	if entryErr != nil {
		return nil, entryErr
	}
	return records, nil
}

func parseEntry(entry string) (domain.DelayRecord, error) {
	numbers, rest, ok := strings.Cut(entry, " ")
	if !ok {
		return domain.DelayRecord{}, fmt.Errorf("%w: %q", ErrEntryNumbers, entry)
	}
	direction, delayPart, ok := strings.Cut(rest, " (+")
	if !ok {
		return domain.DelayRecord{}, fmt.Errorf("%w: %q", ErrEntryDirection, entry)
	}
	delay, err := parseDelay(strings.TrimSuffix(delayPart, ")"))
	if err != nil {
		return domain.DelayRecord{}, err
	}
	return domain.DelayRecord{
		Numbers:   splitNumbers(numbers),
		Direction: direction,
		Delay:     delay,
	}, nil
}

// splitNumbers drops the leading № glyph and splits paired-route
// aliases like 705/706.
func splitNumbers(s string) []string {
	_, size := utf8.DecodeRuneInString(s)
	return strings.Split(s[size:], "/")
}

func parseDelay(s string) (time.Duration, error) {
	hr, min, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrDelaySeparator, s)
	}
	h, err := strconv.Atoi(hr)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrDelayHour, hr)
	}
	m, err := strconv.Atoi(min)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrDelayMinute, min)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}
