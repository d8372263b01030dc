// Package ticket turns the text of an uploaded UZ ticket PDF into a
// structured record. The layout is undocumented and externally
// controlled, so parsing is purely positional: a fixed departure label
// line and a fixed passenger line carrying the train number.
package ticket

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

const (
	departureLabel  = "Дата/час відпр. "
	passengerLabel  = "Прізвище, Ім’я"
	trainMarker     = "Поїзд "
	departureLayout = "02.01.2006 15:04"
)

var (
	// ErrExtract wraps failures of the underlying text extraction step.
	ErrExtract = errors.New("ticket text extraction failed")

	ErrDepartureLineAbsent     = errors.New("departure date/time line absent")
	ErrDepartureDateAbsent     = errors.New("departure date token absent")
	ErrDepartureTimeAbsent     = errors.New("departure time token absent")
	ErrDepartureFormat         = errors.New("departure date/time unparsable")
	ErrPassengerLineAbsent     = errors.New("passenger name line absent")
	ErrTrainMarkerAbsent       = errors.New("train marker absent in passenger line")
	ErrTrainNumberUnterminated = errors.New("train number not followed by a space")
)

// IsExtractError reports whether err comes from text extraction rather
// than from the structural layout parse. Extraction failures get the
// generic user message; everything else means the layout drifted.
func IsExtractError(err error) bool {
	return errors.Is(err, ErrExtract)
}

// Parse extracts a TicketRecord from a ticket document.
func Parse(src TextSource) (domain.TicketRecord, error) {
	text, err := src.ExtractText()
	if err != nil {
		return domain.TicketRecord{}, fmt.Errorf("%w: %v", ErrExtract, err)
	}
	return parseText(text)
}

func parseText(text string) (domain.TicketRecord, error) {
	lines := strings.Split(text, "\n")

	depLine, ok := findLine(lines, departureLabel)
	if !ok {
		return domain.TicketRecord{}, ErrDepartureLineAbsent
	}
	// Label is two whitespace-separated tokens, so date and time are
	// tokens 3 and 4.
	fields := strings.Fields(depLine)
	if len(fields) < 3 {
		return domain.TicketRecord{}, ErrDepartureDateAbsent
	}
	if len(fields) < 4 {
		return domain.TicketRecord{}, ErrDepartureTimeAbsent
	}
	departure, err := time.ParseInLocation(departureLayout, fields[2]+" "+fields[3], domain.Kyiv())
	if err != nil {
		return domain.TicketRecord{}, fmt.Errorf("%w: %v", ErrDepartureFormat, err)
	}

	passLine, ok := findLine(lines, passengerLabel)
	if !ok {
		return domain.TicketRecord{}, ErrPassengerLineAbsent
	}
	_, after, ok := strings.Cut(passLine, trainMarker)
	if !ok {
		return domain.TicketRecord{}, ErrTrainMarkerAbsent
	}
	// Kept as a string: real train numbers carry non-numeric suffixes.
	number, _, ok := strings.Cut(after, " ")
	if !ok {
		return domain.TicketRecord{}, ErrTrainNumberUnterminated
	}

	return domain.TicketRecord{TrainNumber: number, DepartureAt: departure}, nil
}

func findLine(lines []string, prefix string) (string, bool) {
	for _, line := range lines {
		if strings.HasPrefix(line, prefix) {
			return line, true
		}
	}
	return "", false
}
