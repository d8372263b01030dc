package telegram

import (
	"fmt"

	"github.com/perioh/tg-uz-reminder/internal/domain"
)

const (
	welcomeText = "Send me your UZ ticket as a PDF file, or a link like " +
		ticketURLPrefix + "..., and I will warn you about delays before departure."
	wrongMessageText  = "I only understand ticket PDFs and " + ticketURLPrefix + "... links."
	urlParseErrorText = "This does not look like a valid ticket link."
	downloadErrorText = "Error downloading the ticket document."

	extractErrorText  = "Error extracting pdf data."
	layoutChangedText = "Possibly, ticket layout has changed."
)

// AddedText confirms a ticket was taken into monitoring.
func AddedText(t domain.TicketRecord) string {
	return fmt.Sprintf("Your ticket to train №%s, departing at %s, is added to monitoring!",
		t.TrainNumber, t.DepartureAt.Format("2006-01-02 15:04:05 MST"))
}

// NotificationText builds the per-window notification. With a matched
// delay record it projects the departure by the reported delay;
// otherwise it repeats the scheduled clock time.
func NotificationText(t domain.TicketRecord, delayed *domain.DelayRecord) string {
	if delayed == nil {
		return fmt.Sprintf("No delays found for your train №%s!\nArrival time is %02d:%02d Kyiv time.",
			t.TrainNumber, t.DepartureAt.Hour(), t.DepartureAt.Minute())
	}
	minutes := int(delayed.Delay.Minutes())
	adjusted := t.DepartureAt.Add(delayed.Delay)
	return fmt.Sprintf("Your train №%s %s is delayed by %d minutes.\nProbable arrival time is %02d:%02d Kyiv time.",
		t.TrainNumber, delayed.Direction, minutes, adjusted.Hour(), adjusted.Minute())
}
