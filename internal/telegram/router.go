// Package telegram is the transport edge: it routes incoming updates,
// downloads ticket documents and replies to users.
package telegram

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/perioh/tg-uz-reminder/internal/domain"
	"github.com/perioh/tg-uz-reminder/internal/store"
	"github.com/perioh/tg-uz-reminder/internal/ticket"
)

// Text messages carrying a link with this prefix are treated as ticket
// documents to download.
const ticketURLPrefix = "https://app.uz.gov.ua/ticket-"

// Router wires Telegram updates to the ticket pipeline.
type Router struct {
	bot   *tgbotapi.BotAPI
	log   *zap.Logger
	store store.Store
	http  *http.Client
}

func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, st store.Store) *Router {
	return &Router{
		bot:   bot,
		log:   log,
		store: st,
		http:  &http.Client{},
	}
}

// HandleUpdate processes a single update. The app runs one goroutine
// per update, so PDF extraction here never stalls other uploads or the
// monitoring loop.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		r.sendText(chatID, welcomeText)
	case msg.Document != nil:
		r.handleDocument(ctx, chatID, msg.Document)
	case strings.HasPrefix(text, ticketURLPrefix):
		r.handleTicketLink(ctx, chatID, text)
	default:
		r.log.Debug("message without document", zap.Int64("chat_id", chatID))
		r.sendText(chatID, wrongMessageText)
	}
}

// handleDocument downloads an attached file through the Telegram file
// API and runs it through the ticket pipeline.
func (r *Router) handleDocument(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	fileURL, err := r.bot.GetFileDirectURL(doc.FileID)
	if err != nil {
		r.log.Error("resolving telegram file", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, downloadErrorText)
		return
	}
	content, err := r.download(ctx, fileURL)
	if err != nil {
		r.log.Error("downloading telegram file", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, downloadErrorText)
		return
	}
	r.processTicket(chatID, content)
}

// handleTicketLink downloads the document behind an app.uz.gov.ua
// ticket link.
func (r *Router) handleTicketLink(ctx context.Context, chatID int64, text string) {
	if _, err := url.Parse(text); err != nil {
		r.sendText(chatID, urlParseErrorText)
		return
	}
	content, err := r.download(ctx, text)
	if err != nil {
		r.log.Error("downloading ticket link", zap.Error(err), zap.Int64("chat_id", chatID))
		r.sendText(chatID, downloadErrorText)
		return
	}
	r.processTicket(chatID, content)
}

// processTicket extracts the ticket record and stores it. Extraction
// failures and layout failures get distinct user-facing replies so
// operators can tell format drift from a broken upload.
func (r *Router) processTicket(chatID int64, content []byte) {
	record, err := ticket.Parse(ticket.PDFBytes(content))
	if err != nil {
		if ticket.IsExtractError(err) {
			r.log.Debug("ticket extraction failed", zap.Error(err), zap.Int64("chat_id", chatID))
			r.sendText(chatID, extractErrorText)
		} else {
			r.log.Error("ticket layout parse failed", zap.Error(err), zap.Int64("chat_id", chatID))
			r.sendText(chatID, layoutChangedText)
		}
		return
	}

	r.store.Upsert(domain.UserID(chatID), record)
	r.log.Debug("ticket added to monitoring",
		zap.Int64("chat_id", chatID),
		zap.String("train", record.TrainNumber),
		zap.Time("departure", record.DepartureAt))
	r.sendText(chatID, AddedText(record))
}

// SendMessage sends a plain text message to the given chat. This makes
// Router satisfy monitor.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (r *Router) sendText(chatID int64, text string) {
	if err := r.SendMessage(chatID, text); err != nil {
		r.log.Warn("sending reply", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
