package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/perioh/tg-uz-reminder/internal/config"
	"github.com/perioh/tg-uz-reminder/internal/monitor"
	"github.com/perioh/tg-uz-reminder/internal/store"
	"github.com/perioh/tg-uz-reminder/internal/telegram"
	"github.com/perioh/tg-uz-reminder/internal/uzfeed"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	router  *telegram.Router
	monitor *monitor.Monitor
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting uz reminder bot",
		zap.String("feed", a.cfg.FeedURL),
		zap.String("http", a.cfg.HTTPAddr),
	)

	// All monitoring state is memory-resident and lost on restart.
	tickets := store.NewMemory()
	a.router = telegram.NewRouter(a.bot, a.log, tickets)
	a.monitor = monitor.New(tickets, uzfeed.NewClient(a.cfg.FeedURL), a.router, a.log)

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.monitor.Run(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			return nil

		case upd := <-updCh:
			// One goroutine per update: PDF extraction is CPU-heavy and
			// must not delay other uploads.
			go a.router.HandleUpdate(ctx, upd)
		}
	}
}
