package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BatmanBruc/bat-bot-shop/internal/config"
	"github.com/BatmanBruc/bat-bot-shop/internal/handlers"
	"github.com/BatmanBruc/bat-bot-shop/internal/membership"
	"github.com/BatmanBruc/bat-bot-shop/internal/middleware"
	"github.com/BatmanBruc/bat-bot-shop/internal/scheduler"
	"github.com/BatmanBruc/bat-bot-shop/store"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func main() {
	if err := config.LoadEnvFile("config.env"); err != nil {
		log.Printf("Warning: failed to read config.env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.AdminIDs) == 0 {
		log.Println("Warning: ADMIN_USER_IDS is empty, the admin panel is unreachable.")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "shop_bot")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	sessionStore := store.NewRedisSessionStore(rdb, cfg.SessionTTLHours)
	jobStore := store.NewRedisJobStore(rdb, 72)

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}
	pollTimeout := 50 * time.Second

	b, err := bot.New(
		cfg.BotToken,
		bot.WithHTTPClient(pollTimeout, httpClient),
	)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	broadcasts := scheduler.NewScheduler(
		jobStore,
		pgStore,
		scheduler.BotSender{Bot: b},
		scheduler.Config{
			Workers: cfg.BroadcastWorkers,
			Rate:    float64(cfg.BroadcastRate),
		},
	)

	h := handlers.NewHandlers(pgStore, sessionStore, membership.NewChecker(cfg.ChannelID), broadcasts, cfg)
	if me, err := b.GetMe(ctx); err != nil {
		log.Printf("Error getting bot info: %v", err)
	} else {
		h.SetBotUsername(me.Username)
	}

	broadcasts.Start()
	defer broadcasts.Stop()

	middlewares := middleware.NewMiddlewares(pgStore, sessionStore, cfg, cfg.ReferralBonus)
	handlerChain := middlewares.ResolveUserMiddleware(
		middlewares.SessionMiddleware(
			middlewares.AnalyzeMessageMiddleware(
				h.MainHandler,
			),
		),
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	log.Println("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)
}
