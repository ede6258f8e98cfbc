package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	_ "time/tzdata" // Europe/Moscow в контейнерах без zoneinfo

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "github.com/mattn/go-sqlite3"    // sqlite3 driver
	"github.com/redis/go-redis/v9"

	"relay-bot/api/internal/config"
	"relay-bot/api/internal/conversation"
	"relay-bot/api/internal/httpserver"
	"relay-bot/api/internal/logging"
	"relay-bot/api/internal/media"
	"relay-bot/api/internal/operators"
	"relay-bot/api/internal/schedule"
	"relay-bot/api/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("bot stopped", "error", err)
		os.Exit(1)
	}
	log.Info("bot stopped")
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	store, closeStore, err := openOperatorStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	reg, err := operators.Load(ctx, store, cfg.Operators)
	if err != nil {
		return err
	}
	log.Info("operators loaded", "store", cfg.OperatorStore, "operators", reg.List())

	// --- Telegram bot ---
	bot, err := connect(ctx, cfg.TelegramBotToken, cfg.PollRetryDelay, log)
	if err != nil {
		return err
	}
	log.Info("authorized", "bot", bot.Self.UserName)

	conv := conversation.NewMachine(conversation.RateGate{Cooldown: cfg.Cooldown()}, nil)
	r := telegram.NewRouter(bot, reg, conv, telegram.Options{
		Location: cfg.Location(),
		Cooldown: cfg.Cooldown(),
		Log:      log,
		MediaOptions: []media.Option{
			media.WithDelay(cfg.MediaGroupDelay),
			media.WithTombstone(cfg.MediaGroupTombstone),
		},
	})

	cron, err := schedule.New(cfg.ClearSchedule, cfg.Location(), log,
		schedule.Job{Name: "clear_tables", Run: r.Clear})
	if err != nil {
		return err
	}

	srv := httpserver.New(net.JoinHostPort("0.0.0.0", cfg.Port), func() any { return r.Stats() }, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cron.Run(ctx)
	}()

	// --- Choose mode: Webhook vs Polling ---
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		if err := registerWebhook(ctx, bot, srv, r, webhookURL, log); err != nil {
			cancel()
			wg.Wait()
			return err
		}
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runPolling(ctx, bot, cfg.PollRetryDelay, log, func(upd tgbotapi.Update) {
				r.HandleUpdate(ctx, upd)
			})
		}()
	}

	// health server нужен в обоих режимах; его ошибка останавливает всё
	err = srv.Run(ctx)
	cancel()
	wg.Wait()
	return err
}

// connect retries getMe until it succeeds or ctx is done.
func connect(ctx context.Context, token string, retry time.Duration, log *slog.Logger) (*tgbotapi.BotAPI, error) {
	for {
		bot, err := tgbotapi.NewBotAPI(token)
		if err == nil {
			bot.Debug = false
			return bot, nil
		}
		d := max(retry, retryDelayFromError(err))
		log.Error("telegram connect failed", "error", err, "retry_in", d)
		if !sleepCtx(ctx, d) {
			return nil, ctx.Err()
		}
	}
}

// ---------------- Webhook -----------------

func registerWebhook(ctx context.Context, bot *tgbotapi.BotAPI, srv *httpserver.Server, r *telegram.Router, baseURL string, log *slog.Logger) error {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	// апдейты обрабатываются по одному, как и в режиме поллинга
	updates := make(chan tgbotapi.Update, 100)
	srv.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Warn("bad webhook request", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		select {
		case updates <- *upd:
		case <-req.Context().Done():
		}
	}))
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd := <-updates:
				r.HandleUpdate(ctx, upd)
			}
		}
	}()

	log.Info("webhook registered", "path", path)
	return nil
}

// ---------------- Operator store -----------------

func openOperatorStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (operators.Store, func(), error) {
	switch operators.StoreType(cfg.OperatorStore) {
	case operators.StoreTypePostgres:
		dsn := resolveDSN(cfg.DatabaseURL)
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(1 * time.Hour)
		if err := ping(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("db.Ping: %w", err)
		}
		log.Info("db connected", "dsn", safeDSNSummary(dsn))
		return sqlStore(ctx, operators.StoreTypePostgres, db)

	case operators.StoreTypeSQLite:
		db, err := sql.Open("sqlite3", cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		// sqlite не любит параллельную запись
		db.SetMaxOpenConns(1)
		log.Info("sqlite opened", "path", cfg.SQLitePath)
		return sqlStore(ctx, operators.StoreTypeSQLite, db)

	case operators.StoreTypeRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url: %w", err)
		}
		client := redis.NewClient(opt)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		log.Info("redis connected", "addr", opt.Addr, "db", opt.DB)
		s, err := operators.NewStore(ctx, operators.StoreTypeRedis, operators.WithRedisClient(client))
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		s, err := operators.NewStore(ctx, operators.StoreTypeFile, operators.WithFilePath(cfg.File))
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	}
}

func sqlStore(ctx context.Context, t operators.StoreType, db *sql.DB) (operators.Store, func(), error) {
	s, err := operators.NewStore(ctx, t, operators.WithDB(db))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, func() {
		_ = s.Close()
		_ = db.Close()
	}, nil
}

func ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// ---------------- Helpers -----------------

func resolveDSN(databaseURL string) string {
	// Prefer DATABASE_URL if provided
	if v := strings.TrimSpace(databaseURL); v != "" {
		return v
	}
	// Build DSN from POSTGRES_* / PG* env vars (single-container default)
	user := getenvDefault("POSTGRES_USER", "relay")
	pass := os.Getenv("POSTGRES_PASSWORD")
	host := getenvDefault("PGHOST", "db")
	port := getenvDefault("PGPORT", "5432")
	db := getenvDefault("POSTGRES_DB", "relay")

	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, pass),
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + db,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func getenvDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func shortHash(s string) string {
	// лёгкий хэш для пути вебхука (не крипто, но стабильно для токена)
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return fmt.Sprintf("%016x", h)
}

func safeDSNSummary(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "dsn: parse error"
	}
	user := u.User.Username()
	host := u.Host
	port := ""
	if h, p, err := net.SplitHostPort(u.Host); err == nil {
		host, port = h, p
	}
	db := strings.TrimPrefix(u.Path, "/")
	if port == "" {
		return fmt.Sprintf("host=%s db=%s user=%s", host, db, user)
	}
	return fmt.Sprintf("host=%s port=%s db=%s user=%s", host, port, db, user)
}
