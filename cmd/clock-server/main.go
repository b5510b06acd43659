package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcfg "github.com/park285/baduk-clock/internal/config"
	"github.com/park285/baduk-clock/internal/msgcat"
	"github.com/park285/baduk-clock/internal/notify"
	"github.com/park285/baduk-clock/internal/obslog"
	"github.com/park285/baduk-clock/internal/server"
	"github.com/park285/baduk-clock/internal/session"
	"github.com/park285/baduk-clock/internal/settings"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		obslog.L().Fatal("redis_url_error", zap.Error(err))
	}
	rdb := redis.NewClient(redisOpts)
	pctx, pcancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pctx).Err(); err != nil {
		pcancel()
		obslog.L().Fatal("redis_connect_error", zap.Error(err))
	}
	pcancel()

	cat, err := msgcat.New(cfg.MsgTemplateDir)
	if err != nil {
		obslog.L().Fatal("msgcat_error", zap.Error(err))
	}

	var sink notify.Sink = notify.Nop{}
	var webhook *notify.Webhook
	if cfg.WebhookURL != "" {
		webhook, err = notify.NewWebhook(cfg.WebhookURL)
		if err != nil {
			obslog.L().Fatal("webhook_error", zap.Error(err))
		}
		sink = webhook
	}

	mgr := session.NewManager(rdb, clockwork.NewRealClock(), session.Options{
		TickInterval: cfg.TickInterval,
		Sink:         sink,
		Catalog:      cat,
	})

	var repo *session.Repository
	if cfg.DatabaseURL != "" {
		repo, err = session.NewRepository(cfg.DatabaseURL)
		if err != nil {
			obslog.L().Fatal("repository_error", zap.Error(err))
		}
		mgr.AttachRepository(repo)
	}

	store := settings.NewStore(rdb, settings.Settings{
		TimeControl: cfg.DefaultTimeControl,
		Sound:       cfg.SoundDefault,
	})

	srv := server.New(cfg.ListenAddr, mgr, store, cfg.DefaultTimeControl)
	go func() {
		if err := srv.Start(); err != nil {
			obslog.L().Fatal("http_serve_error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	obslog.L().Info("shutdown_begin")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	mgr.Close()
	if webhook != nil {
		webhook.Close()
	}
	if repo != nil {
		_ = repo.Close()
	}
	_ = rdb.Close()
	obslog.L().Info("shutdown_done")
}
