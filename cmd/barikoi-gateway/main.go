package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/barikoi/barikoi-go/geofence"
	"github.com/barikoi/barikoi-go/internal/api"
	"github.com/barikoi/barikoi-go/internal/cache"
	"github.com/barikoi/barikoi-go/internal/config"
	"github.com/barikoi/barikoi-go/internal/events"
	"github.com/barikoi/barikoi-go/internal/metrics"
	"github.com/barikoi/barikoi-go/internal/watch"
	"github.com/barikoi/barikoi-go/internal/ws"
	"github.com/barikoi/barikoi-go/transport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conf, err := config.New()
	if err != nil {
		return err
	}

	var loggerOpts slog.HandlerOptions
	if conf.Env == config.EnvDev {
		loggerOpts = slog.HandlerOptions{Level: slog.LevelDebug}
	}

	jsonHandler := slog.NewJSONHandler(os.Stdout, &loggerOpts)
	logger := slog.New(jsonHandler)

	m := metrics.New()
	redisClient := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(conf.RedisHost, conf.RedisPort)})
	defer redisClient.Close()

	clientOpts := transport.DefaultClientOptions()
	clientOpts.Timeout = conf.Timeout
	clientOpts.Logger = logger
	clientOpts.Cache = cache.NewRedisResponseCache(redisClient)
	clientOpts.CacheTTL = conf.CacheTTL
	clientOpts.Observer = m
	if conf.RateLimit > 0 {
		clientOpts.Limiter = rate.NewLimiter(rate.Limit(conf.RateLimit), max(1, int(conf.RateLimit)))
	}
	client := transport.NewClient(conf.APIKey, conf.BaseURL, clientOpts)

	watcherOpts := watch.DefaultWatcherOptions()
	watcherOpts.MinMoveMeters = conf.WatchMinMoveMeters
	watcherOpts.Publisher = events.NewPublisher(redisClient, conf.RedisEventsChannel)
	watcherOpts.Observer = m
	sessionCache := cache.NewRedisSessionCache(redisClient, conf.SessionTTL)
	watcher := watch.NewWatcher(geofence.NewService(client), sessionCache, logger, watcherOpts)

	wsManager := ws.NewManager(ctx, logger, watcher, m)
	go wsManager.Start()
	defer wsManager.Shutdown()

	// Transitions may be detected by another gateway instance, so they are
	// delivered through the events channel rather than directly.
	sub := events.NewSubscriber(logger, redisClient, conf.RedisEventsChannel, func(_ context.Context, event events.Event) {
		msg, err := ws.NewMessage(ws.MessageTransition, event)
		if err != nil {
			logger.Warn("failed to build transition message", "sessionID", event.SessionID, "error", err)
			return
		}
		if !wsManager.SendTo(event.SessionID, msg) {
			logger.Debug("transition for a session not connected here", "sessionID", event.SessionID)
		}
	})
	go func() {
		if err := sub.Start(ctx); err != nil {
			logger.Error("subscriber stopped with error", "error", err)
		}
	}()

	server := api.NewServer(conf, wsManager, m.Handler(), logger)
	if err := server.Start(ctx); err != nil {
		return err
	}

	return nil
}
