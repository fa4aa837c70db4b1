package cmd

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/gundriai/merovote-app/internal/api"
	"github.com/gundriai/merovote-app/internal/auth"
	"github.com/gundriai/merovote-app/internal/config"
	"github.com/gundriai/merovote-app/internal/credstore"
	"github.com/gundriai/merovote-app/internal/events"
	"github.com/gundriai/merovote-app/internal/logging"
	"github.com/gundriai/merovote-app/internal/querycache"
	"github.com/gundriai/merovote-app/internal/session"
)

// runtime bundles the wired client stack shared by all commands.
type runtime struct {
	cfg       *config.Config
	zapLogger *zap.Logger
	logger    *logging.Logger
	creds     credstore.Store
	client    *api.Client
	auth      *auth.Manager
	session   *session.Session
	bus       *events.Bus
	publisher events.Publisher
	redis     *redis.Client

	closers []func() error
}

// loginAdapter bridges the API client's login surface to the auth manager.
type loginAdapter struct {
	client *api.Client
}

func (a loginAdapter) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	resp, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return &auth.LoginResult{
		Token:        resp.Token,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}, nil
}

func (a loginAdapter) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

func newRuntime() (*runtime, error) {
	cfg := GetConfig()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger := logging.NewLogger(zapLogger)

	r := &runtime{
		cfg:       cfg,
		zapLogger: zapLogger,
		logger:    logger,
	}

	creds, err := credstore.NewBadgerStore(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	r.creds = creds
	r.closers = append(r.closers, creds.Close)

	r.client = api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, creds, logger)
	r.auth = auth.NewManager(loginAdapter{client: r.client}, creds, logger)

	cache, err := r.buildCache()
	if err != nil {
		return nil, err
	}

	external, err := r.buildPublisher()
	if err != nil {
		return nil, err
	}

	// Every mutation also goes over the in-process bus so this process can
	// observe its own events.
	r.bus = events.NewBus()
	r.subscribeBusLogging()
	r.publisher = events.Multi(r.bus, external)
	r.closers = append(r.closers, r.publisher.Close)

	r.session = session.New(r.client, cache, r.publisher, r.auth.UserID, logger)
	return r, nil
}

func (r *runtime) subscribeBusLogging() {
	for _, eventType := range []string{events.TypeVoteCast, events.TypeCommentPosted, events.TypeCommentReacted} {
		r.bus.Subscribe(eventType, func(env events.Envelope) {
			r.logger.Debug("event published",
				zap.String("type", env.Type),
				zap.Time("at", env.Timestamp),
			)
		})
	}
}

func (r *runtime) buildCache() (querycache.Cache, error) {
	switch r.cfg.Cache.Backend {
	case "redis":
		client, err := r.connectRedis()
		if err != nil {
			return nil, err
		}
		return querycache.NewRedisCache(client, r.cfg.Cache.StaleTime), nil
	default:
		return querycache.NewMemoryCache(r.cfg.Cache.StaleTime), nil
	}
}

func (r *runtime) buildPublisher() (events.Publisher, error) {
	switch r.cfg.Events.Publisher {
	case "redis":
		client, err := r.connectRedis()
		if err != nil {
			return nil, err
		}
		return events.NewRedisPublisher(client, r.zapLogger), nil
	case "rabbitmq":
		return events.NewRabbitMQPublisher(
			r.cfg.RabbitMQ.Host,
			r.cfg.RabbitMQ.Port,
			r.cfg.RabbitMQ.User,
			r.cfg.RabbitMQ.Password,
			r.cfg.RabbitMQ.VHost,
			r.zapLogger,
		)
	default:
		return events.NopPublisher{}, nil
	}
}

// connectRedis returns the shared redis client, connecting on first use.
// The runtime owns it and closes it exactly once.
func (r *runtime) connectRedis() (*redis.Client, error) {
	if r.redis != nil {
		return r.redis, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", r.cfg.Redis.Host, r.cfg.Redis.Port),
		Password: r.cfg.Redis.Password,
		DB:       r.cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	r.redis = client
	r.closers = append(r.closers, client.Close)
	return client, nil
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			r.logger.Error("Failed to close resource", err)
		}
	}
	_ = r.zapLogger.Sync()
}
