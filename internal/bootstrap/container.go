package bootstrap

import (
	"context"
	"log"

	"storefront-admin/internal/config"
	"storefront-admin/internal/controller"
	"storefront-admin/internal/guard"
	"storefront-admin/internal/handler"
	"storefront-admin/internal/pkg/logger"
	"storefront-admin/internal/repository/contract"
	"storefront-admin/internal/repository/implementation"
	"storefront-admin/internal/repository/memory"
	"storefront-admin/internal/service"
	"storefront-admin/internal/session"
	"storefront-admin/internal/websocket"
	adminEvents "storefront-admin/pkg/admin/events"
	"storefront-admin/pkg/apiclient"
	pktNats "storefront-admin/pkg/nats"
	"storefront-admin/pkg/query"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	Config *config.Config
	Logger logger.ILogger

	// Core
	Sessions *session.Store
	Guard    *guard.RouteGuard
	API      *apiclient.Client
	Cache    *query.Cache

	// Services (shared by the HTTP surface and the CLI)
	AuthService     service.IAuthService
	UserService     service.IUserService
	ProductService  service.IProductService
	CategoryService service.ICategoryService

	// Controllers
	AuthController     controller.IAuthController
	UserController     controller.IUserController
	ProductController  controller.IProductController
	CategoryController controller.ICategoryController

	// Live feed
	RealtimeHandler  *handler.RealtimeHandler
	WebSocketHub     *websocket.Hub
	BroadcastService service.IBroadcastService

	closers []func()
}

type options struct {
	logger  logger.ILogger
	backend contract.KeyValueStore
}

type Option func(*options)

// WithLogger replaces the file/console logger, e.g. with logger.NewNopLogger.
func WithLogger(l logger.ILogger) Option {
	return func(o *options) { o.logger = l }
}

// WithSessionBackend bypasses SESSION_BACKEND.
func WithSessionBackend(b contract.KeyValueStore) Option {
	return func(o *options) { o.backend = b }
}

func NewContainer(cfg *config.Config, opts ...Option) *Container {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Container{Config: cfg}

	// 1. Logging
	sysLogger := o.logger
	if sysLogger == nil {
		sysLogger = logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	}
	c.Logger = sysLogger

	// 2. Infrastructure
	var rdb *redis.Client
	if cfg.Session.Backend == config.SessionBackendRedis && o.backend == nil {
		rdb = newRedisClient(cfg.App.RedisURL)
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	backend := o.backend
	if backend == nil {
		backend = newSessionBackend(cfg, rdb)
	}

	var natsPub *pktNats.Publisher
	if cfg.Audit.Enabled {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			c.closers = append(c.closers, pub.Close)
		}
	}

	// 3. Session, client, cache
	c.Sessions = session.NewStore(backend, cfg.Session.Key, sysLogger)
	c.Guard = guard.New(c.Sessions, sysLogger)

	c.API = apiclient.New(cfg.API.BaseURL,
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithInterceptor(c.Sessions.AuthInterceptor()),
		apiclient.WithLogger(sysLogger),
	)

	c.Cache = query.New(query.Options{
		StaleTime:  cfg.Query.StaleTime,
		GCTime:     cfg.Query.GCTime,
		Retry:      cfg.Query.Retry,
		RetryDelay: cfg.Query.RetryDelay,
		RetryIf:    apiclient.IsRetryable,
		Logger:     sysLogger,
	})
	c.closers = append(c.closers, c.Cache.Close)

	auditPublisher := adminEvents.NewNatsPublisher(natsPub, sysLogger)
	c.Cache.OnMutation(auditPublisher.Hook())

	// 4. Services
	c.AuthService = service.NewAuthService(c.API, c.Sessions, c.Cache, sysLogger)
	c.UserService = service.NewUserService(c.API, c.Cache, sysLogger)
	c.CategoryService = service.NewCategoryService(c.API, c.Cache, sysLogger)
	c.ProductService = service.NewProductService(c.API, c.Cache, c.CategoryService, sysLogger)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(c.AuthService, cfg.UI)
	c.UserController = controller.NewUserController(c.UserService, cfg.UI)
	c.ProductController = controller.NewProductController(c.ProductService, cfg.UI)
	c.CategoryController = controller.NewCategoryController(c.CategoryService, cfg.UI)

	// 6. Live feed
	wsLogger := sysLogger
	if o.logger == nil {
		wsLogger = logger.NewIsolatedLogger(cfg.App.RealtimeLogPath)
	}
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	c.RealtimeHandler = handler.NewRealtimeHandler(c.WebSocketHub, wsLogger)

	pubSub := service.NewDashboardBus(watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { pubSub.Close() })
	c.BroadcastService = service.NewBroadcastService(pubSub, c.Cache, c.Sessions, c.WebSocketHub, sysLogger)

	return c
}

// StartBackground runs the live feed until ctx ends.
func (c *Container) StartBackground(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)
	return c.BroadcastService.Start(ctx)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	c.BroadcastService.Stop()
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newRedisClient(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	return rdb
}

func newSessionBackend(cfg *config.Config, rdb *redis.Client) contract.KeyValueStore {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		return implementation.NewRedisKeyValueStore(rdb)
	case config.SessionBackendMemory:
		return memory.NewKeyValueStore()
	default:
		return implementation.NewFileKeyValueStore(cfg.Session.FilePath)
	}
}
