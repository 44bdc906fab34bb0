package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"family-drive-go/internal/config"
	"family-drive-go/internal/db"
	drivedomain "family-drive-go/internal/domain/drive"
	familydomain "family-drive-go/internal/domain/family"
	"family-drive-go/internal/domain/identity"
	userdomain "family-drive-go/internal/domain/user"
	"family-drive-go/internal/repository/inmemory"
	driverepo "family-drive-go/internal/repository/postgres/drive"
	familyrepo "family-drive-go/internal/repository/postgres/family"
	userrepo "family-drive-go/internal/repository/postgres/user"
	redisrepo "family-drive-go/internal/repository/redis"
	"family-drive-go/internal/storage"
	"family-drive-go/internal/transport/httpserver"
	"family-drive-go/internal/transport/httpserver/handler"
	commonhandler "family-drive-go/internal/transport/httpserver/handler/common"
	drivehandler "family-drive-go/internal/transport/httpserver/handler/drive"
	"family-drive-go/pkg/logger"
	"family-drive-go/pkg/metrics"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	httpServer *http.Server
	db         *gorm.DB
	redis      *goredis.Client
}

// Deps are the external resources the HTTP stack is built on.
type Deps struct {
	DB      *gorm.DB
	Cache   familydomain.Cache
	Objects storage.ObjectStore
	Metrics *metrics.Metrics
}

func New(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	application := &App{cfg: cfg, log: log, db: dbConn}

	cache, err := application.membershipCache(ctx)
	if err != nil {
		_ = application.Close()
		return nil, err
	}

	objects, err := newObjectStore(ctx, cfg.Storage, log)
	if err != nil {
		_ = application.Close()
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	log.Info("app: initializing router")
	router := NewHandler(cfg, Deps{DB: dbConn, Cache: cache, Objects: objects, Metrics: m}, log)

	log.Info("app: initializing http server")
	application.httpServer = httpserver.New(cfg, router)
	return application, nil
}

// NewHandler wires repositories, services and handlers into the router.
func NewHandler(cfg config.Config, deps Deps, log logger.Logger) http.Handler {
	users := userdomain.NewService(userrepo.NewPostgres(deps.DB))
	families := familydomain.NewService(familyrepo.NewPostgres(deps.DB), deps.Cache, cfg.Membership.CacheTTL, log)
	resolver := identity.NewResolver(users, families, log)

	var recorder drivedomain.Recorder
	var purgeObserver drivehandler.PurgeObserver
	if deps.Metrics != nil {
		recorder = deps.Metrics
		purgeObserver = deps.Metrics
	}
	drive := drivedomain.NewService(driverepo.NewPostgres(deps.DB), families, recorder, log)

	objects := deps.Objects
	if objects == nil {
		objects = storage.NoopStore{}
	}
	purger := storage.NewPurger(objects, cfg.Storage.PurgeConcurrency, log)

	handlers := handler.New(
		commonhandler.New(families, log),
		drivehandler.New(drive, objects, purger, purgeObserver, log),
	)
	return httpserver.NewRouter(cfg, handlers, resolver, deps.Metrics, log)
}

func (a *App) membershipCache(ctx context.Context) (familydomain.Cache, error) {
	switch a.cfg.Membership.Cache {
	case config.CacheRedis:
		a.log.Info("app: connecting to redis", "addr", a.cfg.Redis.Addr, "db", a.cfg.Redis.DB)
		client, err := redisrepo.NewClient(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		return redisrepo.NewMembershipCache(client, a.log), nil
	case config.CacheNone:
		return nil, nil
	default:
		return inmemory.NewMembershipCache(), nil
	}
}

func newObjectStore(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (storage.ObjectStore, error) {
	if !cfg.Enabled() {
		log.Warn("app: storage bucket not configured, object checks and purges are disabled")
		return storage.NoopStore{}, nil
	}

	log.Info("app: initializing object storage", "bucket", cfg.Bucket, "endpoint", cfg.Endpoint)
	store, err := storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.Bucket,
		Region:    cfg.Region,
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	return store, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Migrate applies pending SQL migrations.
func (a *App) Migrate() ([]string, error) {
	return db.Migrate(a.db, a.log)
}

func (a *App) Close() error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			errs = append(errs, err)
		} else {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
