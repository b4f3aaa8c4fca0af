package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/circley-tech/storefront/internal/cfg"
	v1Grpc "github.com/circley-tech/storefront/internal/delivery/v1/grpc"
	v1Http "github.com/circley-tech/storefront/internal/delivery/v1/http"
	"github.com/circley-tech/storefront/internal/infrastructure/kafka"
	minioInfra "github.com/circley-tech/storefront/internal/infrastructure/minio"
	"github.com/circley-tech/storefront/internal/pricing"
	s3Repo "github.com/circley-tech/storefront/internal/repository/minio"
	"github.com/circley-tech/storefront/internal/repository/pgdb"
	pgdbConv "github.com/circley-tech/storefront/internal/repository/pgdb/converter"
	"github.com/circley-tech/storefront/internal/repository/redis"
	redisConv "github.com/circley-tech/storefront/internal/repository/redis/converter"
	"github.com/circley-tech/storefront/internal/usecase"
	"github.com/circley-tech/storefront/pkg/closer"
	"github.com/circley-tech/storefront/pkg/clients"
	"github.com/circley-tech/storefront/pkg/e"
	"github.com/circley-tech/storefront/pkg/logger"
	"github.com/circley-tech/storefront/pkg/postgres"
	"github.com/circley-tech/storefront/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	topicTimeout    = 10 * time.Second
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv      *v1Http.Server
	grpcSrv      *v1Grpc.GRPCServer
	outboxWorker *kafka.OutboxWorker

	// stopBackground отменяет фоновые задачи (воркер outbox, очистку MinIO).
	backgroundCtx  context.Context
	stopBackground context.CancelFunc
}

// NewApp поднимает все зависимости. При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (app *App, err error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0, log),
	}
	a.backgroundCtx, a.stopBackground = context.WithCancel(context.Background())

	defer func() {
		if err != nil {
			a.stopBackground()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if cerr := a.closer.Close(ctx); cerr != nil {
				log.Warnf("cleanup after failed start: %v", cerr)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := initPGDB(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", redisClient.Close)
	if err := redisClient.Ping(ctx); err != nil {
		log.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		log.Errorf(err, "failed to initialize minio client")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if err := clients.EnsureBucket(ctx, minioClient, cfg.Minio.BucketName); err != nil {
		log.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	producer := kafka.NewProducer(log, cfg.Kafka)
	a.closer.Add("kafka producer", producer.Close)
	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// Outbox переживёт недоступность Kafka: события дождутся публикации в таблице.
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	var (
		txManager = tr.NewManager(db.Pool)
		engine    = pricing.NewEngine(cfg.Store.Location)
		encoder   = kafka.NewProtoEncoder()

		categoryRepo  = pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
		productRepo   = pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
		customerRepo  = pgdb.NewCustomerRepo(db.Pool, pgdbConv.CustomerConverter{})
		promotionRepo = pgdb.NewPromotionRepo(db.Pool, pgdbConv.PromotionConverter{})
		cartRepo      = pgdb.NewCartRepo(db.Pool, pgdbConv.CartConverter{})
		orderRepo     = pgdb.NewOrderRepo(db.Pool, pgdbConv.OrderConverter{})
		outboxRepo    = pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
		newsRepo      = pgdb.NewNewsRepo(db.Pool, pgdbConv.NewsConverter{})
		contactRepo   = pgdb.NewContactMessageRepo(db.Pool, pgdbConv.ContactMessageConverter{})
		cacheRepo     = redis.NewCacheRepo(redisClient, redisConv.ProductInfoConverter{}, cfg.Redis, log)
		imageRepo     = s3Repo.NewImageRepo(minioClient, cfg.Minio)
	)

	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, cfg.Minio, log, a.backgroundCtx)
	a.closer.Add("minio cleanup", imagesInfra.WaitForCleanup)

	a.outboxWorker = kafka.NewOutboxWorker(outboxRepo, log, producer, cfg.Kafka.OutboxBatchSize, postgres.DSN(cfg.Db))
	a.closer.Add("outbox worker", a.outboxWorker.Stop)

	useCases := v1Http.UseCases{
		Cart:      usecase.NewCartUC(cartRepo, productRepo, promotionRepo, cacheRepo, txManager, engine, log),
		Checkout:  usecase.NewCheckoutUC(cartRepo, promotionRepo, orderRepo, customerRepo, outboxRepo, encoder, txManager, engine, log),
		Order:     usecase.NewOrderUC(orderRepo, outboxRepo, encoder, txManager, engine, log),
		Catalog:   usecase.NewCatalogUC(productRepo, categoryRepo, promotionRepo, cacheRepo, imagesInfra, txManager, engine, log),
		Promotion: usecase.NewPromotionUC(promotionRepo, productRepo, txManager, engine, log),
		Customer: usecase.NewCustomerUC(
			customerRepo, productRepo, orderRepo, promotionRepo, cartRepo, contactRepo, cacheRepo, txManager, engine, log,
		),
		News:    usecase.NewNewsUC(newsRepo, engine, log),
		Contact: usecase.NewContactUC(contactRepo, log),
	}

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log,
		v1Grpc.Dependency{Name: "postgres", Ping: db.Ping},
		v1Grpc.Dependency{Name: "redis", Ping: redisClient.Ping},
	)
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(useCases)
	a.httpSrv = v1Http.NewServer(r, cfg.Http, log)
	a.closer.Add("http server", a.httpSrv.Stop)

	return a, nil
}

// Run блокируется до сигнала остановки или падения одного из серверов.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()

	go func() {
		if err := a.httpSrv.Run(); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()

	a.outboxWorker.Start(a.backgroundCtx)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received %s, stopping gracefully", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := a.closer.Close(ctx)
	a.stopBackground()
	if closeErr != nil {
		a.logger.Errorf(closeErr, "shutdown finished with errors")
	}

	a.logger.Infof("application shutdown complete")
	if appErr != nil {
		return appErr
	}
	return closeErr
}

func initPGDB(ctx context.Context, log logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(log); err != nil {
		log.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
