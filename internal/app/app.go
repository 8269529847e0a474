package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/catalog-admin/internal/cfg"
	v1Grpc "github.com/DRSN-tech/catalog-admin/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/catalog-admin/internal/delivery/v1/http"
	"github.com/DRSN-tech/catalog-admin/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/catalog-admin/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/catalog-admin/internal/repository/minio"
	"github.com/DRSN-tech/catalog-admin/internal/repository/pgdb"
	"github.com/DRSN-tech/catalog-admin/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/catalog-admin/internal/usecase"
	"github.com/DRSN-tech/catalog-admin/pkg/clients"
	"github.com/DRSN-tech/catalog-admin/pkg/closer"
	"github.com/DRSN-tech/catalog-admin/pkg/e"
	"github.com/DRSN-tech/catalog-admin/pkg/logger"
	"github.com/DRSN-tech/catalog-admin/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	startupTimeout      = 30 * time.Second
	kafkaTopicTimeout   = 10 * time.Second
	healthProbeInterval = 10 * time.Second
)

// App собирает все зависимости сервиса и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	db      *postgres.PgDatabase

	// healthCtx останавливает health-пробу в начале остановки,
	// cleanupCtx прерывает фоновую очистку фото, если она не успела за время остановки
	healthCtx     context.Context
	healthCancel  context.CancelFunc
	cleanupCtx    context.Context
	cleanupCancel context.CancelFunc
}

// NewApp подключается к PostgreSQL, MinIO и (если настроено) Kafka и собирает слои приложения.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0, log),
	}
	a.healthCtx, a.healthCancel = context.WithCancel(context.Background())
	a.cleanupCtx, a.cleanupCancel = context.WithCancel(context.Background())

	if err := a.init(); err != nil {
		a.shutdown()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := initPGDB(ctx, a.logger, a.cfg)
	if err != nil {
		return err
	}
	a.db = db
	a.closer.AddSync("postgres pool", db.Close)

	store := pgdb.NewCatalogStore(db.Pool, db.TxManager())
	productRepo := pgdb.NewProductRepo(store, converter.ProductConverterImpl{})
	photoRepo := pgdb.NewPhotoRepo(store, converter.PhotoConverterImpl{})
	categoryRepo := pgdb.NewCategoryRepo(store, converter.CategoryConverterImpl{})
	manufacturerRepo := pgdb.NewManufacturerRepo(store, converter.ManufacturerConverterImpl{})

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		a.logger.Errorf(err, "failed to initialize minio client")
		return err
	}
	if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName, a.logger); err != nil {
		a.logger.Errorf(err, "failed to ensure minio bucket")
		return err
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, a.cfg.Minio)
	photos := minioInfra.NewMinioInfrastructure(imageRepo, a.cfg.Minio, a.logger, a.cleanupCtx)
	a.closer.AddSync("minio cleanup cancel", a.cleanupCancel)
	a.closer.Add("minio cleanup", photos.WaitForCleanup)

	var producer usecase.EventProducer
	if a.cfg.Kafka.Enabled() {
		p := kafka.NewProducer(a.logger, a.cfg.Kafka)
		if err := p.EnsureTopic(kafkaTopicTimeout); err != nil {
			// без топика запись каталога продолжает работать, события просто не доходят
			a.logger.Warnf("kafka topic check failed: %v", err)
		}
		a.closer.Add("kafka producer", func(context.Context) error { return p.Close() })
		producer = p
	} else {
		a.logger.Infof("KAFKA_BROKERS is empty, product events are disabled")
	}

	productUC := usecase.NewProductUC(productRepo, photoRepo, store, photos, producer, a.logger)
	catalogUC := usecase.NewCatalogUC(categoryRepo, manufacturerRepo, a.logger)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	r := chi.NewRouter()
	v1Http.NewRouter(r, a.logger).Init(v1Http.Deps{
		ProductUC: productUC,
		CatalogUC: catalogUC,
		Photos:    photos,
		Health:    db,
		Cfg:       a.cfg.Http,
		Dev:       a.cfg.App.IsDev(),
	})
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)
	a.closer.Add("http server", a.httpSrv.Stop)

	return nil
}

// Run запускает HTTP и gRPC серверы и блокируется до сигнала остановки или фатальной ошибки сервера.
func (a *App) Run() error {
	errCh := make(chan error, 2)

	go a.grpcSrv.WatchHealth(a.healthCtx, a.db, healthProbeInterval)

	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("grpc server", err)
		}
	}()

	go func() {
		a.logger.Infof("HTTP server started on %s", a.httpSrv.Addr())
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- e.Wrap("http server", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case sig := <-stop:
		a.logger.Infof("received %s, stopping gracefully...", sig)
	}

	a.shutdown()
	return appErr
}

func (a *App) shutdown() {
	a.healthCancel()
	defer a.cleanupCancel()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.App.ShutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
		return
	}

	a.logger.Infof("application shutdown complete")
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
