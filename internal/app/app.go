package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	emailadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/filecache"
	firestoreadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/firestore"
	gcsadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/gcs"
	minioadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/minio"
	mongoadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/mongo"
	natsadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/nats"
	redisadapter "github.com/Abdurahmanit/GroupProject/photocard-service/internal/adapter/redis"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/auth"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/imaging"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/platform/tracer"
	grpcserver "github.com/Abdurahmanit/GroupProject/photocard-service/internal/port/grpc"
	httpport "github.com/Abdurahmanit/GroupProject/photocard-service/internal/port/http"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/repository"
	"github.com/Abdurahmanit/GroupProject/photocard-service/internal/service"
)

// remoteSubjects are the event subjects applied from other instances.
var remoteSubjects = []string{"market.>", "photocard.>"}

type repositories struct {
	market     repository.MarketRepository
	photocards repository.PhotocardRepository
	users      repository.UserRepository
	catalog    repository.CatalogRepository
}

type App struct {
	cfg             *config.Config
	log             logger.Logger
	httpServer      *httpport.Server
	grpcServer      *grpcserver.Server
	metricsServer   *metrics.Server
	sessions        *service.SessionManager
	mongoClient     *mongo.Client
	firestoreClient *firestore.Client
	redisClient     *redis.Client
	natsConn        *nats.Conn
	subscriber      *natsadapter.Subscriber
	gcsStore        *gcsadapter.ObjectStore
	shutdownTracer  tracer.ShutdownFunc
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger, err := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s, GRPC Port: %s",
		cfg.Env, cfg.HTTPServer.Port, cfg.GRPCServer.Port)

	a := &App{cfg: cfg, log: appLogger}

	instanceID := cfg.InstanceID
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	appLogger.Infof("Instance id: %s", instanceID)

	shutdownTracer, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracer: %w", err)
	}
	a.shutdownTracer = shutdownTracer

	appMetrics := metrics.NewMetricsManager(cfg.Metrics.Namespace)
	a.metricsServer = metrics.NewServer(cfg.Metrics.Port, appMetrics.Registry, appLogger)

	repos, err := a.initStorage(ctx)
	if err != nil {
		a.closeClients(ctx)
		return nil, err
	}

	objects, err := a.initObjectStore(ctx)
	if err != nil {
		a.closeClients(ctx)
		return nil, err
	}

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("failed to initialize Redis client: %w", err)
	}
	a.redisClient = redisClient
	appLogger.Info("Redis client initialized successfully")

	localImages, err := filecache.New(cfg.ImageCache.Dir)
	if err != nil {
		a.closeClients(ctx)
		return nil, fmt.Errorf("failed to initialize image cache: %w", err)
	}

	verifier, err := newVerifier(ctx, cfg.Auth)
	if err != nil {
		a.closeClients(ctx)
		return nil, err
	}
	appLogger.Infof("Auth provider: %s", cfg.Auth.Provider)

	var publisher service.EventPublisher
	if cfg.NATS.URL != "" {
		conn, err := natsadapter.NewConnection(cfg.NATS, instanceID, appLogger)
		if err != nil {
			a.closeClients(ctx)
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.natsConn = conn
		natsPublisher, err := natsadapter.NewNATSPublisher(conn, cfg.NATS.SubjectPrefix)
		if err != nil {
			a.closeClients(ctx)
			return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		publisher = natsPublisher
	} else {
		appLogger.Warn("NATS URL is empty, market events are not published")
	}

	var receipts service.ReceiptService
	if cfg.SMTP.Enabled() {
		sender, err := emailadapter.NewSMTPSender(cfg.SMTP, appLogger)
		if err != nil {
			a.closeClients(ctx)
			return nil, fmt.Errorf("failed to initialize SMTP sender: %w", err)
		}
		receipts = service.NewReceiptService(sender, appLogger)
	} else {
		receipts = service.NewReceiptService(nil, appLogger)
	}

	mc := cfg.Market
	sessions := service.NewSessionManager(appLogger, appMetrics)
	a.sessions = sessions
	resolver := service.NewPhotocardResolver(repos.photocards, redisadapter.NewPhotocardCache(redisClient), mc.PhotocardCacheTTL, appLogger)
	images := service.NewImageService(
		objects,
		localImages,
		imaging.NewNormalizer(cfg.ImageCache.MaxEdge, cfg.ImageCache.JPEGQuality),
		mc.ImageMaxBytes,
		appMetrics,
		appLogger,
	)
	marketService := service.NewMarketService(repos.market, resolver, images, mc.ResolveConcurrency, appLogger)
	listingService := service.NewListingService(
		repos.market, repos.photocards, repos.users, resolver, images, sessions,
		publisher, instanceID, receipts, appMetrics, mc.ResolveConcurrency, appLogger,
	)
	photocardService := service.NewPhotocardService(
		repos.photocards, repos.users, repos.catalog, resolver, images, listingService,
		publisher, instanceID, appMetrics, cfg.Objects.Prefix, mc.ResolveConcurrency, appLogger,
	)
	profileService := service.NewProfileService(repos.users, repos.catalog, resolver, images, mc.ResolveConcurrency, appLogger)
	featuredService := service.NewFeaturedService(repos.market, repos.users, resolver, images, mc.FeaturedCap, nil, appLogger)

	if a.natsConn != nil {
		applier := service.NewEventApplier(instanceID, sessions, photocardService, appLogger)
		a.subscriber = natsadapter.NewSubscriber(a.natsConn, cfg.NATS.SubjectPrefix, appLogger)
		for _, subject := range remoteSubjects {
			if err := a.subscriber.Subscribe(subject, applier.HandleRemote); err != nil {
				a.closeClients(ctx)
				return nil, err
			}
		}
	}

	zl := appLogger.Desugar()
	router := httpport.NewRouter(httpport.Handlers{
		Market:     httpport.NewMarketHandler(marketService, featuredService, zl),
		Listings:   httpport.NewListingHandler(listingService, zl),
		Photocards: httpport.NewPhotocardHandler(photocardService, mc.ImageMaxBytes, zl),
		Profiles:   httpport.NewProfileHandler(profileService, zl),
		Stream:     httpport.NewStreamHandler(cfg.HTTPServer.AllowedOrigins, zl),
	}, verifier, sessions, appMetrics, appLogger)

	hs := cfg.HTTPServer
	a.httpServer = httpport.NewServer(appLogger, hs.Port, router, hs.ReadTimeout, hs.WriteTimeout, hs.IdleTimeout, hs.TimeoutGraceful)
	a.grpcServer = grpcserver.NewServer(appLogger, cfg.GRPCServer.Port, cfg.GRPCServer.TimeoutGraceful, cfg.GRPCServer.MaxConnectionIdle)
	appLogger.Info("Servers created")

	return a, nil
}

func (a *App) initStorage(ctx context.Context) (repositories, error) {
	switch a.cfg.Storage.Driver {
	case config.StorageDriverFirestore:
		a.log.Info("Initializing Firestore client...")
		client, err := firestoreadapter.NewClient(ctx, a.cfg.Firestore)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to initialize Firestore client: %w", err)
		}
		a.firestoreClient = client
		a.log.Info("Firestore client initialized successfully")
		return repositories{
			market:     firestoreadapter.NewMarketRepository(client),
			photocards: firestoreadapter.NewPhotocardRepository(client),
			users:      firestoreadapter.NewUserRepository(client),
			catalog:    firestoreadapter.NewCatalogRepository(client),
		}, nil
	case config.StorageDriverMongo, "":
		a.log.Info("Initializing MongoDB client...")
		client, err := mongoadapter.NewClient(ctx, a.cfg.MongoDB)
		if err != nil {
			return repositories{}, fmt.Errorf("failed to initialize MongoDB client: %w", err)
		}
		a.mongoClient = client
		if err := mongoadapter.EnsureIndexes(ctx, client, a.cfg.MongoDB); err != nil {
			return repositories{}, fmt.Errorf("failed to create MongoDB indexes: %w", err)
		}
		a.log.Info("MongoDB client initialized successfully")
		return repositories{
			market:     mongoadapter.NewMarketRepository(client, a.cfg.MongoDB),
			photocards: mongoadapter.NewPhotocardRepository(client, a.cfg.MongoDB),
			users:      mongoadapter.NewUserRepository(client, a.cfg.MongoDB),
			catalog:    mongoadapter.NewCatalogRepository(client, a.cfg.MongoDB),
		}, nil
	}
	return repositories{}, fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
}

func (a *App) initObjectStore(ctx context.Context) (repository.ObjectStore, error) {
	switch a.cfg.Objects.Driver {
	case config.ObjectDriverGCS:
		store, err := gcsadapter.NewObjectStore(ctx, a.cfg.GCS)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCS object store: %w", err)
		}
		a.gcsStore = store
		return store, nil
	case config.ObjectDriverMinio, "":
		store, err := minioadapter.NewObjectStore(ctx, a.cfg.Minio, a.log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize MinIO object store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown object store driver %q", a.cfg.Objects.Driver)
}

func newVerifier(ctx context.Context, cfg config.AuthConfig) (auth.TokenVerifier, error) {
	switch cfg.Provider {
	case config.AuthProviderFirebase:
		v, err := auth.NewFirebaseVerifier(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase auth: %w", err)
		}
		return v, nil
	case config.AuthProviderJWT, "":
		v, err := auth.NewJWTVerifier(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT auth: %w", err)
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
}

// sweepSessions drops idle sessions until ctx is done.
func (a *App) sweepSessions(ctx context.Context) {
	idle := a.cfg.Market.SessionIdleTimeout
	if idle <= 0 {
		return
	}
	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sessions.Sweep(idle)
		}
	}
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	go func() {
		if err := a.httpServer.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()
	go func() {
		if err := a.grpcServer.Start(); err != nil {
			a.log.Fatalf("Failed to start gRPC server: %v", err)
		}
	}()
	go func() {
		if err := a.metricsServer.Start(); err != nil {
			a.log.Errorf("Metrics server failed: %v", err)
		}
	}()

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go a.sweepSessions(sweepCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)
	stopSweep()

	grace := a.cfg.HTTPServer.TimeoutGraceful
	if a.cfg.GRPCServer.TimeoutGraceful > grace {
		grace = a.cfg.GRPCServer.TimeoutGraceful
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace+5*time.Second)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server shutdown: %v", err)
	}
	if err := a.grpcServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during gRPC server shutdown: %v", err)
	}
	if err := a.metricsServer.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during metrics server shutdown: %v", err)
	}

	a.closeClients(shutdownCtx)
	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

func (a *App) closeClients(ctx context.Context) {
	if a.subscriber != nil {
		a.subscriber.Close()
	}
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}
	if a.firestoreClient != nil {
		if err := a.firestoreClient.Close(); err != nil {
			a.log.Errorf("Error closing Firestore client: %v", err)
		}
	}
	if a.gcsStore != nil {
		if err := a.gcsStore.Close(); err != nil {
			a.log.Errorf("Error closing GCS client: %v", err)
		}
	}
	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}
}
