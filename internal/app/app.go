package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/domain"
	"github.com/metinatakli/movie-booking-system/internal/events"
	"github.com/metinatakli/movie-booking-system/internal/repository"
	"github.com/metinatakli/movie-booking-system/internal/service"
	appvalidator "github.com/metinatakli/movie-booking-system/internal/validator"
	"github.com/metinatakli/movie-booking-system/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "movie-booking-api"

var (
	version = vcs.Version()
)

type BookingService interface {
	Book(ctx context.Context, userId, slotId int, seats []domain.SeatPosition) (*domain.Booking, error)
	Cancel(ctx context.Context, userId, bookingId int) (*domain.Booking, error)
	Get(ctx context.Context, userId, bookingId int) (*domain.Booking, error)
	ListForUser(ctx context.Context, userId int, pagination domain.Pagination) ([]domain.Booking, *domain.Metadata, error)
	BookedSeats(ctx context.Context, slotId int) ([]domain.SeatPosition, error)
}

type SlotService interface {
	Create(ctx context.Context, slot domain.Slot) (*domain.Slot, error)
	Update(ctx context.Context, slot domain.Slot) (*domain.Slot, error)
	Get(ctx context.Context, id int) (*domain.SlotDetail, error)
}

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager
	tokens         *auth.TokenManager
	limiter        *clientLimiter
	now            func() time.Time

	userRepo   domain.UserRepository
	movieRepo  domain.MovieRepository
	cinemaRepo domain.CinemaRepository
	slotRepo   domain.SlotRepository

	bookingService BookingService
	slotService    SlotService
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redis redis.UniversalClient,
	validator *validator.Validate,
	sessionManager *scs.SessionManager,
	tokens *auth.TokenManager,
	userRepo domain.UserRepository,
	movieRepo domain.MovieRepository,
	cinemaRepo domain.CinemaRepository,
	slotRepo domain.SlotRepository,
	bookingService BookingService,
	slotService SlotService,
) *Application {
	return &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redis,
		validator:      validator,
		sessionManager: sessionManager,
		tokens:         tokens,
		limiter:        newClientLimiter(cfg.Limiter.RPS, cfg.Limiter.Burst),
		now:            time.Now,
		userRepo:       userRepo,
		movieRepo:      movieRepo,
		cinemaRepo:     cinemaRepo,
		slotRepo:       slotRepo,
		bookingService: bookingService,
		slotService:    slotService,
	}
}

func Run() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, displayVersion, err := ParseConfig(os.Args[1:])
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	bootstrap := &Application{config: cfg, logger: logger}

	shutdownTelemetry, err := bootstrap.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler(serviceName),
		))
	}

	if cfg.DB.Migrate {
		err = RunMigrations(cfg.DB.DSN, cfg.DB.MigrationsPath)
		if err != nil {
			return err
		}

		logger.Info("database migrations applied")
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	userRepo := repository.NewPostgresUserRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	cinemaRepo := repository.NewPostgresCinemaRepository(db)
	slotRepo := repository.NewPostgresSlotRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	seatCache := repository.NewRedisSeatCache(redisClient, cfg.Redis.SeatCacheTTL)

	bookingService := service.NewBookingService(bookingRepo, slotRepo, seatCache, publisher, logger)
	slotService := service.NewSlotService(slotRepo, logger)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		NewSessionManager(redisClient),
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		userRepo,
		movieRepo,
		cinemaRepo,
		slotRepo,
		bookingService,
		slotService,
	)

	err = app.serve()

	// let queued booking events reach the broker before it is closed
	bookingService.Wait()

	return err
}

type eventPublisher interface {
	domain.EventPublisher
	Close() error
}

func newEventPublisher(cfg Config, logger *slog.Logger) (eventPublisher, error) {
	if cfg.AMQP.URL == "" {
		logger.Info("AMQP URL not set, booking events will only be logged")
		return events.NewLogPublisher(logger), nil
	}

	return events.NewAMQPPublisher(cfg.AMQP.URL, logger)
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	ctx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()

	go app.limiter.cleanup(ctx, time.Minute, 3*time.Minute)

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
