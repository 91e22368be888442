package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/movie-booking-system/internal/app"
	"github.com/metinatakli/movie-booking-system/internal/auth"
	"github.com/metinatakli/movie-booking-system/internal/events"
	"github.com/metinatakli/movie-booking-system/internal/repository"
	"github.com/metinatakli/movie-booking-system/internal/service"
	appvalidator "github.com/metinatakli/movie-booking-system/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App            *app.Application
	DB             *pgxpool.Pool
	RedisClient    *redis.Client
	Tokens         *auth.TokenManager
	BookingService *service.BookingService
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)

	userRepo := repository.NewPostgresUserRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	cinemaRepo := repository.NewPostgresCinemaRepository(db)
	slotRepo := repository.NewPostgresSlotRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)
	seatCache := repository.NewRedisSeatCache(redisClient, cfg.Redis.SeatCacheTTL)

	bookingService := service.NewBookingService(
		bookingRepo,
		slotRepo,
		seatCache,
		events.NewLogPublisher(logger),
		logger,
	)
	slotService := service.NewSlotService(slotRepo, logger)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		sessionManager,
		tokens,
		userRepo,
		movieRepo,
		cinemaRepo,
		slotRepo,
		bookingService,
		slotService,
	)

	return &TestApp{
		App:            application,
		DB:             db,
		RedisClient:    redisClient,
		Tokens:         tokens,
		BookingService: bookingService,
	}, nil
}
