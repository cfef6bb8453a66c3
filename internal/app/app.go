package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/cinetick/cinetick/api"
	"github.com/cinetick/cinetick/internal/domain"
	"github.com/cinetick/cinetick/internal/mailer"
	"github.com/cinetick/cinetick/internal/payment"
	"github.com/cinetick/cinetick/internal/repository"
	appvalidator "github.com/cinetick/cinetick/internal/validator"
	"github.com/cinetick/cinetick/internal/vcs"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager

	userRepo     domain.UserRepository
	tokenRepo    domain.TokenRepository
	showRepo     domain.ShowRepository
	theaterRepo  domain.TheaterRepository
	showtimeRepo domain.ShowtimeRepository
	bookingRepo  domain.BookingRepository

	paymentGateway domain.PaymentGateway

	shutdownTelemetry func(context.Context)
}

type Config struct {
	Port             int
	Env              string
	Currency         string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Payment          PaymentConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type PaymentConfig struct {
	Gateway   string
	StripeKey string
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.Currency, "currency", "USD", "ISO 4217 currency code used for ticket pricing")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "CineTick <no-reply@cinetick.example.com>", "SMTP sender")

	flag.StringVar(&cfg.Payment.Gateway, "payment-gateway", "mock", "Payment gateway (mock|stripe)")
	flag.StringVar(&cfg.Payment.StripeKey, "stripe-key", "", "Stripe secret key")

	runMigrations := flag.Bool("migrate", false, "Run database migrations before serving")
	migrationsPath := flag.String("migrations-path", "migrations", "Directory holding the database migrations")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	if *runMigrations {
		err := repository.RunMigrations(cfg.DB.DSN, "file://"+*migrationsPath)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	app, err := New(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.serve()
}

// New wires the application together: database pool, redis, repositories,
// payment gateway, session store and telemetry. Close releases everything New
// opened.
func New(cfg Config) (*Application, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	gateway, err := newPaymentGateway(cfg)
	if err != nil {
		db.Close()
		redisClient.Close()
		return nil, err
	}

	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		smtpMailer,
		NewSessionManager(redisClient),
		repository.NewPostgresUserRepository(db),
		repository.NewPostgresTokenRepository(db),
		repository.NewPostgresShowRepository(db),
		repository.NewPostgresTheaterRepository(db),
		repository.NewPostgresShowtimeRepository(db),
		repository.NewPostgresBookingRepository(db),
		gateway,
	)

	app.shutdownTelemetry, err = app.initTelemetry()
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.OtelCollectorUrl != "" {
		app.logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler("cinetick-api"),
		))
	}

	return app, nil
}

// NewApp assembles an Application from already-constructed dependencies.
// Integration tests use it to swap in mock collaborators.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	userRepo domain.UserRepository,
	tokenRepo domain.TokenRepository,
	showRepo domain.ShowRepository,
	theaterRepo domain.TheaterRepository,
	showtimeRepo domain.ShowtimeRepository,
	bookingRepo domain.BookingRepository,
	paymentGateway domain.PaymentGateway,
) *Application {
	return &Application{
		config:         cfg,
		logger:         logger,
		db:             db,
		redis:          redisClient,
		validator:      validator,
		mailer:         mailer,
		sessionManager: sessionManager,
		userRepo:       userRepo,
		tokenRepo:      tokenRepo,
		showRepo:       showRepo,
		theaterRepo:    theaterRepo,
		showtimeRepo:   showtimeRepo,
		bookingRepo:    bookingRepo,
		paymentGateway: paymentGateway,
	}
}

func (app *Application) Close() {
	if app.shutdownTelemetry != nil {
		app.shutdownTelemetry(context.Background())
	}

	app.redis.Close()
	app.db.Close()
}

func newPaymentGateway(cfg Config) (domain.PaymentGateway, error) {
	switch cfg.Payment.Gateway {
	case "stripe":
		if cfg.Payment.StripeKey == "" {
			return nil, errors.New("stripe-key is required when payment-gateway is stripe")
		}

		return payment.NewStripeGateway(cfg.Payment.StripeKey), nil
	case "mock", "":
		return payment.NewMockGateway(), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway: %s", cfg.Payment.Gateway)
	}
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

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}
	if err := redisotel.InstrumentMetrics(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
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

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

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

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("cinetick-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestUserSession)

	r.Get("/health", app.GetHealth)

	r.Post("/auth/register", app.RegisterUser)
	r.Put("/auth/activate", app.ActivateUser)
	r.Post("/auth/login", app.Login)
	r.Post("/auth/logout", app.Logout)

	r.Get("/shows", func(w http.ResponseWriter, r *http.Request) {
		params := api.GetShowsParams{
			Page:     readIntQuery(r, "page"),
			PageSize: readIntQuery(r, "pageSize"),
			Term:     readStringQuery(r, "term"),
			Sort:     readStringQuery(r, "sort"),
		}
		app.GetShows(w, r, params)
	})

	r.Route("/shows/{showId}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			showId, err := app.readIDParam(r, "showId")
			if err != nil {
				app.badRequestResponse(w, r, err)
				return
			}
			app.GetShowById(w, r, showId)
		})

		r.Get("/theaters", func(w http.ResponseWriter, r *http.Request) {
			showId, err := app.readIDParam(r, "showId")
			if err != nil {
				app.badRequestResponse(w, r, err)
				return
			}
			app.GetTheatersOfShow(w, r, showId)
		})

		r.Get("/booked-seats", func(w http.ResponseWriter, r *http.Request) {
			showId, err := app.readIDParam(r, "showId")
			if err != nil {
				app.badRequestResponse(w, r, err)
				return
			}
			app.GetBookedSeats(w, r, showId)
		})
	})

	r.Get("/showtimes/{showtimeId}/seats", func(w http.ResponseWriter, r *http.Request) {
		showtimeId, err := app.readIDParam(r, "showtimeId")
		if err != nil {
			app.badRequestResponse(w, r, err)
			return
		}
		app.GetSeatMapByShowtime(w, r, showtimeId)
	})

	r.With(app.requireAuthentication).Post("/shows", app.CreateShow)
	r.With(app.requireAuthentication).Post("/showtimes", app.CreateShowtime)

	r.With(app.requireAuthentication).Route("/bookings", func(r chi.Router) {
		r.Post("/", app.CreateBooking)

		r.Delete("/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
			bookingId, err := app.readIDParam(r, "bookingId")
			if err != nil {
				app.badRequestResponse(w, r, err)
				return
			}
			app.CancelBooking(w, r, bookingId)
		})
	})

	r.With(app.requireAuthentication).Route("/users/me", func(r chi.Router) {
		r.Get("/", app.GetCurrentUser)

		r.Get("/bookings", func(w http.ResponseWriter, r *http.Request) {
			params := api.GetUserBookingsParams{
				Page:     readIntQuery(r, "page"),
				PageSize: readIntQuery(r, "pageSize"),
			}
			app.GetBookingsOfUser(w, r, params)
		})

		r.Get("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
			bookingId, err := app.readIDParam(r, "bookingId")
			if err != nil {
				app.badRequestResponse(w, r, err)
				return
			}
			app.GetUserBookingById(w, r, bookingId)
		})
	})

	return r
}
