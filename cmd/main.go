package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/Leganyst/space-booking/internal/auth"
	"github.com/Leganyst/space-booking/internal/clock"
	"github.com/Leganyst/space-booking/internal/config"
	"github.com/Leganyst/space-booking/internal/db"
	"github.com/Leganyst/space-booking/internal/events"
	"github.com/Leganyst/space-booking/internal/httpapi"
	"github.com/Leganyst/space-booking/internal/model"
	"github.com/Leganyst/space-booking/internal/obs"
	"github.com/Leganyst/space-booking/internal/repository"
	"github.com/Leganyst/space-booking/internal/service"
	"github.com/Leganyst/space-booking/internal/sweeper"
)

const shutdownTimeout = 15 * time.Second

type flags struct {
	promoteAdmin string
	seed         string
	migrateOnly  bool
	addr         string
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("spacebook", pflag.ContinueOnError)
	fs.StringVar(&f.promoteAdmin, "promote-admin", "", "give the admin role to an existing user and exit")
	fs.StringVar(&f.seed, "seed", "", "YAML file with spaces to add to the catalog on startup")
	fs.BoolVar(&f.migrateOnly, "migrate-only", false, "run database migrations and exit")
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	return f, fs.Parse(args)
}

func main() {
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(f); err != nil {
		slog.Error("spacebook stopped", "err", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	// 1. Конфиг из env.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if f.addr != "" {
		cfg.HTTPAddr = f.addr
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. БД через GORM и миграции.
	gormDB, err := db.NewGormDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer func() {
		if err := db.Close(gormDB); err != nil {
			log.Warn("close db", "err", err)
		}
	}()

	if err := model.AutoMigrate(gormDB); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if f.migrateOnly {
		log.Info("migrations applied")
		return nil
	}

	// 3. Репозитории и сервисы.
	clk := clock.Real()
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL(), clk)

	userRepo := repository.NewGormUserRepository(gormDB)
	spaceRepo := repository.NewGormSpaceRepository(gormDB)
	bookingRepo := repository.NewGormBookingRepository(gormDB)
	eventRepo := repository.NewGormEventRepository(gormDB)

	identitySvc := service.NewIdentityService(userRepo, tokens, cfg.BcryptCost)
	catalogSvc := service.NewCatalogService(spaceRepo, cfg.Location())

	if f.promoteAdmin != "" {
		u, err := identitySvc.PromoteAdmin(ctx, f.promoteAdmin)
		if err != nil {
			return fmt.Errorf("promote %s: %w", f.promoteAdmin, err)
		}
		log.Info("user promoted to admin", "username", u.Username, "user_id", u.ID)
		return nil
	}

	if f.seed != "" {
		n, err := catalogSvc.SeedFromFile(ctx, f.seed)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		log.Info("catalog seeded", "file", f.seed, "created", n)
	}

	// 4. Трассировка и публикация событий.
	shutdownTracer, err := obs.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Env)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			log.Warn("tracer shutdown", "err", err)
		}
	}()

	var publisher events.Publisher = events.NewLogPublisher(log)
	if cfg.RabbitURL != "" {
		p, err := events.NewAMQPPublisher(cfg.RabbitURL, cfg.BookingExchange)
		if err != nil {
			return fmt.Errorf("init publisher: %w", err)
		}
		publisher = p
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Warn("close publisher", "err", err)
		}
	}()

	bookingSvc := service.NewBookingService(bookingRepo, publisher, clk, cfg.Location(), log)
	auditSvc := service.NewAuditService(eventRepo)

	// 5. Фоновая очистка просроченных броней.
	sw := sweeper.New(bookingSvc, cfg.SweepInterval, clk, log)
	if err := sw.Start(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer sw.Stop()

	// 6. HTTP.
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.Deps{
		Identity:      identitySvc,
		Catalog:       catalogSvc,
		Bookings:      bookingSvc,
		Audit:         auditSvc,
		Guard:         auth.NewGuard(tokens),
		Ping:          func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
		PublicCatalog: cfg.PublicCatalog,
		Log:           log,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Грейсфул-шатдаун по сигналу.
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http serve: %w", err)
		}
	}

	log.Info("shutting down http server...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	sw.Stop()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
