package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"google.golang.org/grpc"

	"slotbook/internal/clock"
	"slotbook/internal/config"
	"slotbook/internal/domain"
	"slotbook/internal/holidays"
	"slotbook/internal/recipients"
	"slotbook/internal/service/reservations"
	"slotbook/internal/store"
	"slotbook/internal/store/memory"
	"slotbook/internal/store/postgres"
	grpcTransport "slotbook/internal/transport/grpc"
	httpTransport "slotbook/internal/transport/http"
	"slotbook/migrations"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "slotbook-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "slotbook-server"),
	)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info(
		"starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("grpc_addr", cfg.GRPCAddr()),
		slog.String("store", cfg.StoreDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	holidaySource, err := holidays.New(cfg.Holidays, cfg.HolidaysFile, log)
	if err != nil {
		return err
	}
	if err := holidaySource.StartReloader(cfg.HolidayReloadSchedule); err != nil {
		return err
	}
	defer holidaySource.Stop()

	repo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	recipientStore := recipients.NewStore(afero.NewOsFs(), cfg.RecipientsFile, recipients.Recipients{
		DoctorEmail:    cfg.DefaultDoctorEmail,
		SecretaryEmail: cfg.DefaultSecretaryEmail,
	})

	hub, closeHub, err := newHub(cfg, recipientStore, log)
	if err != nil {
		return err
	}
	defer closeHub()
	log.Info("notification subscribers registered", slog.Any("subscribers", hub.Subscribers()))

	clk := clock.NewSystem()
	svc := reservations.NewService(
		repo,
		domain.NewCalendar(holidaySource),
		hub,
		reservations.WithClock(clk),
		reservations.WithSearchHorizon(cfg.SearchHorizonDays),
		reservations.WithMaxBookingAttempts(cfg.MaxBookingAttempts),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpTransport.NewHandler(svc, recipientStore, clk, log).Router(cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(grpcTransport.DefaultRequestTimeoutInterceptor(cfg.GRPCRequestTimeout)),
	)
	grpcTransport.RegisterReservationsServiceServer(grpcServer, grpcTransport.NewReservationsServer(svc, clk, log))

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Error("grpc listen failed", slog.Any("err", err), slog.String("grpc_addr", cfg.GRPCAddr()))
		return err
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- grpcServer.Serve(lis)
	}()
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("servers started", slog.String("http_addr", cfg.HTTPAddr), slog.String("grpc_addr", cfg.GRPCAddr()))

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped with error", slog.Any("err", err))
			serveErr = err
		}
	}

	shutdown(log, httpServer, grpcServer, cfg.ShutdownTimeout)
	return serveErr
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.ReservationRepository, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; reservations are lost on restart")
		return memory.NewReservationRepo(), func() {}, nil
	}

	log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DatabaseURL)...)
		log.Error("database connection failed", args...)
		return nil, nil, err
	}
	closeDB := func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}

	if err := migrations.Apply(ctx, db); err != nil {
		log.Error("migrations failed", slog.Any("err", err))
		closeDB()
		return nil, nil, err
	}
	log.Info("migrations applied")

	return postgres.NewReservationRepo(db), closeDB, nil
}

func shutdown(log *slog.Logger, hs *http.Server, gs *grpc.Server, timeout time.Duration) {
	log.Info("shutting down servers", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := hs.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; closing", slog.Any("err", err))
		_ = hs.Close()
	}

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		log.Info("servers stopped")
	case <-ctx.Done():
		log.Warn("grpc graceful shutdown timed out; forcing stop")
		gs.Stop()
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
