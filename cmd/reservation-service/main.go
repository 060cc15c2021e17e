package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-reservation/internal/api"
	"ms-reservation/internal/booking"
	bookingdb "ms-reservation/internal/booking/db"
	catalogdb "ms-reservation/internal/catalog/db"
	"ms-reservation/internal/config"
	"ms-reservation/internal/database/migrations"
	"ms-reservation/internal/kafka"
	"ms-reservation/internal/logger"
	"ms-reservation/internal/models"
	"ms-reservation/internal/notifier"
	"ms-reservation/internal/reservation"
	"ms-reservation/internal/reservation/memory"
	redislock "ms-reservation/internal/reservation/redis"
	"ms-reservation/internal/ws"
)

// catalogStore is the union of the catalog surfaces the HTTP layer and
// the reservation service need; both backends implement it.
type catalogStore interface {
	GetBus(ctx context.Context, busID string) (*models.Bus, error)
	ListBuses(ctx context.Context) ([]*models.Bus, error)
	CreateBus(ctx context.Context, bus *models.Bus) error
	UpdateSeatStatus(ctx context.Context, busID string, seat int, status string) error
}

func main() {
	ctx := context.Background()

	// .env is optional; real environment variables win anyway.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	// --- Persistent stores, with the in-memory demo fallback ---
	// Seat selection must keep working when Postgres or Redis are down:
	// locks expire on their own, so serving from a process-local mirror
	// degrades availability gracefully instead of failing requests.
	degraded := false

	var (
		catalog      catalogStore
		bookingStore booking.Store
		lockStore    reservation.LockStore
	)

	connector := pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.DSN))
	sqldb := sql.OpenDB(connector)
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})

	if err := sqldb.Ping(); err != nil {
		log.Warn("DATABASE", fmt.Sprintf("Postgres unreachable (%v), falling back to in-memory demo catalog", err))
		degraded = true
	} else if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unreachable (%v), falling back to in-memory seat locks", err))
		degraded = true
	}

	if degraded {
		catalog = memory.NewCatalog()
		bookingStore = memory.NewBookingStore()
		lockStore = memory.NewLockStore(cfg.Reservation.LockTTL)
	} else {
		runner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
		if err := runner.Up(); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		log.LogDatabase("MIGRATE", "postgres", "schema up to date")

		catalog = &catalogdb.DB{Bun: bunDB}
		bookingStore = &bookingdb.DB{Bun: bunDB}
		lockStore = redislock.NewLockStore(redisClient, cfg.Reservation.LockTTL, log)
	}

	// --- Real-time surfaces ---
	hub := ws.NewHub()
	go hub.Run()

	targets := []notifier.Target{hub}
	if cfg.Kafka.Enabled && !degraded {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed: %v", err))
		}
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		targets = append(targets, &notifier.KafkaTarget{Producer: producer, Logger: log})
		log.LogKafka("INIT", cfg.Kafka.Topic, "seat-update producer ready")
	}
	fanout := notifier.NewFanout(targets...)

	// --- Services ---
	reservations := reservation.NewService(lockStore, catalog, fanout, log)
	reconciler := reservation.NewReconciler(lockStore, catalog, bookingStore, cfg.Reservation.ReservedReleaseWindow)
	bookings := booking.NewService(bookingStore, lockStore, catalog, fanout, log)

	handler := &api.Handler{
		Reservations: reservations,
		Reconciler:   reconciler,
		Bookings:     bookings,
		Catalog:      catalog,
		Hub:          hub,
		Degraded:     degraded,
		Logger:       log,
	}

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		mode := "normal"
		if degraded {
			mode = "degraded (in-memory)"
		}
		log.Info("SERVER", fmt.Sprintf("Reservation service running on %s in %s mode", cfg.Server.Port, mode))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("SERVER", "Shutdown signal received, cleaning up")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("SERVER", fmt.Sprintf("Forced shutdown: %v", err))
	}

	sqldb.Close()
	redisClient.Close()
	log.Info("SERVER", "Server exited gracefully")
}
