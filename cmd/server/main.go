package main // Entry point package

import (
	"context"
	"log"

	"github.com/go-co-op/gocron/v2" // job scheduler for the periodic booking sweep
	"github.com/joho/godotenv"      // .env loader for local development
	"github.com/labstack/echo/v4"   // Echo web framework

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/database"
	"github.com/iliyamo/hotel-booking/internal/handler"
	"github.com/iliyamo/hotel-booking/internal/queue"
	"github.com/iliyamo/hotel-booking/internal/repository"
	"github.com/iliyamo/hotel-booking/internal/router"
	"github.com/iliyamo/hotel-booking/internal/session"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	rooms := repository.NewRoomRepo(db)
	bookings := repository.NewBookingRepo(db)
	users := repository.NewUserRepo(db)

	reconciler := booking.NewReconciler(db, rooms, bookings)
	ledger := booking.NewLedger(db, rooms, bookings, reconciler, cfg.HorizonDays)
	resolver := booking.NewResolver(db)

	if cfg.SeedRooms {
		if err := rooms.SeedInitialRooms(context.Background()); err != nil {
			log.Fatalf("seed rooms: %v", err)
		}
	}

	// The session store degrades to nil when Redis is unreachable; the
	// staged booking flow is disabled but everything else keeps working.
	var sessions *session.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		sessions = session.NewStore(rdb, cfg.SessionTTL)
	} else {
		log.Printf("redis unavailable; staged booking flow disabled")
	}

	// Consume booking events into the audit log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking-consumer: %v", err)
		}
	}()

	// Periodic sweep: complete ended stays and refresh room statuses.
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() {
			if n, err := reconciler.Sweep(context.Background()); err != nil {
				log.Printf("sweep: %v", err)
			} else if n > 0 {
				log.Printf("sweep: reconciled %d room(s)", n)
			}
		}),
	); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	authHandler := handler.NewAuthHandler(cfg.JWTSecret, cfg.AdminPasswordHash, cfg.AccessTTLMin)
	roomHandler := handler.NewRoomHandler(rooms, reconciler)
	bookingHandler := handler.NewBookingHandler(users, rooms, ledger, resolver, sessions)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler)
	router.RegisterGuest(e, bookingHandler, roomHandler)
	router.RegisterAdmin(e, roomHandler, bookingHandler, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
