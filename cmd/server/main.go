package main // Entry point package

import (
	"context" // Context for background workers
	"log"     // Logging library
	"time"    // Durations for sweep configuration

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/brightdays/holiday-club-booking/internal/booking"
	"github.com/brightdays/holiday-club-booking/internal/config"
	"github.com/brightdays/holiday-club-booking/internal/database"
	"github.com/brightdays/holiday-club-booking/internal/handler"
	"github.com/brightdays/holiday-club-booking/internal/middleware"
	"github.com/brightdays/holiday-club-booking/internal/payment"
	"github.com/brightdays/holiday-club-booking/internal/queue"
	"github.com/brightdays/holiday-club-booking/internal/repository"
	"github.com/brightdays/holiday-club-booking/internal/router"
	"github.com/brightdays/holiday-club-booking/internal/service"
	"github.com/brightdays/holiday-club-booking/internal/sweeper"
	"github.com/brightdays/holiday-club-booking/internal/utils"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	// Repositories.
	clubs := repository.NewClubRepo(db)
	options := repository.NewBookingOptionRepo(db)
	days := repository.NewClubDayRepo(db)
	promos := repository.NewPromoRepo(db)
	bookings := repository.NewBookingRepo(db)
	children := repository.NewChildRepo(db)
	admins := repository.NewAdminRepo(db)
	catalog := repository.NewCatalog(clubs, options, days)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		hash, err := utils.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
		if err := admins.Ensure(context.Background(), cfg.AdminEmail, hash); err != nil {
			log.Fatalf("admin bootstrap: %v", err)
		}
	}

	// Payment gateway and the lifecycle services.
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey)
	var notifier booking.Notifier
	if cfg.AMQPURL != "" {
		notifier = service.NewAMQPNotifier(cfg.AMQPURL)
	}
	pendingTTL := time.Duration(cfg.PendingTTLMin) * time.Minute
	reservations := booking.NewReservationService(catalog, promos, bookings, gateway, booking.CheckoutConfig{
		Currency:   cfg.Currency,
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		PendingTTL: pendingTTL,
	})
	reconciler := booking.NewReconcilerService(bookings, catalog, gateway, notifier)
	completion := booking.NewCompletionService(bookings, catalog, notifier)

	// Handlers.
	bookingHandler := handler.NewBookingHandler(reservations, reconciler, completion)
	webhookHandler := handler.NewWebhookHandler(reconciler, cfg.StripeWebhookSecret)
	catalogHandler := handler.NewCatalogHandler(clubs, options, days)
	promoHandler := handler.NewPromoHandler(promos)
	adminAuth := handler.NewAdminAuthHandler(cfg, admins)
	admin := handler.NewAdminHandler(bookings, children, promos, reservations, pendingTTL)

	e := echo.New() // Create Echo instance
	e.Validator = handler.NewValidator()

	// Redis-backed rate limiting and catalog response caching.  A missing
	// Redis simply disables both; the API stays up.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	catalogCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e) // Register application routes
	router.RegisterPublic(e, catalogHandler, bookingHandler, promoHandler, catalogCache)
	router.RegisterWebhook(e, webhookHandler)
	router.RegisterAdmin(e, adminAuth, admin, cfg.JWTSecret)

	// Background workers: queue consumer for notification logging and the
	// pending-booking expiry sweep.
	if cfg.AMQPURL != "" {
		go func() {
			if err := queue.StartBookingConsumer(cfg.AMQPURL); err != nil {
				log.Printf("booking consumer stopped: %v", err)
			}
		}()
	}
	sw := sweeper.New(reservations, time.Duration(cfg.SweepIntervalMin)*time.Minute, pendingTTL)
	go sw.Start(context.Background())

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
