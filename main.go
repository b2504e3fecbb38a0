package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/auth"
	"github.com/Hasan-Al-Banna-Nahid/retreat/config"
	"github.com/Hasan-Al-Banna-Nahid/retreat/controllers"
	"github.com/Hasan-Al-Banna-Nahid/retreat/events"
	"github.com/Hasan-Al-Banna-Nahid/retreat/routes"
	"github.com/Hasan-Al-Banna-Nahid/retreat/services"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	db, err := config.ConnectDatabase(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	log.Println("✅ Database connection established and migrations applied.")

	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("⚠️  Event publishing disabled: %v", err)
		} else {
			publisher = p
			log.Printf("✅ Publishing booking events to exchange %s", cfg.AMQPExchange)
		}
	}
	defer publisher.Close()

	// Initialize services
	venueService := services.NewVenueService(db, logger)
	bookingService := services.NewBookingService(db, publisher, logger)
	adminService := services.NewAdminService(db)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)

	// Build router
	router := routes.SetupRouter(routes.Deps{
		Venues:      controllers.NewVenueController(venueService),
		Bookings:    controllers.NewBookingController(bookingService),
		Auth:        controllers.NewAuthController(adminService, issuer),
		Admins:      controllers.NewAdminController(adminService),
		Issuer:      issuer,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
