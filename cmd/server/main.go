package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/moviedesk/movie-ticket-booking/internal/config"
	"github.com/moviedesk/movie-ticket-booking/internal/database"
	"github.com/moviedesk/movie-ticket-booking/internal/handler"
	"github.com/moviedesk/movie-ticket-booking/internal/middleware"
	"github.com/moviedesk/movie-ticket-booking/internal/repository"
	"github.com/moviedesk/movie-ticket-booking/internal/router"
	queue_publisher "github.com/moviedesk/movie-ticket-booking/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()
	if err := database.EnsureSchema(context.Background(), db); err != nil {
		log.Fatalf("database schema: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: response caching and rate limiting disabled")
	}

	store := repository.NewBookingRepo(db)
	var events handler.EventPublisher
	if cfg.AMQPURL != "" {
		events = queue_publisher.NewAMQPPublisher(cfg.AMQPURL)
	} else {
		log.Printf("AMQP_URL not set: booking events disabled")
	}

	bookings := handler.NewBookingHandler(store, events)
	health := &handler.HealthHandler{DB: db}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	router.RegisterRoutes(e, bookings, health, rateLimit, cache)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
