package main // Booking event consumer entry point

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/moviedesk/movie-ticket-booking/internal/queue"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}
	log.Printf("booking-consumer: starting")
	if err := queue.StartBookingConsumer(); err != nil {
		log.Fatal(err)
	}
}
