package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/Indeera01/parkly-backend/internal/api"
	"github.com/Indeera01/parkly-backend/internal/auth"
	"github.com/Indeera01/parkly-backend/internal/metrics"
	"github.com/Indeera01/parkly-backend/internal/repository"
	"github.com/Indeera01/parkly-backend/internal/service"
)

func main() {
	godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	spaceRepo := repository.NewSpaceRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	jobRepo := repository.NewJobRepository(db)
	userRepo := repository.NewUserRepository(db)

	notifier := service.NewNotifyService(userRepo.GetEmail)
	spaceSvc := service.NewSpaceService(spaceRepo)
	bookingSvc := service.NewBookingService(spaceRepo, bookingRepo, bookingRepo, notifier)
	jobSvc := service.NewJobService(jobRepo)

	spaceHandler := api.NewSpaceHandler(spaceSvc)
	bookingHandler := api.NewBookingHandler(bookingSvc)

	r := mux.NewRouter()
	r.Use(metrics.Middleware)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/spaces", spaceHandler.ListSpaces).Methods("GET")
	r.HandleFunc("/api/spaces/{id}", spaceHandler.GetSpace).Methods("GET")
	r.HandleFunc("/api/spaces/{id}/availability", bookingHandler.CheckAvailability).Methods("POST")

	// Authenticated endpoints
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware([]byte(jwtSecret)))
	authed.HandleFunc("/spaces", spaceHandler.CreateSpace).Methods("POST")
	authed.HandleFunc("/spaces/{id}", spaceHandler.UpdateSpace).Methods("PUT")
	authed.HandleFunc("/spaces/{id}", spaceHandler.DeleteSpace).Methods("DELETE")
	authed.HandleFunc("/host/spaces", spaceHandler.ListMySpaces).Methods("GET")
	authed.HandleFunc("/host/spaces/{id}/bookings", bookingHandler.ListSpaceBookings).Methods("GET")
	authed.HandleFunc("/host/bookings/{id}/cancel", bookingHandler.HostCancelBooking).Methods("POST")
	authed.HandleFunc("/bookings", bookingHandler.CreateBooking).Methods("POST")
	authed.HandleFunc("/bookings", bookingHandler.ListBookings).Methods("GET")
	authed.HandleFunc("/bookings/{id}/cancel", bookingHandler.CancelBooking).Methods("POST")
	authed.HandleFunc("/bookings/{id}", bookingHandler.DeleteBooking).Methods("DELETE")

	sweepSchedule := os.Getenv("SWEEP_SCHEDULE")
	if sweepSchedule == "" {
		sweepSchedule = "@every 10m"
	}
	c := cron.New()
	if _, err := c.AddFunc(sweepSchedule, func() {
		if err := jobSvc.SweepCompleted(); err != nil {
			log.Printf("sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule sweep job: %v", err)
	}
	c.Start()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
