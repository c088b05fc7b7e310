package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"datee_server/config"
	"datee_server/middleware"
	"datee_server/routes"
	"datee_server/services"
	"datee_server/socket"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize AWS clients
	log.Println("Initializing AWS clients...")
	awsCfg := services.LoadAWSConfig(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: services.InitializeDynamoDBClient(awsCfg)}
	s3Client := s3.NewFromConfig(awsCfg)
	log.Println("AWS clients initialized.")

	// Initialize socket hub for match notifications
	hub := socket.NewHub()

	// Initialize services
	userService := &services.UserService{Dynamo: dynamoService}
	authService := &services.AuthService{Dynamo: dynamoService, Users: userService, Secret: cfg.JWTSecret}
	photoService := &services.PhotoService{Dynamo: dynamoService, Users: userService, S3: s3Client, Bucket: cfg.S3BucketName}
	ratingService := &services.RatingService{Dynamo: dynamoService, Users: userService}
	feedbackService := &services.FeedbackService{Dynamo: dynamoService}
	matchService := &services.MatchService{Dynamo: dynamoService}
	seedService := &services.SeedService{Users: userService}
	engine := &services.MatchEngine{
		Users:        userService,
		Matches:      matchService,
		Notifier:     hub,
		TTL:          cfg.MatchTTL(),
		StoreTimeout: cfg.StoreTimeout(),
	}

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Datee")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	// Register routes
	routes.RegisterUserRoutes(r, userService)
	routes.RegisterAuthRoutes(r, authService)
	routes.RegisterPhotoRoutes(r, photoService)
	routes.RegisterRatingRoutes(r, ratingService)
	routes.RegisterFeedbackRoutes(r, feedbackService)
	routes.RegisterMatchRoutes(r, matchService, userService)
	routes.RegisterAdminRoutes(r, cfg.AdminPassword, userService, engine, seedService)

	// Socket.IO endpoint for match notifications
	go func() {
		if err := hub.Server.Serve(); err != nil {
			log.Printf("Socket server error: %v", err)
		}
	}()
	defer hub.Server.Close()
	r.Handle("/socket.io/", hub.Server)

	// Authentication + CORS middleware
	handler := middleware.Authenticate(authService)(r)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Admin-Password"},
		AllowCredentials: true,
	}).Handler(handler)

	// Start the HTTP server
	log.Printf("Starting server on port %d...", cfg.Port)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), corsHandler))
}
