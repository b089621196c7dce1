package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	firebase "firebase.google.com/go/v4"
	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/api/option"

	"tripTagAPI/handlers"
	"tripTagAPI/internal/notification"
	"tripTagAPI/internal/store"
	"tripTagAPI/middleware"
	"tripTagAPI/services"

	_ "net/http/pprof"
)

var (
	docStore          *store.FirestoreStore
	challengeService  *services.ChallengeService
	userService       *services.UserService
	postService       *services.PostService
	attractionService *services.AttractionService
	fcmService        *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")
	if bucketName == "" {
		log.Fatal("FIREBASE_STORAGE_BUCKET environment variable is not set")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     os.Getenv("FIREBASE_PROJECT_ID"),
		StorageBucket: bucketName,
	}, firebaseCredentials())
	if err != nil {
		log.Fatal("Failed to initialize Firebase app:", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		log.Fatal("Failed to create Firestore client:", err)
	}
	docStore = store.NewFirestoreStore(fsClient)

	if err := docStore.Ping(ctx); err != nil {
		log.Fatal("Failed to ping Firestore:", err)
	}
	log.Println("Successfully connected to Firestore")

	storageClient, err := app.Storage(ctx)
	if err != nil {
		log.Fatal("Failed to create Storage client:", err)
	}
	bucket, err := storageClient.DefaultBucket()
	if err != nil {
		log.Fatal("Failed to get default storage bucket:", err)
	}
	objects := store.NewBucketStorage(bucket, bucketName)

	challengeService = services.NewChallengeService(docStore)
	userService = services.NewUserService(docStore)
	postService = services.NewPostService(docStore, objects, challengeService)
	attractionService = services.NewAttractionService(docStore)

	fcmService, err = notification.NewFCMService(context.Background(), app)
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		challengeService.SetPushProvider(fcmService)
		log.Println("FCM push provider initialized successfully")
	}

	middleware.InitPrometheus()
}

// firebaseCredentials prefers the Base64-encoded service account from the
// environment; deployments without it fall back to a local key file.
func firebaseCredentials() option.ClientOption {
	if encoded := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			log.Fatal("Failed to decode FIREBASE_SERVICE_ACCOUNT_JSON:", err)
		}
		log.Println("Firebase: initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable")
		return option.WithCredentialsJSON(decoded)
	}
	log.Println("Firebase: initializing from local service account key file")
	return option.WithCredentialsFile("./serviceAccountKey.json")
}

func main() {
	defer func() {
		log.Println("Closing Firestore client...")
		docStore.Close()
	}()

	challengeHandler := handlers.NewChallengeHandler(challengeService)
	userHandler := handlers.NewUserHandler(userService)
	postHandler := handlers.NewPostHandler(postService)
	attractionHandler := handlers.NewAttractionHandler(attractionService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := docStore.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "document store unreachable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "tripTag-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1, all routes require auth
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.AuthMiddleware)

	api.HandleFunc("/user", userHandler.CreateProfile).Methods("POST")
	api.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	api.HandleFunc("/user", userHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/user", userHandler.DeleteAccount).Methods("DELETE")
	api.HandleFunc("/user/friends", userHandler.GetFriends).Methods("GET")
	api.HandleFunc("/user/friends", userHandler.AddFriend).Methods("POST")
	api.HandleFunc("/user/friends", userHandler.RemoveFriend).Methods("DELETE")
	api.HandleFunc("/user/search", userHandler.SearchUsers).Methods("GET")

	api.HandleFunc("/challenges/available", challengeHandler.GetAvailableChallenges).Methods("GET")
	api.HandleFunc("/challenges/active", challengeHandler.GetActiveChallenges).Methods("GET")
	api.HandleFunc("/challenges/finished", challengeHandler.GetFinishedChallenges).Methods("GET")
	api.HandleFunc("/challenges/mine", challengeHandler.GetUserChallenges).Methods("GET")
	api.HandleFunc("/challenges/{challengeId}/start", challengeHandler.StartChallenge).Methods("POST")
	api.HandleFunc("/challenges/visit", challengeHandler.RecordVisit).Methods("POST")
	api.HandleFunc("/challenges/sweep-expired", challengeHandler.SweepExpired).Methods("POST")

	api.HandleFunc("/posts", postHandler.CreatePost).Methods("POST")
	api.HandleFunc("/posts/mine", postHandler.GetMyPosts).Methods("GET")
	api.HandleFunc("/posts/feed", postHandler.GetFeed).Methods("GET")
	api.HandleFunc("/posts/{postId}/like", postHandler.ToggleLike).Methods("POST")
	api.HandleFunc("/posts/{postId}/likes", postHandler.GetLikes).Methods("GET")

	api.HandleFunc("/attractions", attractionHandler.GetAttractions).Methods("GET")
	api.HandleFunc("/attractions/nearby", attractionHandler.GetNearby).Methods("GET")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
