package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/ingest"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/report"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/session"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	db         *db.DB
	store      session.Store
	stories    StoryStore
	controller *interview.Controller
	reports    *report.Synthesizer
	llm        llm.Client

	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validator   *validator.Validate

	ingestOpts *ingest.Options
}

// Config holds server configuration
type Config struct {
	Port         string
	DatabaseURL  string
	APIKey       string
	MaxQuestions int
}

// New creates a new server instance
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation client: %w", err)
	}

	store := database.Sessions()
	s := &Server{
		db:         database,
		store:      store,
		stories:    database,
		controller: interview.NewController(store, client, cfg.MaxQuestions),
		reports:    report.NewSynthesizer(store, client),
		llm:        client,
		validator:  validator.New(),
		ingestOpts: ingest.DefaultOptions(),
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withLogging(s.withCORS(s.routes())),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // long timeout for streamed turns
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// routes builds the request mux. Session and story routes require a bearer
// token; auth and health are public.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("PUT /auth/password", auth(http.HandlerFunc(s.authHandler.UpdatePassword)))

	mux.Handle("POST /sessions", auth(http.HandlerFunc(s.handleCreateSession)))
	mux.Handle("GET /sessions", auth(http.HandlerFunc(s.handleListSessions)))
	mux.Handle("GET /sessions/{id}", auth(http.HandlerFunc(s.handleGetSession)))
	mux.Handle("POST /sessions/{id}/turns", auth(http.HandlerFunc(s.handleSubmitTurn)))
	mux.Handle("POST /sessions/{id}/close", auth(http.HandlerFunc(s.handleCloseSession)))
	mux.Handle("POST /sessions/{id}/report", auth(http.HandlerFunc(s.handleSessionReport)))

	mux.Handle("GET /stories", auth(http.HandlerFunc(s.handleListStories)))
	mux.Handle("POST /stories", auth(http.HandlerFunc(s.handleCreateStory)))
	mux.Handle("GET /stories/{id}", auth(http.HandlerFunc(s.handleGetStory)))
	mux.Handle("PUT /stories/{id}", auth(http.HandlerFunc(s.handleUpdateStory)))
	mux.Handle("DELETE /stories/{id}", auth(http.HandlerFunc(s.handleDeleteStory)))

	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.llm != nil {
		_ = s.llm.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
