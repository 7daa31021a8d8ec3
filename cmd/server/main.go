package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/nvukovic/memberhub/internal/config"
	"github.com/nvukovic/memberhub/internal/database"
	postgresrepo "github.com/nvukovic/memberhub/internal/repository/postgres"
	"github.com/nvukovic/memberhub/internal/service"
	"github.com/nvukovic/memberhub/internal/transport/http/handlers"
	"github.com/nvukovic/memberhub/internal/transport/http/middleware"
	"github.com/nvukovic/memberhub/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Repositories
	memberRepo := postgresrepo.NewMemberRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	authService := service.NewAuthService(memberRepo, cfg.JWTSecret)
	messageService := service.NewMessageService(messageRepo, memberRepo)

	// WebSocket hub pushes insert/update events to message participants.
	hub := ws.NewHub()
	hub.SetPresenceStore(memberRepo)
	go hub.Run()
	messageService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	messageHandler := handlers.NewMessageHandler(messageService)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Messaging
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.History)))
	mux.Handle("POST /api/v1/messages/read", auth(http.HandlerFunc(messageHandler.MarkRead)))

	// Protected - Support
	mux.Handle("GET /api/v1/support/contact", auth(http.HandlerFunc(messageHandler.SupportContact)))
	mux.Handle("GET /api/v1/support/roster", auth(middleware.RequireStaff(http.HandlerFunc(messageHandler.Roster))))

	// Realtime
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("Starting server on %s", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
