// Package server provides the optional HTTP and WebSocket telemetry surface
// for the agent: connected clients receive every scan cycle result, and the
// agent announces itself over mDNS for auto-discovery on the local network.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"

	"github.com/pi-gadgets/flipperpi-agent/buildinfo"
	"github.com/pi-gadgets/flipperpi-agent/scan"
)

// CycleSource provides the scan results the server broadcasts. Satisfied by
// *scan.Controller.
type CycleSource interface {
	Results() <-chan scan.CycleResult
	Latest() *scan.CycleResult
}

// Config holds the server configuration.
type Config struct {
	Source CycleSource
	Port   int
}

// Server manages the HTTP and WebSocket server.
type Server struct {
	config     Config
	logger     *log.Logger
	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
	clients    *ClientManager
	upgrader   websocket.Upgrader

	// mDNS service for auto-discovery
	mdnsServer *zeroconf.Server
}

// New creates a new server instance.
func New(config Config) *Server {
	logger := log.New(os.Stderr, "[server] ", log.LstdFlags)
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		config:  config,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		clients: NewClientManager(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins
			},
		},
	}
}

// Start starts the HTTP server, the mDNS registration and the broadcast
// loop, then blocks until Stop is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.routes(),
	}

	go func() {
		s.logger.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("HTTP server error: %v", err)
		}
	}()

	if err := s.startMDNS(); err != nil {
		s.logger.Printf("Warning: failed to start mDNS service: %v", err)
		s.logger.Printf("Auto-discovery will not be available, but server will continue normally")
	}

	go s.broadcastLoop()

	<-s.ctx.Done()
	return nil
}

// Stop stops the HTTP server and mDNS registration gracefully.
// Safe to call more than once.
func (s *Server) Stop() {
	if s.mdnsServer != nil {
		s.mdnsServer.Shutdown()
		s.mdnsServer = nil
		s.logger.Println("mDNS service stopped")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			s.logger.Printf("Server shutdown error: %v", err)
		}
		s.httpServer = nil
	}

	s.cancel()
	s.clients.CloseAll()
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/ws", enableCORS(s.handleWebSocket))
	mux.HandleFunc("/", enableCORS(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(buildinfo.DisplayName + " Running"))
	}))
	return mux
}

// broadcastLoop forwards every cycle result from the source to all clients.
func (s *Server) broadcastLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case result := <-s.config.Source.Results():
			s.clients.Broadcast(&Message{
				Type:    MessageTypeCycleResult,
				Payload: result,
			})
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]any{
		"status":  "ok",
		"version": buildinfo.FullVersion(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if latest := s.config.Source.Latest(); latest != nil {
		health["lastCycleId"] = latest.ID
		health["lastCycleAt"] = latest.StartedAt.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleWebSocket upgrades HTTP connections and manages the client lifecycle.
// New clients immediately receive the latest completed cycle, if any.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("WebSocket upgrade error: %v", err)
		return
	}

	clientID := uuid.NewString()
	s.clients.Register(conn, clientID)
	s.logger.Printf("WebSocket client %s connected", clientID)

	if latest := s.config.Source.Latest(); latest != nil {
		if err := conn.WriteJSON(&Message{Type: MessageTypeCycleResult, Payload: latest}); err != nil {
			s.logger.Printf("WebSocket initial write to client %s failed: %v", clientID, err)
		}
	}

	go func() {
		defer func() {
			s.clients.Unregister(conn)
			conn.Close()
			s.logger.Printf("WebSocket client %s disconnected", clientID)
		}()
		// The telemetry stream is one-way; drain and discard client frames
		// until the connection drops.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// startMDNS registers the agent as an mDNS service for auto-discovery.
func (s *Server) startMDNS() error {
	txtRecords := []string{
		"version=" + buildinfo.Version,
		"protocol=websocket",
		"path=/ws",
	}

	server, err := zeroconf.Register(buildinfo.DisplayName, MDNSServiceType, MDNSDomain, s.config.Port, txtRecords, nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}

	s.mdnsServer = server
	s.logger.Printf("mDNS service registered: %s on port %d", MDNSServiceType, s.config.Port)
	return nil
}

// enableCORS is a middleware that adds CORS headers to responses.
func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", CORSAllowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", CORSAllowMethods)
		w.Header().Set("Access-Control-Allow-Headers", CORSAllowHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}
