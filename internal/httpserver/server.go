package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/fdg312/fitplanner/internal/ai"
	"github.com/fdg312/fitplanner/internal/blob"
	"github.com/fdg312/fitplanner/internal/chat"
	"github.com/fdg312/fitplanner/internal/config"
	"github.com/fdg312/fitplanner/internal/persist"
	"github.com/fdg312/fitplanner/internal/planner"
	"github.com/fdg312/fitplanner/internal/reports"
	"github.com/fdg312/fitplanner/internal/storage"
	"github.com/fdg312/fitplanner/internal/storage/backend"
	"github.com/fdg312/fitplanner/internal/storage/memory"
)

// Server is the planner HTTP API.
type Server struct {
	config      *config.Config
	mux         *http.ServeMux
	kv          storage.KVStore
	storageMode string
	exportMode  string
	planner     *planner.Service
}

// New builds the server, opening storage and registering every route.
func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage opens the configured backend. Any error falls back to memory
// so the planner stays usable for the session.
func (s *Server) initStorage() {
	kv, mode, err := backend.Open(context.Background(), s.config, log.Default())
	if err != nil {
		log.Printf("WARN storage: open failed: %v", err)
		log.Printf("WARN storage: fallback to in-memory storage")
		kv, mode = memory.New(), config.StorageModeMemory
	}
	s.kv = kv
	s.storageMode = mode
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	provider := ai.NewProvider(s.config)
	log.Printf("INFO ai: provider=%T", provider)

	// Planner: schedule, profile, generated plan, nutrition lookup
	repo := persist.NewRepository(s.kv, log.Default())
	s.planner = planner.NewService(context.Background(), repo, provider, log.Default())
	planner.NewHandlers(s.planner).Register(s.mux)

	// Chat
	chatService := chat.NewService(provider, s.planner, s.config.ChatHistoryLimit)
	chatHandler := chat.NewHandler(chatService)
	s.mux.HandleFunc("GET /v1/chat/messages", chatHandler.HandleListMessages)
	s.mux.HandleFunc("POST /v1/chat/messages", chatHandler.HandleSendMessage)
	s.mux.HandleFunc("DELETE /v1/chat/messages", chatHandler.HandleClearMessages)

	// Exports
	exportStore := s.initExportStore()
	reportsService := reports.NewService(
		s.planner,
		exportStore,
		s.config.S3.KeyPrefix,
		s.config.S3.PresignTTLSeconds,
		log.Default(),
	)
	reportsHandler := reports.NewHandlers(reportsService)
	s.mux.HandleFunc("GET /v1/export", reportsHandler.HandleExport)
	s.mux.HandleFunc("POST /v1/exports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/exports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/exports/{id}", reportsHandler.HandleDelete)
}

// initExportStore picks S3 when it is configured and a local directory
// otherwise. Without either, stored exports are disabled and only the
// streaming export route works.
func (s *Server) initExportStore() blob.Store {
	dataDir := strings.TrimSpace(s.config.DataDir)
	if dataDir == "" && !s.config.S3.IsConfigured() {
		log.Printf("INFO blob: exports disabled (no DATA_DIR and S3 not configured)")
		s.exportMode = "disabled"
		return nil
	}
	if dataDir != "" {
		dataDir = filepath.Join(dataDir, "exports")
	}

	store, mode, err := blob.NewBlobStore(blob.ModeAuto, dataDir, s.config.S3, log.Default())
	if err != nil {
		log.Printf("WARN blob: exports store init failed: %v", err)
		s.exportMode = "disabled"
		return nil
	}
	log.Printf("INFO blob: exports blob mode: %s", mode)
	s.exportMode = mode
	return store
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"storage": s.storageMode,
		"exports": s.exportMode,
	})
}

// Handler returns the mux wrapped in the middleware chain.
// Outermost first: CORS → Rate Limit → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start listens on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("INFO http: listening on http://localhost%s", addr)
	log.Printf("INFO http: health check http://localhost%s/healthz", addr)
	log.Printf("INFO http: schedule API http://localhost%s/v1/schedule", addr)

	return http.ListenAndServe(addr, s.Handler())
}

// Close releases the storage backend.
func (s *Server) Close() error {
	if s.kv != nil {
		return s.kv.Close()
	}
	return nil
}
