package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/menuboard/internal/handler"
	"github.com/dukerupert/menuboard/internal/media"
	"github.com/dukerupert/menuboard/internal/middleware"
	"github.com/dukerupert/menuboard/internal/notes"
	"github.com/dukerupert/menuboard/internal/ordering"
	"github.com/dukerupert/menuboard/internal/store"
	"github.com/dukerupert/menuboard/internal/visibility"
	ws "github.com/dukerupert/menuboard/internal/websocket"
)

// Options carries the runtime settings the server needs beyond the database.
type Options struct {
	Clock          visibility.Clock
	Media          *media.Store
	SecureCookies  bool
	NotesTTL       time.Duration
	LoginRateLimit int
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authH         *handler.AuthHandler
	menuH         *handler.MenuHandler
	noteH         *handler.NoteHandler
	businessH     *handler.BusinessHandler
	categoryH     *handler.CategoryHandler
	itemH         *handler.ItemHandler
	reorderH      *handler.ReorderHandler
	sessionStore  *store.SessionStore
	businessStore *store.BusinessStore
	kvStore       *store.KVStore
	rateLimiter   *middleware.RateLimiter
	loginLimit    int
	logger        *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	if opts.Clock == nil {
		opts.Clock = visibility.SystemClock{}
	}
	if opts.Media == nil {
		opts.Media = media.New(media.Config{})
	}
	if opts.LoginRateLimit < 1 {
		opts.LoginRateLimit = 10
	}

	userStore := store.NewUserStore(db)
	businessStore := store.NewBusinessStore(db)
	sessionStore := store.NewSessionStore(db)
	categoryStore := store.NewCategoryStore(db)
	itemStore := store.NewItemStore(db)
	kvStore := store.NewKVStore(db)

	noteSvc := notes.NewService(kvStore, opts.NotesTTL)
	coordinator := ordering.NewCoordinator(store.NewRankStore(db))

	return &Server{
		db:            db,
		hub:           hub,
		authH:         handler.NewAuthHandler(userStore, businessStore, sessionStore, opts.SecureCookies, logger.With("component", "auth")),
		menuH:         handler.NewMenuHandler(businessStore, categoryStore, itemStore, noteSvc, opts.Media, opts.Clock, logger.With("component", "menu")),
		noteH:         handler.NewNoteHandler(businessStore, itemStore, noteSvc, opts.SecureCookies, logger.With("component", "notes")),
		businessH:     handler.NewBusinessHandler(businessStore, hub, logger.With("component", "business")),
		categoryH:     handler.NewCategoryHandler(categoryStore, hub, logger.With("component", "category")),
		itemH:         handler.NewItemHandler(itemStore, categoryStore, opts.Media, hub, logger.With("component", "item")),
		reorderH:      handler.NewReorderHandler(coordinator, categoryStore, itemStore, hub, logger.With("component", "ordering")),
		sessionStore:  sessionStore,
		businessStore: businessStore,
		kvStore:       kvStore,
		rateLimiter:   middleware.NewRateLimiter(),
		loginLimit:    opts.LoginRateLimit,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// KVStore returns the key-value store for cleanup tasks.
func (s *Server) KVStore() *store.KVStore {
	return s.kvStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /logout", s.authH.Logout)

	outerMux.HandleFunc("GET /api/businesses", s.menuH.ListBusinesses)
	outerMux.HandleFunc("GET /api/menus/{slug}", s.menuH.Menu)
	outerMux.HandleFunc("GET /api/menus/{slug}/items/{id}", s.menuH.Item)
	outerMux.HandleFunc("GET /api/search", s.menuH.Search)
	outerMux.HandleFunc("GET /media/{key...}", s.menuH.Media)
	outerMux.HandleFunc("GET /ws/menus/{slug}", ws.HandleWebSocket(s.hub, s.menuH.ResolveBusiness))

	// Visitor notes
	outerMux.HandleFunc("GET /api/notes", s.noteH.List)
	outerMux.HandleFunc("DELETE /api/notes", s.noteH.Clear)
	outerMux.HandleFunc("POST /api/menus/{slug}/notes/{item_id}", s.noteH.Save)
	outerMux.HandleFunc("DELETE /api/menus/{slug}/notes/{item_id}", s.noteH.Delete)

	// Owner routes, wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.businessStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByIP, s.loginLimit, time.Minute)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", s.businessH.Dashboard)
	mux.HandleFunc("GET /api/business", s.businessH.Get)
	mux.HandleFunc("PUT /api/business", s.businessH.Update)
	mux.HandleFunc("GET /api/business/hours", s.businessH.GetHours)
	mux.HandleFunc("PUT /api/business/hours", s.businessH.UpdateHours)

	mux.HandleFunc("GET /api/categories", s.categoryH.List)
	mux.HandleFunc("POST /api/categories", s.categoryH.Create)
	mux.HandleFunc("PUT /api/categories/{id}", s.categoryH.Update)
	mux.HandleFunc("DELETE /api/categories/{id}", s.categoryH.Delete)

	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("GET /api/items/{id}", s.itemH.Get)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)
	mux.HandleFunc("POST /api/items/{id}/image", s.itemH.UploadImage)

	mux.HandleFunc("GET /api/menu-order", s.reorderH.Order)
	mux.HandleFunc("POST /api/menu-order/categories", s.reorderH.ReorderCategories)
	mux.HandleFunc("POST /api/menu-order/items", s.reorderH.ReorderItems)
}
