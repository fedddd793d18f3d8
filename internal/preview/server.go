package preview

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/screenforge/screenforge/internal/history"
	"github.com/screenforge/screenforge/internal/snapshot"
)

// Server is the read-only preview API over the snapshot store.
type Server struct {
	store   *snapshot.Store
	history history.Store
	bus     *Bus
}

// NewServer assembles a preview server. history may be nil; the history
// endpoint then reports empty results.
func NewServer(store *snapshot.Store, hist history.Store, bus *Bus) *Server {
	return &Server{store: store, history: hist, bus: bus}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/api/screens", s.listScreens)
	r.Get("/api/screens/{operationID}", s.getScreen)
	r.Get("/api/routes", s.getRoutes)
	r.Get("/api/menu", s.getMenu)
	r.Get("/api/history/{operationID}", s.getHistory)
	r.Get("/api/watch", s.watch)
	return r
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Routes()}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Printf("preview server listening on %s", addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) listScreens(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.ListOperationIDs(snapshot.OverlayDir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"operationIds": ids})
}

func (s *Server) getScreen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "operationID")
	sc, err := s.store.LoadOverlay(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if sc == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no screen for operation "+id)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) getRoutes(w http.ResponseWriter, _ *http.Request) {
	routes, err := s.store.LoadRoutes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if routes == nil {
		routes = []snapshot.Route{}
	}
	writeJSON(w, http.StatusOK, routes)
}

func (s *Server) getMenu(w http.ResponseWriter, _ *http.Request) {
	menu, err := s.store.LoadMenu()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
		return
	}
	if menu == nil {
		menu = []snapshot.MenuGroup{}
	}
	writeJSON(w, http.StatusOK, menu)
}

func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "operationID")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	runs := []history.Run{}
	if s.history != nil {
		var err error
		runs, err = s.history.ByOperation(r.Context(), id, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "STORE_ERROR", err.Error())
			return
		}
		if runs == nil {
			runs = []history.Run{}
		}
	}
	writeJSON(w, http.StatusOK, runs)
}

// watch upgrades to WebSocket and streams regeneration events until the
// client disconnects.
func (s *Server) watch(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("preview: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	events, cancel := s.bus.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			if err := wsjson.Write(ctx, conn, evt); err != nil {
				return
			}
		}
	}
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}
