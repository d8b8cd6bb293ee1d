package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"datacorp/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server exposes the simulation over HTTP. Actions are fire-and-forget
// transitions: a request that fails its precondition still returns 200 with
// the (unchanged) snapshot, mirroring how the session itself treats them.
type Server struct {
	log     *slog.Logger
	session *game.Session
	hub     *Hub
	mux     *chi.Mux

	mu   sync.Mutex
	seen map[string]struct{}
	keys []string
}

// seenLimit bounds the idempotency window. Old keys age out FIFO.
const seenLimit = 4096

func New(logger *slog.Logger, session *game.Session, hub *Hub) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:     logger,
		session: session,
		hub:     hub,
		mux:     chi.NewRouter(),
		seen:    make(map[string]struct{}),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/stream", s.handleStream)
		r.Post("/actions/{action}", s.handleAction)
		r.Post("/sync/replay", s.handleSyncReplay)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Catalog())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

// ActionRequest is the body for POST /v1/actions/{action}. Fields are read
// per action; unused ones are ignored.
type ActionRequest struct {
	Index   int     `json:"index,omitempty"`
	ID      string  `json:"id,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	Side    string  `json:"side,omitempty"`
	Amount  float64 `json:"amount,omitempty"`
	Revenue float64 `json:"revenue,omitempty"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	var in ActionRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if s.alreadySeen(idempotencyKey(r)) {
		writeJSON(w, http.StatusOK, s.session.Snapshot())
		return
	}
	if !s.dispatch(action, in) {
		writeError(w, http.StatusNotFound, "unknown action: "+action)
		return
	}
	s.log.Info("action applied", "action", action)
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// dispatch routes an action name to its session handler. Returns false only
// for unknown names; known actions that fail their precondition are no-ops.
func (s *Server) dispatch(action string, in ActionRequest) bool {
	switch action {
	case "collect":
		s.session.CollectData()
	case "clean":
		s.session.CleanData()
	case "train":
		s.session.TrainModel(in.Index)
	case "upgrade":
		s.session.PurchaseUpgrade(in.Index)
	case "tool":
		s.session.PurchaseTool(in.Index)
	case "connector":
		s.session.BuildConnector(in.Index)
	case "policy":
		s.session.TogglePolicy(in.ID)
	case "dashboard":
		s.session.CreateDashboard(in.ID, in.Revenue)
	case "sell":
		s.session.SellData(in.Kind)
	case "buy-clean":
		s.session.BuyCleanData(in.ID)
	case "hire":
		s.session.HireEmployee(in.ID)
	case "unit":
		s.session.ActivateBusinessUnit(in.ID)
	case "bitcoin":
		s.session.TradeBitcoin(in.Side, in.Amount)
	case "attend-meeting":
		s.session.AttendDailyMeeting()
	case "skip-meeting":
		s.session.SkipDailyMeeting()
	case "restart":
		s.session.Restart()
	default:
		return false
	}
	return true
}

// ReplayCommand is one queued offline action.
type ReplayCommand struct {
	Action         string        `json:"action"`
	Body           ActionRequest `json:"body"`
	IdempotencyKey string        `json:"idempotency_key"`
}

func (s *Server) handleSyncReplay(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Commands []ReplayCommand `json:"commands"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results := make([]map[string]any, 0, len(in.Commands))
	for _, cmd := range in.Commands {
		key := cmd.IdempotencyKey
		if key == "" {
			key = uuid.NewString()
		}
		if s.alreadySeen(key) {
			results = append(results, map[string]any{"action": cmd.Action, "status": "duplicate"})
			continue
		}
		if !s.dispatch(cmd.Action, cmd.Body) {
			results = append(results, map[string]any{"action": cmd.Action, "status": "unknown"})
			continue
		}
		results = append(results, map[string]any{"action": cmd.Action, "status": "applied"})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"state":   s.session.Snapshot(),
	})
}

// alreadySeen records the key and reports whether it was seen before.
func (s *Server) alreadySeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return true
	}
	s.seen[key] = struct{}{}
	s.keys = append(s.keys, key)
	if len(s.keys) > seenLimit {
		delete(s.seen, s.keys[0])
		s.keys = s.keys[1:]
	}
	return false
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}

func idempotencyKey(r *http.Request) string {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key != "" {
		return key
	}
	return uuid.NewString()
}
