// Package testserver is an in-memory fake of the e-library REST API.
//
// It speaks the same {success, data, message} envelope as the real backend,
// issues HS256 access tokens with rotating refresh tokens and exposes knobs
// that let tests force token expiry, refresh failures and dropped
// connections. Every route counts its hits.
package testserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	defaultSecret    = "testserver-secret"
	defaultAccessTTL = 15 * time.Minute
)

type account struct {
	user     models.User
	password string
}

type forcedReply struct {
	status  int
	message string
}

type Server struct {
	*httptest.Server

	mu        sync.Mutex
	secret    []byte
	accessTTL time.Duration

	accounts map[string]*account
	access   map[string]string // jti -> user id
	refresh  map[string]string // refresh token -> user id
	content  map[models.ContentKind][]models.Item
	messages []models.Message

	hits      map[string]int
	lastQuery map[string]string
	lastAuth  string

	failRefresh bool
	failLogout  bool
	dropped     map[string]bool
	forced      map[string]forcedReply
}

// Start serves the fake API; BaseURL returns the address clients should use.
func Start() *Server {
	s := &Server{
		secret:    []byte(defaultSecret),
		accessTTL: defaultAccessTTL,
		accounts:  map[string]*account{},
		access:    map[string]string{},
		refresh:   map[string]string{},
		content:   map[models.ContentKind][]models.Item{},
		hits:      map[string]int{},
		lastQuery: map[string]string{},
		dropped:   map[string]bool{},
		forced:    map[string]forcedReply{},
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) BaseURL() string { return s.URL + "/api" }

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		s.route(r, http.MethodPost, "/auth/register", s.handleRegister)
		s.route(r, http.MethodPost, "/auth/login/student", s.handleLoginStudent)
		s.route(r, http.MethodPost, "/auth/login/admin", s.handleLoginAdmin)
		s.route(r, http.MethodPost, "/auth/logout", s.handleLogout)
		s.route(r, http.MethodPost, "/auth/refresh", s.handleRefresh)
		s.route(r, http.MethodGet, "/auth/me", s.authed(s.handleMe))

		for _, kind := range []models.ContentKind{models.KindBooks, models.KindNotes, models.KindPYQs} {
			s.route(r, http.MethodGet, "/content/"+string(kind), s.authed(s.handleListContent(kind)))
			s.route(r, http.MethodPost, "/content/"+string(kind), s.authed(s.handleUpload(kind)))
			s.route(r, http.MethodGet, "/content/"+string(kind)+"/{id}", s.authed(s.handleGetContent(kind)))
			s.route(r, http.MethodDelete, "/admin/"+string(kind)+"/{id}", s.authed(s.handleDeleteContent(kind), models.RoleAdmin))
		}

		s.route(r, http.MethodGet, "/discussions", s.authed(s.handleListMessages))
		s.route(r, http.MethodPost, "/discussions", s.authed(s.handlePostMessage))
		s.route(r, http.MethodDelete, "/discussions/{id}", s.authed(s.handleDeleteOwnMessage))
		s.route(r, http.MethodDelete, "/admin/discussions/{id}", s.authed(s.handleDeleteMessage, models.RoleAdmin))

		s.route(r, http.MethodGet, "/admin/students", s.authed(s.handleListStudents, models.RoleAdmin))
		s.route(r, http.MethodGet, "/admin/students/pending", s.authed(s.handlePendingStudents, models.RoleAdmin))
		s.route(r, http.MethodPut, "/admin/students/{id}/approve", s.authed(s.handleSetStatus(models.StatusApproved), models.RoleAdmin))
		s.route(r, http.MethodPut, "/admin/students/{id}/block", s.authed(s.handleSetStatus(models.StatusBlocked), models.RoleAdmin))
		s.route(r, http.MethodPut, "/admin/students/{id}/unblock", s.authed(s.handleSetStatus(models.StatusApproved), models.RoleAdmin))
		s.route(r, http.MethodDelete, "/admin/students/{id}/reject", s.authed(s.handleReject, models.RoleAdmin))
		s.route(r, http.MethodGet, "/admin/dashboard/stats", s.authed(s.handleStats, models.RoleAdmin))

		s.route(r, http.MethodGet, "/students/profile", s.authed(s.handleProfile, models.RoleStudent))
		s.route(r, http.MethodPut, "/students/profile", s.authed(s.handleUpdateProfile, models.RoleStudent))
	})
	return r
}

// route registers h and wraps it with hit counting and the failure knobs.
func (s *Server) route(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := routeKey(method, pattern)
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		s.hits[key]++
		s.lastQuery[key] = req.URL.RawQuery
		s.lastAuth = req.Header.Get("Authorization")
		drop := s.dropped[key]
		forced, isForced := s.forced[key]
		s.mu.Unlock()

		if drop {
			dropConnection(w)
			return
		}
		if isForced {
			writeError(w, forced.status, forced.message)
			return
		}
		h(w, req)
	}))
}

func routeKey(method, pattern string) string {
	return method + " " + pattern
}

func dropConnection(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("testserver: response writer cannot be hijacked")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
