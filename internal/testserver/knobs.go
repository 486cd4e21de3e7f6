package testserver

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
)

// AddStudent seeds a student account. The status defaults to approved.
func (s *Server) AddStudent(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = newID()
	}
	if u.Status == "" {
		u.Status = models.StatusApproved
	}
	u.Role = models.RoleStudent
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

func (s *Server) AddAdmin(username, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := models.User{ID: newID(), Name: "Administrator", Username: username, Role: models.RoleAdmin}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

func (s *Server) AddItem(kind models.ContentKind, it models.Item) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it.ID == "" {
		it.ID = newID()
	}
	s.content[kind] = append(s.content[kind], it)
	return it
}

func (s *Server) AddMessage(m models.Message) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = newID()
	}
	s.messages = append(s.messages, m)
	return m
}

// Student returns the current server-side view of a student account.
func (s *Server) Student(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return acc.user, true
}

// Issue mints a token pair for an existing account, as a login would.
func (s *Server) Issue(userID string) (models.TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[userID]
	if !ok {
		return models.TokenPair{}, fmt.Errorf("issue tokens: no account %q", userID)
	}
	return s.issueLocked(acc)
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = map[string]string{}
}

func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = map[string]string{}
}

// FailRefresh makes /auth/refresh answer 401.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// FailLogout makes /auth/logout answer 500.
func (s *Server) FailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

// Drop closes the connection of every request to the route without a reply.
func (s *Server) Drop(method, pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropped[routeKey(method, pattern)] = true
}

// Force makes the route answer with success=false and the given status.
func (s *Server) Force(method, pattern string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced[routeKey(method, pattern)] = forcedReply{status: status, message: message}
}

// Restore removes Drop and Force settings from the route.
func (s *Server) Restore(method, pattern string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dropped, routeKey(method, pattern))
	delete(s.forced, routeKey(method, pattern))
}

// Hits reports how many requests reached the route, e.g. Hits("GET", "/auth/me").
func (s *Server) Hits(method, pattern string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[routeKey(method, pattern)]
}

// LastQuery returns the raw query string of the latest request to the route.
func (s *Server) LastQuery(method, pattern string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[routeKey(method, pattern)]
}

// TotalHits counts requests across all routes.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// LastBearer returns the token sent with the most recent request, or "".
func (s *Server) LastBearer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.TrimPrefix(s.lastAuth, "Bearer ")
}
