package testserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/elibrary/internal/client/models"
	"github.com/dmitrijs2005/elibrary/internal/common"
	"github.com/go-chi/chi/v5"
)

type ctxKey struct{}

func accountFrom(ctx context.Context) models.User {
	u, _ := ctx.Value(ctxKey{}).(models.User)
	return u
}

// authed requires a live access token and, when roles are given, one of them.
func (s *Server) authed(h http.HandlerFunc, roles ...models.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "No token provided")
			return
		}
		claims, err := parseToken(raw, s.secret)
		if errors.Is(err, common.ErrTokenExpired) {
			writeError(w, http.StatusUnauthorized, "Token expired")
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		s.mu.Lock()
		userID, live := s.access[claims.ID]
		acc, exists := s.accounts[userID]
		var user models.User
		if exists {
			user = acc.user
		}
		s.mu.Unlock()

		if !live || !exists {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, user.Role) {
			writeError(w, http.StatusForbidden, "Access denied")
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, user)))
	}
}

func (s *Server) issueLocked(acc *account) (models.TokenPair, error) {
	access, jti, err := generateToken(acc.user.ID, string(acc.user.Role), s.secret, s.accessTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refresh, err := generateRefreshToken()
	if err != nil {
		return models.TokenPair{}, err
	}
	s.access[jti] = acc.user.ID
	s.refresh[refresh] = acc.user.ID
	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func decodeBody(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decodeBody(r, &reg) || reg.Email == "" || reg.Password == "" || reg.Name == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Email, reg.Email) {
			writeError(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	u := models.User{
		ID:         newID(),
		Name:       reg.Name,
		Email:      reg.Email,
		Role:       models.RoleStudent,
		Department: reg.Department,
		Year:       reg.Year,
		RollNo:     reg.RollNo,
		Mobile:     reg.Mobile,
		Status:     models.StatusPending,
	}
	s.accounts[u.ID] = &account{user: u, password: reg.Password}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Message: "Registration successful. Please wait for admin approval."})
}

func (s *Server) handleLoginStudent(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(r, &in) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.login(w, func(u models.User) bool {
		return u.Role == models.RoleStudent && strings.EqualFold(u.Email, in.Email)
	}, in.Password)
}

func (s *Server) handleLoginAdmin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(r, &in) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	s.login(w, func(u models.User) bool {
		return u.Role == models.RoleAdmin && u.Username == in.Username
	}, in.Password)
}

func (s *Server) login(w http.ResponseWriter, match func(models.User) bool, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if !match(acc.user) {
			continue
		}
		if acc.password != password {
			break
		}
		switch acc.user.Status {
		case models.StatusPending:
			writeError(w, http.StatusForbidden, "Your account is pending approval")
			return
		case models.StatusBlocked:
			writeError(w, http.StatusForbidden, "Your account has been blocked")
			return
		}
		pair, err := s.issueLocked(acc)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeData(w, http.StatusOK, models.LoginResult{User: acc.user, TokenPair: pair})
		return
	}
	writeError(w, http.StatusUnauthorized, "Invalid credentials")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failLogout {
		writeError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if claims, err := parseToken(raw, s.secret); err == nil {
		userID := s.access[claims.ID]
		for jti, id := range s.access {
			if id == userID {
				delete(s.access, jti)
			}
		}
		for tok, id := range s.refresh {
			if id == userID {
				delete(s.refresh, tok)
			}
		}
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Logged out successfully"})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = decodeBody(r, &in)

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.refresh[in.RefreshToken]
	if s.failRefresh || !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	acc, ok := s.accounts[userID]
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refresh, in.RefreshToken)
	pair, err := s.issueLocked(acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, pair)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, accountFrom(r.Context()))
}

func (s *Server) handleListContent(kind models.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		search := strings.ToLower(q.Get("search"))

		s.mu.Lock()
		defer s.mu.Unlock()

		out := []models.Item{}
		for _, it := range s.content[kind] {
			switch {
			case q.Get("department") != "" && !strings.EqualFold(it.Department, q.Get("department")):
				continue
			case q.Get("year") != "" && it.Year != q.Get("year"):
				continue
			case q.Get("category") != "" && !strings.EqualFold(it.Category, q.Get("category")):
				continue
			case search != "" && !strings.Contains(strings.ToLower(it.Name), search):
				continue
			}
			it.FileData = ""
			out = append(out, it)
		}
		writeData(w, http.StatusOK, out)
	}
}

func (s *Server) handleGetContent(kind models.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()

		for _, it := range s.content[kind] {
			if it.ID == id {
				writeData(w, http.StatusOK, it)
				return
			}
		}
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleUpload(kind models.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid form")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "File is required")
			return
		}
		defer file.Close()
		content, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid file")
			return
		}
		if r.FormValue("name") == "" || r.FormValue("category") == "" {
			writeError(w, http.StatusBadRequest, "Name and category are required")
			return
		}

		mime := header.Header.Get("Content-Type")
		if mime == "" {
			mime = "application/octet-stream"
		}
		user := accountFrom(r.Context())
		it := models.Item{
			ID:           newID(),
			Name:         r.FormValue("name"),
			Category:     r.FormValue("category"),
			Department:   r.FormValue("department"),
			Year:         r.FormValue("year"),
			UploaderName: user.DisplayName(),
			FileName:     header.Filename,
			MimeType:     mime,
			FileData:     "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content),
			CreatedAt:    time.Now().UTC(),
		}

		s.mu.Lock()
		s.content[kind] = append(s.content[kind], it)
		s.mu.Unlock()

		it.FileData = ""
		writeData(w, http.StatusCreated, it)
	}
}

func (s *Server) handleDeleteContent(kind models.ContentKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()

		items := s.content[kind]
		for i, it := range items {
			if it.ID == id {
				s.content[kind] = slices.Delete(items, i, i+1)
				writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Deleted"})
				return
			}
		}
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, append([]models.Message{}, s.messages...))
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Text string `json:"text"`
	}
	if !decodeBody(r, &in) || strings.TrimSpace(in.Text) == "" {
		writeError(w, http.StatusBadRequest, "Message text is required")
		return
	}
	user := accountFrom(r.Context())
	m := models.Message{
		ID:        newID(),
		Name:      user.DisplayName(),
		From:      user.ID,
		Text:      in.Text,
		Highlight: user.Role == models.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.mu.Unlock()

	writeData(w, http.StatusCreated, m)
}

func (s *Server) handleDeleteOwnMessage(w http.ResponseWriter, r *http.Request) {
	user := accountFrom(r.Context())
	s.deleteMessage(w, chi.URLParam(r, "id"), func(m models.Message) bool {
		return user.Role == models.RoleAdmin || m.From == user.ID
	})
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	s.deleteMessage(w, chi.URLParam(r, "id"), func(models.Message) bool { return true })
}

func (s *Server) deleteMessage(w http.ResponseWriter, id string, allowed func(models.Message) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID != id {
			continue
		}
		if !allowed(m) {
			writeError(w, http.StatusForbidden, "You can only delete your own messages")
			return
		}
		s.messages = slices.Delete(s.messages, i, i+1)
		writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Message deleted"})
		return
	}
	writeError(w, http.StatusNotFound, "Message not found")
}

func (s *Server) students(match func(models.User) bool) []models.User {
	out := []models.User{}
	for _, acc := range s.accounts {
		if acc.user.Role == models.RoleStudent && match(acc.user) {
			out = append(out, acc.user)
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	status := models.StudentStatus(r.URL.Query().Get("status"))

	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.students(func(u models.User) bool {
		return status == "" || u.Status == status
	}))
}

func (s *Server) handlePendingStudents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeData(w, http.StatusOK, s.students(func(u models.User) bool {
		return u.Status == models.StatusPending
	}))
}

func (s *Server) handleSetStatus(status models.StudentStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()

		acc, ok := s.accounts[id]
		if !ok || acc.user.Role != models.RoleStudent {
			writeError(w, http.StatusNotFound, "Student not found")
			return
		}
		acc.user.Status = status
		writeData(w, http.StatusOK, acc.user)
	}
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok || acc.user.Role != models.RoleStudent {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	delete(s.accounts, id)
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "Student rejected"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.DashboardStats{
		"totalBooks":       len(s.content[models.KindBooks]),
		"totalNotes":       len(s.content[models.KindNotes]),
		"totalPYQs":        len(s.content[models.KindPYQs]),
		"totalDiscussions": len(s.messages),
	}
	for _, acc := range s.accounts {
		if acc.user.Role != models.RoleStudent {
			continue
		}
		stats["totalStudents"]++
		if acc.user.Status == models.StatusPending {
			stats["pendingStudents"]++
		}
	}
	writeData(w, http.StatusOK, stats)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, accountFrom(r.Context()))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileUpdate
	if !decodeBody(r, &in) {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	id := accountFrom(r.Context()).ID

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Student not found")
		return
	}
	if in.Name != "" {
		acc.user.Name = in.Name
	}
	if in.Department != "" {
		acc.user.Department = in.Department
	}
	if in.Year != "" {
		acc.user.Year = in.Year
	}
	if in.Mobile != "" {
		acc.user.Mobile = in.Mobile
	}
	writeData(w, http.StatusOK, acc.user)
}
