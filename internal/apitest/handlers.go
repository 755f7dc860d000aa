package apitest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitmint/internal/models"
)

// validationError is one entry of a 422 detail array.
type validationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail any) {
	writeJSON(w, status, map[string]any{"detail": detail})
}

// authed rejects requests without a valid bearer token.
func (s *Server) authed(next func(http.ResponseWriter, *http.Request, models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c, err := s.tokens.validate(token)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		s.mu.Lock()
		acct := s.findAccountLocked(c.Email)
		s.mu.Unlock()
		if acct == nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next(w, r, acct.user)
	}
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}
	email, password := r.PostForm.Get("username"), r.PostForm.Get("password")

	s.mu.Lock()
	acct := s.findAccountLocked(email)
	s.mu.Unlock()
	if acct == nil || bcrypt.CompareHashAndPassword(acct.hash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := s.tokens.issue(acct.user.ID, acct.user.Email)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	var problems []validationError
	if !strings.Contains(req.Email, "@") {
		problems = append(problems, validationError{
			Loc:  []string{"body", "email"},
			Msg:  "value is not a valid email address",
			Type: "value_error",
		})
	}
	if len(req.Password) < 8 {
		problems = append(problems, validationError{
			Loc:  []string{"body", "password"},
			Msg:  "String should have at least 8 characters",
			Type: "string_too_short",
		})
	}
	if len(problems) > 0 {
		writeDetail(w, http.StatusUnprocessableEntity, problems)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findAccountLocked(req.Email) != nil {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	acct, err := s.createAccountLocked(req.Email, req.Password, req.Name)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) handleListGroups(w http.ResponseWriter, _ *http.Request, caller models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := []models.Group{}
	for _, g := range s.groups {
		for _, m := range g.Members {
			if m.User.ID == caller.ID {
				groups = append(groups, cloneGroup(g))
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request, caller models.User) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := &models.Group{
		ID:              uuid.NewString(),
		Name:            req.Name,
		CreatedByUserID: caller.ID,
		Members:         []models.GroupMember{{User: caller, JoinedAt: now()}},
	}
	s.groups = append(s.groups, g)
	writeJSON(w, http.StatusOK, cloneGroup(g))
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request, _ models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.findGroupLocked(r.PathValue("id"))
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Group not found")
		return
	}
	writeJSON(w, http.StatusOK, cloneGroup(g))
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request, _ models.User) {
	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if (req.Name == nil) == (req.Email == nil) {
		writeDetail(w, http.StatusBadRequest, "Provide either name or email")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.findGroupLocked(r.PathValue("id"))
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Group not found")
		return
	}

	var user models.User
	if req.Email != nil {
		acct := s.findAccountLocked(*req.Email)
		if acct == nil {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		user = acct.user
	} else {
		id := uuid.NewString()
		user = models.User{ID: id, Email: id + "@placeholder.splitmint", Name: *req.Name}
	}
	for _, m := range g.Members {
		if m.User.ID == user.ID {
			writeDetail(w, http.StatusBadRequest, "User already in group")
			return
		}
	}
	g.Members = append(g.Members, models.GroupMember{User: user, JoinedAt: now()})
	writeJSON(w, http.StatusOK, cloneGroup(g))
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request, _ models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expenses := s.expenses[r.PathValue("id")]
	if expenses == nil {
		expenses = []models.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request, _ models.User) {
	id := r.PathValue("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	if raw, ok := s.balances[id]; ok {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, raw)
		return
	}
	g := s.findGroupLocked(id)
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Group not found")
		return
	}
	balances := netBalances(g, s.expenses[id])
	writeJSON(w, http.StatusOK, models.BalanceResponse{
		Balances:    balances,
		Settlements: suggestSettlements(balances),
	})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request, _ models.User) {
	var req struct {
		Amount      models.Amount         `json:"amount"`
		Description string                `json:"description"`
		SplitType   models.SplitType      `json:"split_type"`
		GroupID     string                `json:"group_id"`
		PayerID     string                `json:"payer_id"`
		Splits      []models.ExpenseSplit `json:"splits"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}
	if !req.SplitType.Valid() {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid split_type")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.findGroupLocked(req.GroupID)
	if g == nil {
		writeDetail(w, http.StatusNotFound, "Group not found")
		return
	}
	if !isMember(g, req.PayerID) {
		writeDetail(w, http.StatusBadRequest, "Payer is not a member of this group")
		return
	}

	e := models.Expense{
		ID:          uuid.NewString(),
		GroupID:     req.GroupID,
		PayerID:     req.PayerID,
		Amount:      req.Amount,
		Description: req.Description,
		SplitType:   req.SplitType,
		Date:        now(),
		Splits:      req.Splits,
	}
	s.expenses[e.GroupID] = append(s.expenses[e.GroupID], e)
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleParseExpense(w http.ResponseWriter, r *http.Request, _ models.User) {
	var req struct {
		Text    string `json:"text"`
		GroupID string `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid JSON body")
		return
	}

	s.mu.Lock()
	parsed := s.parsed
	s.mu.Unlock()
	if parsed == nil {
		writeDetail(w, http.StatusServiceUnavailable, "MintSense is not configured")
		return
	}
	writeJSON(w, http.StatusOK, parsed)
}

func isMember(g *models.Group, userID string) bool {
	for _, m := range g.Members {
		if m.User.ID == userID {
			return true
		}
	}
	return false
}
