// Package apitest runs an in-process fake of the SplitMint REST API.
//
// The fake keeps users, groups and expenses in memory, issues real HS256
// access tokens and records every request so tests can assert on wire
// details such as headers and payload shape.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitmint/internal/models"
)

// Route patterns served by the fake. They double as keys for Fail and Requests.
const (
	RouteToken         = "POST /auth/token"
	RouteRegister      = "POST /auth/register"
	RouteListGroups    = "GET /groups/{$}"
	RouteCreateGroup   = "POST /groups/{$}"
	RouteGetGroup      = "GET /groups/{id}"
	RouteAddMember     = "POST /groups/{id}/members"
	RouteListExpenses  = "GET /expenses/group/{id}"
	RouteBalances      = "GET /expenses/group/{id}/balances"
	RouteCreateExpense = "POST /expenses/{$}"
	RouteParseExpense  = "POST /api/parse-expense"
)

// Request is a recorded inbound request.
type Request struct {
	Method        string
	Path          string
	Pattern       string
	ContentType   string
	Authorization string
	Body          []byte
}

// Decode unmarshals the recorded JSON body into v.
func (r Request) Decode(t testing.TB, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("failed to decode %s body %q: %v", r.Pattern, r.Body, err)
	}
}

type account struct {
	user models.User
	hash []byte
}

type failure struct {
	status int
	body   string
}

// Server is the fake API. Seed it with AddUser, AddGroup and AddExpense.
type Server struct {
	URL string

	t      testing.TB
	srv    *httptest.Server
	mux    *http.ServeMux
	tokens *tokenIssuer

	mu       sync.Mutex
	accounts []*account
	groups   []*models.Group
	expenses map[string][]models.Expense
	balances map[string]string
	parsed   *models.ParsedExpense
	failures map[string]failure
	requests []Request
}

// NewServer starts a fake API that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		t:        t,
		mux:      http.NewServeMux(),
		tokens:   &tokenIssuer{secret: []byte("apitest-secret-" + uuid.NewString()), ttl: time.Hour},
		expenses: make(map[string][]models.Expense),
		balances: make(map[string]string),
		failures: make(map[string]failure),
	}

	s.mux.HandleFunc(RouteToken, s.handleToken)
	s.mux.HandleFunc(RouteRegister, s.handleRegister)
	s.mux.HandleFunc(RouteListGroups, s.authed(s.handleListGroups))
	s.mux.HandleFunc(RouteCreateGroup, s.authed(s.handleCreateGroup))
	s.mux.HandleFunc(RouteGetGroup, s.authed(s.handleGetGroup))
	s.mux.HandleFunc(RouteAddMember, s.authed(s.handleAddMember))
	s.mux.HandleFunc(RouteListExpenses, s.authed(s.handleListExpenses))
	s.mux.HandleFunc(RouteBalances, s.authed(s.handleBalances))
	s.mux.HandleFunc(RouteCreateExpense, s.authed(s.handleCreateExpense))
	s.mux.HandleFunc(RouteParseExpense, s.authed(s.handleParseExpense))

	s.srv = httptest.NewServer(s)
	s.URL = s.srv.URL
	t.Cleanup(s.srv.Close)
	return s
}

// ServeHTTP records the request, applies any injected failure and routes it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	_, pattern := s.mux.Handler(r)

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Pattern:       pattern,
		ContentType:   r.Header.Get("Content-Type"),
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})
	f, failing := s.failures[pattern]
	s.mu.Unlock()

	if failing {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = io.WriteString(w, f.body)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// Fail makes every request to route answer with status and a raw body.
func (s *Server) Fail(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, body: body}
}

// Recover undoes Fail for route.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Requests returns the recorded requests for route in arrival order.
func (s *Server) Requests(route string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if r.Pattern == route {
			out = append(out, r)
		}
	}
	return out
}

// AddUser registers an account directly.
func (s *Server) AddUser(email, password, name string) models.User {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, err := s.createAccountLocked(email, password, name)
	if err != nil {
		s.t.Fatalf("failed to add user %s: %v", email, err)
	}
	return acct.user
}

// Token issues an access token for a seeded user.
func (s *Server) Token(user models.User) string {
	s.t.Helper()
	token, err := s.tokens.issue(user.ID, user.Email)
	if err != nil {
		s.t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// AddGroup creates a group whose roster is members in the given order.
func (s *Server) AddGroup(name string, members ...models.User) models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &models.Group{ID: uuid.NewString(), Name: name}
	if len(members) > 0 {
		g.CreatedByUserID = members[0].ID
	}
	for _, m := range members {
		g.Members = append(g.Members, models.GroupMember{User: m, JoinedAt: now()})
	}
	s.groups = append(s.groups, g)
	return cloneGroup(g)
}

// AddExpense appends an expense to its group's ledger, filling ID and Date
// when unset.
func (s *Server) AddExpense(e models.Expense) models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Date.IsZero() {
		e.Date = now()
	}
	s.expenses[e.GroupID] = append(s.expenses[e.GroupID], e)
	return e
}

// SetBalances overrides the computed balances response for a group with a
// raw JSON document, preserving its key order.
func (s *Server) SetBalances(groupID, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[groupID] = raw
}

// SetParseResult sets what MintSense returns for any text.
func (s *Server) SetParseResult(p models.ParsedExpense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsed = &p
}

// Group returns a copy of the stored group.
func (s *Server) Group(id string) (models.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g := s.findGroupLocked(id); g != nil {
		return cloneGroup(g), true
	}
	return models.Group{}, false
}

// Groups returns copies of every stored group.
func (s *Server) Groups() []models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = cloneGroup(g)
	}
	return out
}

// Expenses returns the group's ledger.
func (s *Server) Expenses(groupID string) []models.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses[groupID])
}

func (s *Server) createAccountLocked(email, password, name string) (*account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	acct := &account{
		user: models.User{ID: uuid.NewString(), Email: email, Name: name},
		hash: hash,
	}
	s.accounts = append(s.accounts, acct)
	return acct, nil
}

func (s *Server) findAccountLocked(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return a
		}
	}
	return nil
}

func (s *Server) findGroupLocked(id string) *models.Group {
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func cloneGroup(g *models.Group) models.Group {
	c := *g
	c.Members = slices.Clone(g.Members)
	return c
}

func now() models.Timestamp {
	return models.Timestamp{Time: time.Now().UTC().Truncate(time.Second)}
}
