// Package web serves the SplitMint client as server-rendered HTML.
//
// Handlers drive the controllers in internal/views and render their
// snapshots with html/template. Navigation requested by a controller or by
// the session during a request becomes a 303 redirect. Mutations render the
// refreshed page in place, so each one costs exactly one refetch.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/views"
)

// Session is the session store as the web client uses it.
type Session interface {
	views.SessionState
	views.SessionLogin
	Logout(ctx context.Context) error
}

// API is every endpoint the pages call.
type API interface {
	views.GroupsAPI
	views.GroupDetailAPI
	views.AuthAPI
}

var _ API = (*api.Client)(nil)

// Server owns the page controllers of the single signed-in user.
type Server struct {
	session Session
	client  API
	render  *renderer

	mu    sync.Mutex
	pages *pageSet

	handler http.Handler
}

// pageSet holds the controllers belonging to one session. It is replaced
// whenever the signed-in email changes, so nothing a previous user loaded or
// typed is rendered to the next one.
type pageSet struct {
	owner  string
	groups *views.GroupsPage
	login  *views.LoginPage
	detail map[string]*views.GroupDetailPage
}

// New creates the server. allowedOrigins configures CORS.
func New(sess Session, client API, allowedOrigins []string) (*Server, error) {
	r, err := newRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	s := &Server{
		session: sess,
		client:  client,
		render:  r,
	}

	mux := http.NewServeMux()
	s.handle(mux, "GET /{$}", s.handleLanding)
	s.handle(mux, "GET /login", s.handleLoginPage)
	s.handle(mux, "POST /login", s.handleLoginSubmit)
	s.handle(mux, "POST /logout", s.handleLogout)
	s.handle(mux, "GET /groups", s.handleGroups)
	s.handle(mux, "POST /groups", s.handleCreateGroup)
	s.handle(mux, "GET /groups/{id}", s.handleGroup)
	s.handle(mux, "POST /groups/{id}/members", s.handleAddMember)
	s.handle(mux, "POST /groups/{id}/expenses", s.handleAddExpense)
	s.handle(mux, "POST /groups/{id}/expenses/parse", s.handleParseExpense)
	s.handle(mux, "GET /api/session", s.handleSession)
	s.handle(mux, "GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", staticHandler())

	s.handler = requestIDMiddleware(loggingMiddleware(corsMiddleware(allowedOrigins)(mux)))
	return s, nil
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, instrument(pattern, h))
}

// Handler returns the root handler, accepting HTTP/2 without TLS.
func (s *Server) Handler() http.Handler {
	return h2c.NewHandler(s.handler, &http2.Server{})
}

// currentLocked returns the pages of the current session, starting a fresh
// set when the signed-in email differs from the one they were built for.
// s.mu must be held.
func (s *Server) currentLocked() *pageSet {
	owner := s.session.UserEmail()
	if s.pages != nil && s.pages.owner == owner {
		return s.pages
	}
	if s.pages != nil {
		slog.Debug("Session changed, discarding pages")
	}
	s.pages = &pageSet{
		owner:  owner,
		groups: views.NewGroupsPage(s.client, s.session, Navigator{}),
		login:  views.NewLoginPage(s.client, s.session),
		detail: make(map[string]*views.GroupDetailPage),
	}
	return s.pages
}

func (s *Server) groupsPage() *views.GroupsPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked().groups
}

func (s *Server) loginPage() *views.LoginPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked().login
}

// detailPage returns the controller for groupID, creating it on first use.
func (s *Server) detailPage(groupID string) *views.GroupDetailPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	pages := s.currentLocked()
	p, ok := pages.detail[groupID]
	if !ok {
		p = views.NewGroupDetailPage(s.client)
		pages.detail[groupID] = p
	}
	return p
}

func (s *Server) navbar() *views.Navbar {
	nb := views.NewNavbar(s.session)
	return &nb
}
