package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/splitmint/internal/session"
	"github.com/mmynk/splitmint/internal/views"
)

// Dialog names accepted by the open and close query parameters.
const (
	dialogMember  = "member"
	dialogExpense = "expense"
)

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	s.render.render(w, pageLanding, pageData{Title: views.Brand})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	p := s.loginPage()
	p.SelectTab(views.ParseLoginTab(r.URL.Query().Get("tab")))
	s.renderLogin(w, p)
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ctx, nav := withNavigation(r.Context())

	p := s.loginPage()
	tab := views.ParseLoginTab(r.PostForm.Get("tab"))
	p.SelectTab(tab)
	p.SetCredentials(r.PostForm.Get("email"), r.PostForm.Get("password"))

	var err error
	if tab == views.LoginTabRegister {
		err = p.SubmitRegister(ctx)
	} else {
		err = p.SubmitLogin(ctx)
	}
	if err == nil && redirect(w, r, nav) {
		return
	}
	s.renderLogin(w, p)
}

func (s *Server) renderLogin(w http.ResponseWriter, p *views.LoginPage) {
	title := "Login"
	v := p.View()
	if v.Tab == views.LoginTabRegister {
		title = "Register"
	}
	s.render.render(w, pageLogin, pageData{
		Title:  title + " · " + views.Brand,
		Navbar: s.navbar(),
		Login:  v,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, nav := withNavigation(r.Context())
	if err := s.session.Logout(ctx); err != nil {
		slog.Error("Logout failed", "error", err)
	}
	if !redirect(w, r, nav) {
		http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
	}
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	ctx, nav := withNavigation(r.Context())
	p := s.groupsPage()
	p.Mount(ctx)
	if redirect(w, r, nav) {
		return
	}
	s.renderGroups(w, p)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if !s.session.IsAuthenticated() {
		http.Redirect(w, r, session.RouteLogin, http.StatusSeeOther)
		return
	}
	p := s.groupsPage()
	if err := p.CreateGroup(r.Context(), r.PostFormValue("name")); err != nil {
		slog.Debug("Create group not completed", "error", err)
	}
	s.renderGroups(w, p)
}

// renderGroups shows the list and its alert once.
func (s *Server) renderGroups(w http.ResponseWriter, p *views.GroupsPage) {
	s.render.render(w, pageGroups, pageData{
		Title:  "Groups · " + views.Brand,
		Navbar: s.navbar(),
		Groups: p.View(),
	})
	p.DismissAlert()
}

// handleGroup loads the group detail page. Requests that only open or
// close a dialog or switch its tab reuse the loaded state.
func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	p := s.detailPage(groupID)
	q := r.URL.Query()

	uiOnly := false
	switch q.Get("open") {
	case dialogMember:
		p.MemberDialog.Show()
		uiOnly = true
	case dialogExpense:
		p.ExpenseDialog.Show()
		uiOnly = true
	}
	switch q.Get("close") {
	case dialogMember:
		p.MemberDialog.Hide()
		uiOnly = true
	case dialogExpense:
		p.ExpenseDialog.Hide()
		uiOnly = true
	}
	if tab := q.Get("tab"); tab != "" {
		p.MemberDialog.SelectTab(views.ParseMemberTab(tab))
		uiOnly = true
	}

	if !uiOnly || p.Phase() == views.PhaseUnloaded {
		if err := p.Load(r.Context(), groupID); err != nil {
			slog.Debug("Group detail partially loaded", "group_id", groupID, "error", err)
		}
	}
	s.renderGroup(w, p)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	p, ok := s.mutablePage(w, r)
	if !ok {
		return
	}

	d := p.MemberDialog
	d.Show()
	d.SelectTab(views.ParseMemberTab(r.PostForm.Get("tab")))
	if v, ok := r.PostForm["name"]; ok {
		d.SetName(first(v))
	}
	if v, ok := r.PostForm["email"]; ok {
		d.SetEmail(first(v))
	}
	if err := d.Submit(r.Context()); err != nil {
		logSubmit("Add member", err)
	}
	s.renderGroup(w, p)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := s.mutablePage(w, r)
	if !ok {
		return
	}
	s.fillExpense(p, r)
	if err := p.ExpenseDialog.Submit(r.Context()); err != nil {
		logSubmit("Add expense", err)
	}
	s.renderGroup(w, p)
}

func (s *Server) handleParseExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := s.mutablePage(w, r)
	if !ok {
		return
	}
	s.fillExpense(p, r)
	if err := p.ExpenseDialog.ParseWithMintSense(r.Context()); err != nil {
		logSubmit("MintSense parse", err)
	}
	s.renderGroup(w, p)
}

// mutablePage parses the form and returns a loaded page for the group in
// the path. A page that was never loaded (after a restart, for instance)
// is loaded first so the dialogs are bound.
func (s *Server) mutablePage(w http.ResponseWriter, r *http.Request) (*views.GroupDetailPage, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return nil, false
	}
	groupID := r.PathValue("id")
	p := s.detailPage(groupID)
	if p.Phase() == views.PhaseUnloaded {
		if err := p.Load(r.Context(), groupID); err != nil {
			slog.Debug("Group detail partially loaded", "group_id", groupID, "error", err)
		}
	}
	return p, true
}

// fillExpense copies the submitted fields into the expense dialog. Fields
// absent from the form keep their values.
func (s *Server) fillExpense(p *views.GroupDetailPage, r *http.Request) {
	d := p.ExpenseDialog
	d.Show()
	if v, ok := r.PostForm["amount"]; ok {
		d.SetAmount(first(v))
	}
	if v, ok := r.PostForm["description"]; ok {
		d.SetDescription(first(v))
	}
	if v, ok := r.PostForm["payer_id"]; ok {
		d.SetPayer(first(v))
	}
	if v, ok := r.PostForm["magic_text"]; ok {
		d.SetMagicText(first(v))
	}
}

// renderGroup shows the page and its dialog alerts once.
func (s *Server) renderGroup(w http.ResponseWriter, p *views.GroupDetailPage) {
	v := p.View()
	title := views.Brand
	if v.Name != "" {
		title = v.Name + " · " + views.Brand
	}
	s.render.render(w, pageGroup, pageData{
		Title:  title,
		Navbar: s.navbar(),
		Group:  v,
	})
	p.MemberDialog.DismissAlert()
	p.ExpenseDialog.DismissAlert()
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Loading       bool   `json:"loading"`
	Email         string `json:"email,omitempty"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: s.session.IsAuthenticated(),
		Loading:       s.session.IsLoading(),
		Email:         s.session.UserEmail(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// logSubmit logs a blocked submit at debug level. API failures were
// already logged by the dialog.
func logSubmit(op string, err error) {
	if errors.Is(err, views.ErrIncomplete) || errors.Is(err, views.ErrNoGroup) {
		slog.Debug(op+" blocked", "error", err)
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
