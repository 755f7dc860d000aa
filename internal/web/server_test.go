package web

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/apitest"
	"github.com/mmynk/splitmint/internal/models"
	"github.com/mmynk/splitmint/internal/session"
	"github.com/mmynk/splitmint/internal/storage/memory"
)

const testOrigin = "http://localhost:3000"

type testEnv struct {
	t     *testing.T
	fake  *apitest.Server
	sess  *session.Store
	url   string
	http  *http.Client
	alice models.User
	bob   models.User
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	fake := apitest.NewServer(t)

	sess := session.New(memory.New(), Navigator{})
	if err := sess.Hydrate(context.Background()); err != nil {
		t.Fatalf("Hydrate failed: %v", err)
	}
	srv, err := New(sess, api.New(fake.URL, sess), []string{testOrigin})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{
		t:    t,
		fake: fake,
		sess: sess,
		url:  ts.URL,
		http: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		alice: fake.AddUser("alice@example.com", "password123", "Alice"),
		bob:   fake.AddUser("bob@example.com", "password123", "Bob"),
	}
}

func (e *testEnv) signIn() {
	e.t.Helper()
	if err := e.sess.Login(context.Background(), e.fake.Token(e.alice), e.alice.Email); err != nil {
		e.t.Fatalf("Login failed: %v", err)
	}
}

func (e *testEnv) do(req *http.Request) (*http.Response, string) {
	e.t.Helper()
	resp, err := e.http.Do(req)
	if err != nil {
		e.t.Fatalf("%s %s failed: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func (e *testEnv) get(path string) (*http.Response, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.url+path, nil)
	if err != nil {
		e.t.Fatalf("failed to build request: %v", err)
	}
	return e.do(req)
}

func (e *testEnv) post(path string, form url.Values) (*http.Response, string) {
	e.t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.url+path, strings.NewReader(form.Encode()))
	if err != nil {
		e.t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func expectRedirect(t *testing.T, resp *http.Response, to string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != to {
		t.Errorf("expected redirect to %s, got %s", to, got)
	}
}

func expectContains(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("expected page to contain %q", w)
		}
	}
}

func expectNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Errorf("expected page not to contain %q", u)
		}
	}
}

func TestLanding(t *testing.T) {
	env := setup(t)

	resp, body := env.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	expectContains(t, body,
		"SplitMint",
		"Simplify your group expenses. Split bills, track debts, and settle up with MintSense AI.",
		`href="/login"`,
		`href="/groups"`,
	)

	if resp, _ := env.get("/missing"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestGroups_SignedOut(t *testing.T) {
	env := setup(t)

	resp, _ := env.get("/groups")
	expectRedirect(t, resp, session.RouteLogin)

	resp, _ = env.post("/groups", url.Values{"name": {"Trip"}})
	expectRedirect(t, resp, session.RouteLogin)

	if n := len(env.fake.Requests(apitest.RouteListGroups)); n != 0 {
		t.Errorf("expected no API calls while signed out, got %d", n)
	}
}

func TestLogin(t *testing.T) {
	env := setup(t)

	resp, _ := env.post("/login", url.Values{
		"tab":      {"login"},
		"email":    {"alice@example.com"},
		"password": {"password123"},
	})
	expectRedirect(t, resp, session.RouteGroups)

	if !env.sess.IsAuthenticated() || env.sess.UserEmail() != "alice@example.com" {
		t.Fatal("expected alice to be signed in")
	}

	_, body := env.get("/groups")
	expectContains(t, body, "alice@example.com", "Logout")
}

func TestLogin_BadCredentials(t *testing.T) {
	env := setup(t)

	resp, body := env.post("/login", url.Values{
		"tab":      {"login"},
		"email":    {"alice@example.com"},
		"password": {"wrong-password"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the login page again, got %d", resp.StatusCode)
	}
	expectContains(t, body, "Invalid credentials or server error", `value="alice@example.com"`)
	expectNotContains(t, body, "wrong-password")
	if env.sess.IsAuthenticated() {
		t.Error("expected to stay signed out")
	}

	// Switching tabs clears the error.
	_, body = env.get("/login?tab=register")
	expectNotContains(t, body, "Invalid credentials or server error")
	expectContains(t, body, `<input type="hidden" name="tab" value="register">`)
}

func TestRegister(t *testing.T) {
	env := setup(t)

	resp, _ := env.post("/login", url.Values{
		"tab":      {"register"},
		"email":    {"carol.jones@example.com"},
		"password": {"password123"},
	})
	expectRedirect(t, resp, session.RouteGroups)

	reqs := env.fake.Requests(apitest.RouteRegister)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 register request, got %d", len(reqs))
	}
	var body struct {
		Name string `json:"name"`
	}
	reqs[0].Decode(t, &body)
	if body.Name != "carol.jones" {
		t.Errorf("expected default name carol.jones, got %q", body.Name)
	}
	if env.sess.UserEmail() != "carol.jones@example.com" {
		t.Errorf("expected carol to be signed in, got %q", env.sess.UserEmail())
	}
}

func TestRegister_ValidationDetail(t *testing.T) {
	env := setup(t)

	_, body := env.post("/login", url.Values{
		"tab":      {"register"},
		"email":    {"not-an-email"},
		"password": {"short"},
	})
	expectContains(t, body, "value is not a valid email address, String should have at least 8 characters")
	if env.sess.IsAuthenticated() {
		t.Error("expected to stay signed out")
	}
	if n := len(env.fake.Requests(apitest.RouteToken)); n != 0 {
		t.Errorf("expected no login after a failed registration, got %d", n)
	}
}

func TestGroups_ListAndCreate(t *testing.T) {
	env := setup(t)
	env.signIn()
	env.fake.AddGroup("Goa Trip", env.alice, env.bob)

	_, body := env.get("/groups")
	expectContains(t, body, "Goa Trip", "2 members")

	resp, body := env.post("/groups", url.Values{"name": {"Weekend"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	expectContains(t, body, "Goa Trip", "Weekend", "1 members")

	if n := len(env.fake.Requests(apitest.RouteCreateGroup)); n != 1 {
		t.Errorf("expected 1 create request, got %d", n)
	}
	// One list for the page load, one refetch after the mutation.
	if n := len(env.fake.Requests(apitest.RouteListGroups)); n != 2 {
		t.Errorf("expected 2 list requests, got %d", n)
	}
}

func TestGroups_CreateEmptyName(t *testing.T) {
	env := setup(t)
	env.signIn()

	resp, _ := env.post("/groups", url.Values{"name": {""}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if n := len(env.fake.Requests(apitest.RouteCreateGroup)); n != 0 {
		t.Errorf("expected no create request, got %d", n)
	}
}

func TestGroups_CreateFailure(t *testing.T) {
	env := setup(t)
	env.signIn()
	env.fake.Fail(apitest.RouteCreateGroup, http.StatusInternalServerError, "")

	_, body := env.post("/groups", url.Values{"name": {"Weekend"}})
	expectContains(t, body, "Failed to create group")

	// The alert is shown once.
	_, body = env.get("/groups")
	expectNotContains(t, body, "Failed to create group")
}

// seedGroup creates Alice and Bob's group with one 40.00 dinner paid by
// Alice, so Bob owes Alice 20.00.
func (e *testEnv) seedGroup() models.Group {
	g := e.fake.AddGroup("Goa Trip", e.alice, e.bob)
	e.fake.AddExpense(models.Expense{
		GroupID:     g.ID,
		PayerID:     e.alice.ID,
		Amount:      40,
		Description: "Dinner",
		SplitType:   models.SplitEqual,
		Splits: []models.ExpenseSplit{
			{UserID: e.alice.ID, AmountOwed: 20},
			{UserID: e.bob.ID, AmountOwed: 20},
		},
	})
	return g
}

func TestGroupDetail(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()

	resp, body := env.get("/groups/" + g.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	expectContains(t, body,
		"<h1>Goa Trip</h1>",
		"(bob@example.com)",
		"+20.00",
		"-20.00",
		"Bob → Alice: 20.00",
		"Net Balances",
		"<svg",
		"Dinner",
		"40.00",
		"EQUAL",
	)
	expectNotContains(t, body, "No debts to settle.", "<dialog")
}

func TestGroupDetail_NoSettlements(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.fake.AddGroup("Empty", env.alice)

	_, body := env.get("/groups/" + g.ID)
	expectContains(t, body, "No debts to settle.")
}

func TestGroupDetail_NotFound(t *testing.T) {
	env := setup(t)
	env.signIn()

	resp, body := env.get("/groups/missing")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	expectContains(t, body, "Loading...")
}

func TestGroupDetail_DialogToggle(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()
	path := "/groups/" + g.ID

	env.get(path)

	_, body := env.get(path + "?open=member")
	expectContains(t, body, `class="dialog member-dialog"`, `name="name"`)

	_, body = env.get(path + "?open=member&tab=email")
	expectContains(t, body, `name="email"`)

	_, body = env.get(path + "?close=member")
	expectNotContains(t, body, "member-dialog")

	_, body = env.get(path + "?open=expense")
	expectContains(t, body, `class="dialog expense-dialog"`, "Select payer", ">Alice</option>", ">Bob</option>")

	if n := len(env.fake.Requests(apitest.RouteGetGroup)); n != 1 {
		t.Errorf("expected dialog toggles not to refetch, got %d group fetches", n)
	}
}

func TestAddMember(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()
	path := "/groups/" + g.ID

	env.get(path)
	_, body := env.post(path+"/members", url.Values{"tab": {"name"}, "name": {"Carol"}})
	expectContains(t, body, "Carol")
	expectNotContains(t, body, "member-dialog")

	reqs := env.fake.Requests(apitest.RouteAddMember)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 add-member request, got %d", len(reqs))
	}
	if got := string(reqs[0].Body); got != `{"name":"Carol"}` {
		t.Errorf("unexpected payload %s", got)
	}
	// Page load plus exactly one refetch.
	if n := len(env.fake.Requests(apitest.RouteGetGroup)); n != 2 {
		t.Errorf("expected 2 group fetches, got %d", n)
	}
}

func TestAddMember_Failure(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()
	path := "/groups/" + g.ID

	env.get(path)
	_, body := env.post(path+"/members", url.Values{"tab": {"email"}, "email": {"nobody@example.com"}})
	expectContains(t, body,
		"Failed to add member. If using email, ensure the user exists.",
		`value="nobody@example.com"`,
	)

	_, body = env.get(path + "?open=member")
	expectNotContains(t, body, "Failed to add member")
}

func TestAddMember_Blocked(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()

	env.post("/groups/"+g.ID+"/members", url.Values{"tab": {"name"}, "name": {""}})
	if n := len(env.fake.Requests(apitest.RouteAddMember)); n != 0 {
		t.Errorf("expected no request for an empty name, got %d", n)
	}
}

func TestAddExpense(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.fake.AddGroup("Goa Trip", env.alice, env.bob)
	path := "/groups/" + g.ID

	env.get(path)
	_, body := env.post(path+"/expenses", url.Values{
		"amount":      {"100"},
		"description": {"Hotel"},
		"payer_id":    {env.alice.ID},
		"magic_text":  {""},
	})
	expectContains(t, body, "Hotel", "100.00", "Bob → Alice: 50.00")
	expectNotContains(t, body, "expense-dialog")

	expenses := env.fake.Expenses(g.ID)
	if len(expenses) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expenses))
	}
	e := expenses[0]
	if e.SplitType != models.SplitEqual || len(e.Splits) != 2 {
		t.Fatalf("unexpected expense %+v", e)
	}
	for _, s := range e.Splits {
		if math.Abs(s.AmountOwed.Float()-50) > 0.01 {
			t.Errorf("expected 50 owed by %s, got %v", s.UserID, s.AmountOwed)
		}
	}
}

func TestAddExpense_Incomplete(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()

	_, body := env.post("/groups/"+g.ID+"/expenses", url.Values{
		"amount":      {"100"},
		"description": {""},
		"payer_id":    {env.alice.ID},
	})
	if n := len(env.fake.Requests(apitest.RouteCreateExpense)); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
	expectContains(t, body, `class="dialog expense-dialog"`, `value="100"`)
}

func TestAddExpense_Failure(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()
	env.fake.Fail(apitest.RouteCreateExpense, http.StatusInternalServerError, `{"detail":"boom"}`)

	_, body := env.post("/groups/"+g.ID+"/expenses", url.Values{
		"amount":      {"30"},
		"description": {"Taxi"},
		"payer_id":    {env.bob.ID},
	})
	expectContains(t, body, "Failed to add expense", `value="Taxi"`)
}

func TestParseExpense(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()
	env.fake.SetParseResult(models.ParsedExpense{Amount: 42.5, Description: "Taxi", PayerName: "bob"})
	path := "/groups/" + g.ID

	env.get(path)
	_, body := env.post(path+"/expenses/parse", url.Values{"magic_text": {"bob paid 42.5 for a taxi"}})
	expectContains(t, body,
		`value="42.5"`,
		`value="Taxi"`,
		`<option value="`+env.bob.ID+`" selected>Bob</option>`,
		"bob paid 42.5 for a taxi",
	)

	reqs := env.fake.Requests(apitest.RouteParseExpense)
	if len(reqs) != 1 {
		t.Fatalf("expected 1 parse request, got %d", len(reqs))
	}
	var payload struct {
		Text    string `json:"text"`
		GroupID string `json:"group_id"`
	}
	reqs[0].Decode(t, &payload)
	if payload.GroupID != g.ID {
		t.Errorf("expected group %s, got %s", g.ID, payload.GroupID)
	}
}

func TestParseExpense_NotConfigured(t *testing.T) {
	env := setup(t)
	env.signIn()
	g := env.seedGroup()

	_, body := env.post("/groups/"+g.ID+"/expenses/parse", url.Values{"magic_text": {"something"}})
	expectContains(t, body, "Failed to parse with MintSense")
}

func TestLogout(t *testing.T) {
	env := setup(t)
	env.signIn()

	resp, _ := env.post("/logout", nil)
	expectRedirect(t, resp, session.RouteLogin)
	if env.sess.IsAuthenticated() {
		t.Error("expected to be signed out")
	}

	resp, _ = env.get("/groups")
	expectRedirect(t, resp, session.RouteLogin)
}

func TestLogout_NextUserSeesNothingFromPrevious(t *testing.T) {
	env := setup(t)
	g := env.seedGroup()

	resp, _ := env.post("/login", url.Values{
		"tab":      {"login"},
		"email":    {"alice@example.com"},
		"password": {"password123"},
	})
	expectRedirect(t, resp, session.RouteGroups)
	_, body := env.get("/groups")
	expectContains(t, body, "Goa Trip")
	_, body = env.get("/groups/" + g.ID)
	expectContains(t, body, "<h1>Goa Trip</h1>", "Dinner")

	resp, _ = env.post("/logout", nil)
	expectRedirect(t, resp, session.RouteLogin)
	_, body = env.get("/login")
	expectNotContains(t, body, "alice@example.com")

	resp, _ = env.post("/login", url.Values{
		"tab":      {"login"},
		"email":    {"bob@example.com"},
		"password": {"password123"},
	})
	expectRedirect(t, resp, session.RouteGroups)

	env.fake.Fail(apitest.RouteListGroups, http.StatusInternalServerError, `{"detail":"Internal error"}`)
	_, body = env.get("/groups")
	expectContains(t, body, "bob@example.com")
	expectNotContains(t, body, "Goa Trip")

	for _, route := range []string{apitest.RouteGetGroup, apitest.RouteListExpenses, apitest.RouteBalances} {
		env.fake.Fail(route, http.StatusForbidden, `{"detail":"Not a member of this group"}`)
	}
	before := len(env.fake.Requests(apitest.RouteGetGroup))
	_, body = env.get("/groups/" + g.ID + "?open=member")
	expectContains(t, body, "Loading...")
	expectNotContains(t, body, "Goa Trip", "Dinner", "alice@example.com")
	if n := len(env.fake.Requests(apitest.RouteGetGroup)) - before; n != 1 {
		t.Errorf("expected the group to be fetched again for the new user, got %d requests", n)
	}
}

func TestSessionEndpoint(t *testing.T) {
	env := setup(t)
	env.signIn()

	resp, body := env.get("/api/session")
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON, got %s", ct)
	}
	var got sessionResponse
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !got.Authenticated || got.Loading || got.Email != "alice@example.com" {
		t.Errorf("unexpected session %+v", got)
	}
}

func TestCORS(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "allowed origin", origin: testOrigin, want: testOrigin},
		{name: "other origin", origin: "http://evil.example", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodOptions, env.url+"/api/session", nil)
			if err != nil {
				t.Fatalf("failed to build request: %v", err)
			}
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			resp, _ := env.do(req)
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("expected Access-Control-Allow-Origin %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	env := setup(t)

	resp, _ := env.get("/healthz")
	if resp.Header.Get(HeaderRequestID) == "" {
		t.Error("expected a generated request id")
	}

	req, err := http.NewRequest(http.MethodGet, env.url+"/healthz", nil)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set(HeaderRequestID, "req-123")
	resp, _ = env.do(req)
	if got := resp.Header.Get(HeaderRequestID); got != "req-123" {
		t.Errorf("expected the incoming id to be kept, got %q", got)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	env := setup(t)

	resp, body := env.get("/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, body)
	}

	env.get("/")
	_, body = env.get("/metrics")
	expectContains(t, body,
		"splitmint_web_requests_total",
		`route="GET /{$}"`,
		"splitmint_web_page_renders_total",
	)
}

func TestStatic(t *testing.T) {
	env := setup(t)

	resp, body := env.get("/static/app.css")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	expectContains(t, body, ".navbar")
}

func TestNavigatorOutsideRequest(t *testing.T) {
	// Must not panic without a recorder in the context.
	Navigator{}.Navigate(context.Background(), session.RouteGroups)

	ctx, nav := withNavigation(context.Background())
	Navigator{}.Navigate(ctx, session.RouteLogin)
	if got := nav.target(); got != session.RouteLogin {
		t.Errorf("expected %s, got %s", session.RouteLogin, got)
	}
}
