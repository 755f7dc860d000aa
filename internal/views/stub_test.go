package views

import (
	"context"
	"sync"

	"github.com/mmynk/splitmint/internal/api"
	"github.com/mmynk/splitmint/internal/models"
)

// stubAPI is a scripted API for controller tests.
type stubAPI struct {
	mu sync.Mutex

	groups    []models.Group
	groupsErr error
	createErr error

	group       *models.Group
	groupErr    error
	expenses    []models.Expense
	expensesErr error
	balances    *models.BalanceResponse
	balancesErr error

	addMemberErr error
	createExpErr error
	parsed       *models.ParsedExpense
	parseErr     error

	token    string
	loginErr error
	regErr   error

	// inFlight runs inside mutating calls, before they return.
	inFlight func()

	calls         map[string]int
	createdGroups []string
	addMemberReqs []api.AddMemberRequest
	createdExp    []api.CreateExpenseRequest
	parseReqs     []api.ParseExpenseRequest
	registerReqs  []api.RegisterRequest
}

func (s *stubAPI) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[call]++
}

func (s *stubAPI) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[call]
}

func (s *stubAPI) ListGroups(context.Context) ([]models.Group, error) {
	s.record("ListGroups")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groups, s.groupsErr
}

func (s *stubAPI) CreateGroup(_ context.Context, name string) (*models.Group, error) {
	s.record("CreateGroup")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.createdGroups = append(s.createdGroups, name)
	g := models.Group{ID: "g" + name, Name: name}
	s.groups = append(s.groups, g)
	return &g, nil
}

func (s *stubAPI) GetGroup(context.Context, string) (*models.Group, error) {
	s.record("GetGroup")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.groupErr != nil {
		return nil, s.groupErr
	}
	return s.group, nil
}

func (s *stubAPI) ListExpenses(context.Context, string) ([]models.Expense, error) {
	s.record("ListExpenses")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expenses, s.expensesErr
}

func (s *stubAPI) GetBalances(context.Context, string) (*models.BalanceResponse, error) {
	s.record("GetBalances")
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.balancesErr != nil {
		return nil, s.balancesErr
	}
	return s.balances, nil
}

func (s *stubAPI) AddMember(_ context.Context, _ string, req api.AddMemberRequest) error {
	s.record("AddMember")
	if s.inFlight != nil {
		s.inFlight()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addMemberReqs = append(s.addMemberReqs, req)
	return s.addMemberErr
}

func (s *stubAPI) CreateExpense(_ context.Context, req api.CreateExpenseRequest) (*models.Expense, error) {
	s.record("CreateExpense")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdExp = append(s.createdExp, req)
	if s.createExpErr != nil {
		return nil, s.createExpErr
	}
	return &models.Expense{ID: "e1", GroupID: req.GroupID, Amount: req.Amount}, nil
}

func (s *stubAPI) ParseExpense(_ context.Context, req api.ParseExpenseRequest) (*models.ParsedExpense, error) {
	s.record("ParseExpense")
	if s.inFlight != nil {
		s.inFlight()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parseReqs = append(s.parseReqs, req)
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return s.parsed, nil
}

func (s *stubAPI) Login(context.Context, string, string) (string, error) {
	s.record("Login")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.loginErr
}

func (s *stubAPI) Register(_ context.Context, req api.RegisterRequest) (*models.User, error) {
	s.record("Register")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registerReqs = append(s.registerReqs, req)
	if s.regErr != nil {
		return nil, s.regErr
	}
	return &models.User{ID: "new", Email: req.Email, Name: req.Name}, nil
}

var (
	_ GroupsAPI      = (*stubAPI)(nil)
	_ GroupDetailAPI = (*stubAPI)(nil)
	_ AuthAPI        = (*stubAPI)(nil)
)

// stubSession is a SessionState plus SessionLogin.
type stubSession struct {
	loading bool
	email   string

	loginErr   error
	loginToken string
	loginEmail string
}

func (s *stubSession) IsAuthenticated() bool { return s.email != "" }
func (s *stubSession) IsLoading() bool { return s.loading }
func (s *stubSession) UserEmail() string { return s.email }

func (s *stubSession) Login(_ context.Context, token, email string) error {
	if s.loginErr != nil {
		return s.loginErr
	}
	s.loginToken, s.loginEmail, s.email = token, email, email
	return nil
}

// recordingNavigator remembers every navigation target.
type recordingNavigator struct {
	mu   sync.Mutex
	dest []string
}

func (n *recordingNavigator) Navigate(_ context.Context, to string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dest = append(n.dest, to)
}

func (n *recordingNavigator) targets() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.dest...)
}

func testGroup() *models.Group {
	return &models.Group{
		ID:   "g1",
		Name: "Goa Trip",
		Members: []models.GroupMember{
			{User: models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}},
			{User: models.User{ID: "u2", Name: "Bob", Email: "bob@example.com"}},
		},
	}
}
