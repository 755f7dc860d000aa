package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/mmynk/splitmint/internal/api"
)

// LoginTab selects between signing in and creating an account.
type LoginTab string

const (
	LoginTabLogin    LoginTab = "login"
	LoginTabRegister LoginTab = "register"
)

// ParseLoginTab maps a query value to a tab, defaulting to LoginTabLogin.
func ParseLoginTab(s string) LoginTab {
	if LoginTab(s) == LoginTabRegister {
		return LoginTabRegister
	}
	return LoginTabLogin
}

// LoginView is the renderable state of the login page.
type LoginView struct {
	Tab      LoginTab
	Email    string
	Password string
	Error    string
}

// LoginPage signs users in, or registers them and signs them in.
type LoginPage struct {
	api     AuthAPI
	session SessionLogin

	mu       sync.Mutex
	tab      LoginTab
	email    string
	password string
	errMsg   string
}

// NewLoginPage creates the login controller on the login tab.
func NewLoginPage(api AuthAPI, sess SessionLogin) *LoginPage {
	return &LoginPage{api: api, session: sess, tab: LoginTabLogin}
}

// SelectTab switches tabs, clearing the error but keeping the fields.
func (p *LoginPage) SelectTab(tab LoginTab) {
	p.mu.Lock()
	p.tab = tab
	p.errMsg = ""
	p.mu.Unlock()
}

// SetCredentials sets the email and password fields.
func (p *LoginPage) SetCredentials(email, password string) {
	p.mu.Lock()
	p.email = email
	p.password = password
	p.mu.Unlock()
}

// SubmitLogin exchanges the credentials for a token and hands it to the
// session, which navigates on success. Any failure shows a generic message.
func (p *LoginPage) SubmitLogin(ctx context.Context) error {
	email, password := p.begin()

	if err := p.login(ctx, email, password); err != nil {
		slog.Error("Login failed", "email", email, "error", err)
		p.fail(ErrorLogin)
		return err
	}
	return nil
}

// SubmitRegister creates an account named after the email's local part and,
// only if that succeeds, signs in with the same credentials. A failure at
// either step shows the server's detail when it sent one.
func (p *LoginPage) SubmitRegister(ctx context.Context) error {
	email, password := p.begin()

	_, err := p.api.Register(ctx, api.RegisterRequest{
		Email:    email,
		Password: password,
		Name:     DefaultName(email),
	})
	if err == nil {
		slog.Info("User registered", "email", email)
		err = p.login(ctx, email, password)
	}
	if err != nil {
		slog.Error("Registration failed", "email", email, "error", err)
		p.fail(RegisterErrorMessage(err))
		return err
	}
	return nil
}

func (p *LoginPage) begin() (string, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errMsg = ""
	return p.email, p.password
}

func (p *LoginPage) fail(msg string) {
	p.mu.Lock()
	p.errMsg = msg
	p.mu.Unlock()
}

func (p *LoginPage) login(ctx context.Context, email, password string) error {
	token, err := p.api.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}
	if err := p.session.Login(ctx, token, email); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

// View returns a snapshot for rendering.
func (p *LoginPage) View() LoginView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return LoginView{
		Tab:      p.tab,
		Email:    p.email,
		Password: p.password,
		Error:    p.errMsg,
	}
}

// DefaultName is the display name given to new accounts: everything before
// the first "@".
func DefaultName(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// RegisterErrorMessage returns the server's detail for err. Array details
// are joined with ", ". Anything else yields ErrorRegister.
func RegisterErrorMessage(err error) string {
	if apiErr := api.AsAPIError(err); apiErr.HasDetail() {
		return apiErr.Message()
	}
	return ErrorRegister
}
