package views

import "github.com/mmynk/splitmint/internal/session"

// Brand is the product name shown in the navbar.
const Brand = "SplitMint"

// Navbar is the top bar: brand link plus identity or a login link.
type Navbar struct {
	Brand      string
	Home       string
	UserEmail  string
	ShowLogout bool
	ShowLogin  bool
}

// NewNavbar reads the current session.
func NewNavbar(s SessionState) Navbar {
	email := s.UserEmail()
	return Navbar{
		Brand:      Brand,
		Home:       session.RouteGroups,
		UserEmail:  email,
		ShowLogout: email != "",
		ShowLogin:  email == "",
	}
}
