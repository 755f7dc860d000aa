package models

// User is a registered or placeholder account as returned by the API.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the login address. Placeholder users carry a generated address.
	Email string `json:"email"`

	// Name is the display name shown across the UI.
	Name string `json:"name"`

	// AvatarURL is optional and unused by the current views.
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Initial returns the first character of the user's name, used as an avatar.
// Returns an empty string for unnamed users.
func (u User) Initial() string {
	for _, r := range u.Name {
		return string(r)
	}
	return ""
}
