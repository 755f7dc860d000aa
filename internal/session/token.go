package session

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// logTokenClaims records the subject and expiry of a freshly issued token.
// The signature is not verified and the result never affects session state.
func logTokenClaims(token, email string) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		slog.Debug("Session token is not a JWT", "email", email)
		return
	}

	attrs := []any{"email", email, "subject", claims.Subject}
	if claims.ExpiresAt != nil {
		attrs = append(attrs, "expires_in", time.Until(claims.ExpiresAt.Time).Round(time.Second).String())
	}
	slog.Debug("Session token stored", attrs...)
}
