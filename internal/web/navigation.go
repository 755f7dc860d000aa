package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
)

type navigationKey struct{}

// navigation records the last target requested while a handler runs.
type navigation struct {
	mu sync.Mutex
	to string
}

func (n *navigation) set(to string) {
	n.mu.Lock()
	n.to = to
	n.mu.Unlock()
}

func (n *navigation) target() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.to
}

func withNavigation(ctx context.Context) (context.Context, *navigation) {
	nav := &navigation{}
	return context.WithValue(ctx, navigationKey{}, nav), nav
}

// Navigator turns session and page navigation into HTTP redirects. It
// must be used with contexts derived from a web handler; elsewhere the
// target is logged and dropped.
type Navigator struct{}

// Navigate records to as the redirect target of the current request.
func (Navigator) Navigate(ctx context.Context, to string) {
	nav, ok := ctx.Value(navigationKey{}).(*navigation)
	if !ok {
		slog.Debug("Navigation outside a request", "to", to)
		return
	}
	nav.set(to)
}

// redirect answers 303 See Other if the handler navigated.
func redirect(w http.ResponseWriter, r *http.Request, nav *navigation) bool {
	to := nav.target()
	if to == "" {
		return false
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
	return true
}
