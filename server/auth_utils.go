package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jrsteele09/swiftchat-web/session"
)

const (
	// browserSessionCookie identifies the browser context. It carries no credentials.
	browserSessionCookie = "browserSessionId"
)

type contextKey string

const (
	browserIDKey  contextKey = "browserID"
	controllerKey contextKey = "controller"
)

// BrowserContextMiddleware assigns every browser a stable context ID, binds its
// session controller to the request and kicks off the startup session check.
func (s *Server) BrowserContextMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID := ""
		if cookie, err := r.Cookie(browserSessionCookie); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				browserID = id.String()
			}
		}
		if browserID == "" {
			browserID = uuid.NewString()
		}
		s.SetBrowserSessionCookie(w, browserID, r)

		ctrl := s.registry.Get(browserID)
		ctrl.Start(r.Context())

		ctx := context.WithValue(r.Context(), browserIDKey, browserID)
		ctx = context.WithValue(ctx, controllerKey, ctrl)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) SetBrowserSessionCookie(w http.ResponseWriter, browserID string, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     browserSessionCookie,
		Value:    browserID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetMaxSessionAge().Seconds()),
	})
}

func browserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(browserIDKey).(string)
	return id
}

func controllerFrom(ctx context.Context) *session.Controller {
	ctrl, _ := ctx.Value(controllerKey).(*session.Controller)
	return ctrl
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError redirects back to a form, carrying the message and any values to keep
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string, keep url.Values) {
	q := url.Values{"error": {errorMsg}}
	for k, v := range keep {
		if len(v) > 0 && v[0] != "" {
			q.Set(k, v[0])
		}
	}
	redirectSuccess(w, r, path+"?"+q.Encode())
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
