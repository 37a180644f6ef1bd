package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/swiftchat-web/internal/errors"
	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/rs/zerolog/log"
)

// OAuthStartHandler sends the browser to the backend's provider login (GET /api/auth/{provider})
func (s *Server) OAuthStartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider := r.PathValue("provider")
		if provider == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": apperrors.ErrMissingProvider.Error()})
			return
		}

		target := s.gatewayFor(browserIDFrom(r.Context())).OAuthRedirectURL(provider)
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	}
}

// OAuthCallbackHandler completes a provider login (GET /oauth2/callback/{provider}).
// Each request makes at most one exchange attempt.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	render := s.page("oauth_callback.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		params := session.CallbackParams{
			Provider: r.PathValue("provider"),
			Code:     q.Get("code"),
			State:    q.Get("state"),
			Error:    q.Get("error"),
		}

		ctrl := controllerFrom(r.Context())
		ctrl.AwaitResolved(r.Context(), s.config.GetGuardWait())
		result := session.CompleteHandshake(r.Context(), ctrl, params, RouteDashboard)

		// The browser has gone; nobody is left to show the outcome to
		if r.Context().Err() != nil {
			log.Debug().Str("browser", ctrl.ID()).Str("provider", params.Provider).Msg("OAuth callback abandoned")
			return
		}

		if result.OK() {
			redirectSuccess(w, r, result.RedirectTo)
			return
		}

		log.Debug().Str("browser", ctrl.ID()).Str("provider", params.Provider).Str("error", result.Error).Msg("OAuth callback failed")
		data := s.pageData(r, "Sign-in failed")
		data.Error = result.Error
		render(w, r, data)
	}
}
