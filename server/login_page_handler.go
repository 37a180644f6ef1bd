package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/rs/zerolog/log"
)

// LoginPageUIHandler displays the login page (GET /auth/login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	render := s.page("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		// An established session has nothing to do here
		if ctrl := controllerFrom(r.Context()); ctrl != nil && ctrl.State() == session.StateAuthenticated {
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		q := r.URL.Query()
		data := s.pageData(r, "Log in")
		data.Email = q.Get("email")
		data.Error = q.Get("error")
		if q.Get("resetSuccess") == "true" {
			data.Message = "Your password has been reset. Please log in with your new password."
		}
		render(w, r, data)
	}
}

// LoginSubmissionHandler processes the login form (POST /auth/login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")

		if err := validateLogin(email, password); err != nil {
			s.renderLoginError(w, r, err.Error(), email)
			return
		}

		// The startup check must settle first or it could discard the new credential
		ctrl := controllerFrom(r.Context())
		ctrl.AwaitResolved(r.Context(), s.config.GetGuardWait())
		if _, err := ctrl.Login(r.Context(), email, password); err != nil {
			log.Debug().Err(err).Str("browser", ctrl.ID()).Msg("Login failed")
			s.renderLoginError(w, r, err.Error(), email)
			return
		}

		redirectSuccess(w, r, RouteDashboard)
	}
}

// LogoutHandler forgets the session locally; the backend is not told
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctrl := controllerFrom(r.Context()); ctrl != nil {
			ctrl.Logout(r.Context())
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	redirectWithError(w, r, RouteLogin, errorMsg, url.Values{"email": {email}})
}
