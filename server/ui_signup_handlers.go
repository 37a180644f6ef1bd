package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/rs/zerolog/log"
)

// SignupGetHandler displays the registration form
func (s *Server) SignupGetHandler() http.HandlerFunc {
	render := s.page("register.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.pageData(r, "Sign up")
		data.Error = q.Get("error")
		data.Name = q.Get("name")
		data.Email = q.Get("email")
		render(w, r, data)
	}
}

// SignupPostHandler registers the account and sends the user to check their email
func (s *Server) SignupPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(r.FormValue("name"))
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		terms := r.FormValue("terms") != ""
		keep := url.Values{"name": {name}, "email": {email}}

		if err := validateRegistration(name, email, password, terms); err != nil {
			redirectWithError(w, r, RouteRegister, err.Error(), keep)
			return
		}

		api := s.gatewayFor(browserIDFrom(r.Context()))
		if _, err := api.Register(r.Context(), name, email, password); err != nil {
			log.Debug().Err(err).Msg("Registration failed")
			redirectWithError(w, r, RouteRegister, err.Error(), keep)
			return
		}

		redirectSuccess(w, r, RouteVerify+"?"+url.Values{"email": {email}}.Encode())
	}
}

// VerifyEmailHandler confirms an emailed link. Without a token it tells the
// user to check their inbox, or that the link is broken.
func (s *Server) VerifyEmailHandler() http.HandlerFunc {
	render := s.page("verify.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		token := q.Get("token")
		if token == "" {
			token = q.Get("key")
		}

		data := s.pageData(r, "Verify email")
		if token == "" {
			data.Email = q.Get("email")
			render(w, r, data)
			return
		}

		ctrl := controllerFrom(r.Context())
		ctrl.AwaitResolved(r.Context(), s.config.GetGuardWait())
		if _, err := ctrl.VerifyEmail(r.Context(), token); err != nil {
			log.Debug().Err(err).Str("browser", ctrl.ID()).Msg("Email verification failed")
			data.Error = err.Error()
			render(w, r, data)
			return
		}

		// Some backends log the user straight in on verification
		if ctrl.State() == session.StateAuthenticated {
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		data.Session = ctrl.Snapshot(r.Context())
		data.Message = "Your email has been successfully verified. Redirecting to the main page..."
		w.Header().Set("Refresh", "3; url="+RouteIndex)
		render(w, r, data)
	}
}

// ActivateHandler forwards legacy activation links to the verify page
func (s *Server) ActivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			redirectSuccess(w, r, RouteIndex)
			return
		}
		redirectSuccess(w, r, RouteVerify+"?"+url.Values{"token": {key}}.Encode())
	}
}

func (s *Server) ForgotPasswordGetHandler() http.HandlerFunc {
	render := s.page("forgot_password.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.pageData(r, "Forgot password")
		data.Error = q.Get("error")
		data.Email = q.Get("email")
		if q.Get("sent") == "true" {
			data.Message = "If an account exists for that email, a reset link is on its way."
		}
		render(w, r, data)
	}
}

func (s *Server) ForgotPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		keep := url.Values{"email": {email}}
		if err := validateEmail(email); err != nil {
			redirectWithError(w, r, RouteForgotPassword, err.Error(), keep)
			return
		}

		api := s.gatewayFor(browserIDFrom(r.Context()))
		if _, err := api.RequestPasswordReset(r.Context(), email); err != nil {
			log.Debug().Err(err).Msg("Password reset request failed")
			redirectWithError(w, r, RouteForgotPassword, err.Error(), keep)
			return
		}

		redirectSuccess(w, r, RouteForgotPassword+"?sent=true")
	}
}

func (s *Server) ResetPasswordGetHandler() http.HandlerFunc {
	render := s.page("reset_password.html")

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.pageData(r, "Reset password")
		data.Token = q.Get("token")
		data.Error = q.Get("error")
		render(w, r, data)
	}
}

func (s *Server) ResetPasswordPostHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		token := r.FormValue("token")
		if token == "" {
			// The GET page shows the invalid-link message for a missing token
			redirectSuccess(w, r, RouteResetPassword)
			return
		}

		password := r.FormValue("password")
		keep := url.Values{"token": {token}}
		if err := validatePasswordReset(password, r.FormValue("confirmPassword")); err != nil {
			redirectWithError(w, r, RouteResetPassword, err.Error(), keep)
			return
		}

		api := s.gatewayFor(browserIDFrom(r.Context()))
		if _, err := api.ConfirmPasswordReset(r.Context(), token, password); err != nil {
			log.Debug().Err(err).Msg("Password reset failed")
			redirectWithError(w, r, RouteResetPassword, err.Error(), keep)
			return
		}

		redirectSuccess(w, r, RouteLogin+"?resetSuccess=true")
	}
}
