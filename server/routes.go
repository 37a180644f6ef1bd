package server

import (
	"net/http"

	"github.com/jrsteele09/swiftchat-web/internal/metrics"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAbout, ChainMiddleware(s.AboutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RoutePolicies, ChainMiddleware(s.PolicyHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.FormSubmitMiddleWare(RouteLogin)...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// SIGNUP & VERIFICATION
	s.RegisterRouteHandler("GET "+RouteRegister, ChainMiddleware(s.SignupGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteRegister, ChainMiddleware(s.SignupPostHandler(), s.FormSubmitMiddleWare(RouteRegister)...))
	s.RegisterRouteHandler("GET "+RouteVerify, ChainMiddleware(s.VerifyEmailHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteActivate, ChainMiddleware(s.ActivateHandler(), s.HTMLMiddleWare()...))

	// PASSWORD RESET
	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordPostHandler(), s.FormSubmitMiddleWare(RouteForgotPassword)...))
	s.RegisterRouteHandler("GET "+RouteResetPassword, ChainMiddleware(s.ResetPasswordGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordPostHandler(), s.FormSubmitMiddleWare(RouteResetPassword)...))

	// OAUTH
	s.RegisterRouteHandler("GET "+RouteOAuthStart, ChainMiddleware(s.OAuthStartHandler(), s.APIMiddleware(s.BrowserContextMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteOAuthStartBare, ChainMiddleware(s.OAuthStartHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))

	// DASHBOARD (the landing page accepts any authenticated user so a role mismatch cannot loop)
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteDashboardProfile, ChainMiddleware(s.ProfileHandler(), s.HTMLMiddleWare(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteDashboardMessages, ChainMiddleware(s.MessagesHandler(), s.HTMLMiddleWare(s.RequireSession(roleUser, roleAdmin, roleModerator))...))
	s.RegisterRouteHandler("GET "+RouteDashboardUsers, ChainMiddleware(s.AdminUsersListHandler(), s.HTMLMiddleWare(s.RequireSession(roleAdmin))...))
	s.RegisterRouteHandler("POST "+RouteDashboardUserRole, ChainMiddleware(s.AdminUserRolesHandler(), s.HTMLMiddleWare(s.RequireSession(roleAdmin))...))
	s.RegisterRouteHandler("POST "+RouteDashboardUserDel, ChainMiddleware(s.AdminUserDeleteHandler(), s.HTMLMiddleWare(s.RequireSession(roleAdmin))...))
	s.RegisterRouteHandler("GET "+RouteDashboardReports, ChainMiddleware(s.ReportsHandler(), s.HTMLMiddleWare(s.RequireSession(roleAdmin, roleModerator))...))
	s.RegisterRouteHandler("POST "+RouteDashboardResolve, ChainMiddleware(s.ResolveReportHandler(), s.HTMLMiddleWare(s.RequireSession(roleAdmin, roleModerator))...))

	// API
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware(s.BrowserContextMiddleware)...))
	s.RegisterRouteHandler("OPTIONS "+RouteAPISession, ChainMiddleware(preflightHandler, s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIDashboardStats, ChainMiddleware(s.DashboardStatsHandler(), s.APIMiddleware(s.BrowserContextMiddleware, s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteDebugAPIStatus, ChainMiddleware(s.APIStatusHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteMetrics, metrics.Handler(s.gatherer))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.CSSFileHandler(), RequestIDMiddleware, s.LoggingMiddleware, s.CacheMiddleware))
}

// submitLimit applies the per-browser rate limit to a form submission, when enabled
func (s *Server) submitLimit(route string) func(http.HandlerFunc) http.HandlerFunc {
	if !s.config.GetEnableRateLimiting() {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}
	return s.limiter.Middleware(route)
}

// preflightHandler answers OPTIONS requests that carry no Origin; CorsMiddleware handles the rest
func preflightHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}
