package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Marketing pages
	RouteIndex    = "/"
	RouteAbout    = "/about"
	RoutePolicies = "/policies/{page}"

	// Auth Routes - Login & Logout
	RouteLogin  = "/auth/login"
	RouteLogout = "/auth/logout"

	// Auth Routes - Registration & Verification
	RouteRegister = "/auth/register"
	RouteVerify   = "/auth/verify"
	RouteActivate = "/activate"

	// Auth Routes - Password Management
	RouteForgotPassword = "/auth/forgot-password"
	RouteResetPassword  = "/auth/reset-password"

	// OAuth Routes
	RouteOAuthStart     = "/api/auth/{provider}"
	RouteOAuthStartBare = "/api/auth/{$}"
	RouteOAuthCallback  = "/oauth2/callback/{provider}"

	// Dashboard Routes
	RouteDashboard         = "/dashboard"
	RouteDashboardProfile  = "/dashboard/profile"
	RouteDashboardMessages = "/dashboard/messages"
	RouteDashboardUsers    = "/dashboard/users"
	RouteDashboardUserRole = "/dashboard/users/{id}/roles"
	RouteDashboardUserDel  = "/dashboard/users/{id}/delete"
	RouteDashboardReports  = "/dashboard/reports"
	RouteDashboardResolve  = "/dashboard/reports/{id}/resolve"

	// API Routes
	RouteAPISession        = "/api/session"
	RouteAPIDashboardStats = "/api/dashboard/stats"
	RouteDebugAPIStatus    = "/debug/api-status"
	RouteMetrics           = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
