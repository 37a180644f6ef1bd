package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/jrsteele09/swiftchat-web/internal/utils"
	"github.com/rs/zerolog/log"
)

// DashboardHandler is the authenticated landing page
func (s *Server) DashboardHandler() http.HandlerFunc {
	render := s.page("dashboard.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, s.pageData(r, "Dashboard"))
	}
}

// ProfileHandler re-reads the user from the backend before rendering. A
// rejected credential ends the session and sends the user to log in.
func (s *Server) ProfileHandler() http.HandlerFunc {
	render := s.page("profile.html")
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := controllerFrom(r.Context())
		_, err := ctrl.RefreshUser(r.Context())
		if gateway.IsUnauthorized(err) {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		data := s.pageData(r, "Profile")
		if err != nil {
			data.Error = err.Error()
		}
		render(w, r, data)
	}
}

func (s *Server) MessagesHandler() http.HandlerFunc {
	render := s.page("messages.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, s.pageData(r, "Messages"))
	}
}

// AdminUsersListHandler lists users (GET /dashboard/users?page=)
func (s *Server) AdminUsersListHandler() http.HandlerFunc {
	render := s.page("users.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.pageData(r, "Users")
		data.Error = q.Get("error")
		data.Message = q.Get("message")

		api := s.gatewayFor(browserIDFrom(r.Context()))
		page, err := api.ListUsers(r.Context(), queryInt(q, "page"), queryInt(q, "limit"))
		if err != nil {
			log.Debug().Err(err).Msg("Failed to list users")
			data.Error = err.Error()
		}
		data.Users = page
		render(w, r, data)
	}
}

// AdminUserRolesHandler replaces a user's roles (POST /dashboard/users/{id}/roles)
func (s *Server) AdminUserRolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		roles := utils.SplitList(strings.Join(r.Form["roles"], ","))
		api := s.gatewayFor(browserIDFrom(r.Context()))
		if _, err := api.UpdateUser(r.Context(), r.PathValue("id"), map[string]any{"roles": roles}); err != nil {
			redirectWithError(w, r, RouteDashboardUsers, err.Error(), nil)
			return
		}
		redirectSuccess(w, r, RouteDashboardUsers+"?"+url.Values{"message": {"User updated"}}.Encode())
	}
}

// AdminUserDeleteHandler removes a user (POST /dashboard/users/{id}/delete)
func (s *Server) AdminUserDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := s.gatewayFor(browserIDFrom(r.Context()))
		if _, err := api.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
			redirectWithError(w, r, RouteDashboardUsers, err.Error(), nil)
			return
		}
		redirectSuccess(w, r, RouteDashboardUsers+"?"+url.Values{"message": {"User deleted"}}.Encode())
	}
}

// ReportsHandler lists moderation reports (GET /dashboard/reports?page=)
func (s *Server) ReportsHandler() http.HandlerFunc {
	render := s.page("reports.html")
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		data := s.pageData(r, "Reports")
		data.Error = q.Get("error")
		data.Message = q.Get("message")

		api := s.gatewayFor(browserIDFrom(r.Context()))
		page, err := api.ListReports(r.Context(), queryInt(q, "page"), queryInt(q, "limit"))
		if err != nil {
			log.Debug().Err(err).Msg("Failed to list reports")
			data.Error = err.Error()
		}
		data.Reports = page
		render(w, r, data)
	}
}

// ResolveReportHandler closes a report (POST /dashboard/reports/{id}/resolve)
func (s *Server) ResolveReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		resolution := strings.TrimSpace(r.FormValue("resolution"))
		api := s.gatewayFor(browserIDFrom(r.Context()))
		if _, err := api.ResolveReport(r.Context(), r.PathValue("id"), resolution); err != nil {
			redirectWithError(w, r, RouteDashboardReports, err.Error(), nil)
			return
		}
		redirectSuccess(w, r, RouteDashboardReports+"?"+url.Values{"message": {"Report resolved"}}.Encode())
	}
}

// DashboardStatsHandler returns the summary figures as JSON (GET /api/dashboard/stats)
func (s *Server) DashboardStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		api := s.gatewayFor(browserIDFrom(r.Context()))
		stats, err := api.GetStats(r.Context())
		if err != nil {
			status := gateway.StatusOf(err)
			if status < http.StatusBadRequest {
				status = http.StatusBadGateway
			}
			writeJSON(w, status, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

// queryInt reads a positive integer parameter; anything else is 0 and takes the default
func queryInt(q url.Values, key string) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
