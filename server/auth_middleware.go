package server

import (
	"net/http"

	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/rs/zerolog/log"
)

// RequireSession guards a page. With no roles, authentication alone is enough.
// Role names are "user", "admin" and "moderator"; they map to the configured backend role IDs.
func (s *Server) RequireSession(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	allowed := s.roleIDs(roles)
	loading := s.loadingPage()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctrl := controllerFrom(r.Context())
			if ctrl == nil {
				log.Error().Str("path", r.URL.Path).Msg("RequireSession used without a browser context")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctrl.AwaitResolved(r.Context(), s.config.GetGuardWait())
			decision := session.Decide(ctrl.State(), func(roleID string) bool {
				return ctrl.HasRole(r.Context(), roleID)
			}, allowed)
			s.metrics.RecordGuardDecision(decision.String())

			switch decision {
			case session.DecisionLoading:
				loading(w, r)
			case session.DecisionLogin:
				redirectSuccess(w, r, RouteLogin)
			case session.DecisionLanding:
				redirectSuccess(w, r, RouteDashboard)
			default:
				next(w, r)
			}
		}
	}
}

func (s *Server) roleIDs(names []string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		switch name {
		case roleUser:
			ids = append(ids, s.roles.User)
		case roleAdmin:
			ids = append(ids, s.roles.Admin)
		case roleModerator:
			ids = append(ids, s.roles.Moderator)
		default:
			// Unknown names never match, but still make the route role-restricted
			ids = append(ids, "")
		}
	}
	return ids
}

const (
	roleUser      = "user"
	roleAdmin     = "admin"
	roleModerator = "moderator"
)

// loadingPage is rendered while the session check is still running. The
// browser retries after a second; no redirect happens from this state.
func (s *Server) loadingPage() http.HandlerFunc {
	render := s.page("loading.html")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Refresh", "1")
		w.Header().Set("Cache-Control", "no-store")
		render(w, r, s.pageData(r, "Loading"))
	}
}
