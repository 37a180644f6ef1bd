package server

import (
	"net/http"
)

var policyPages = map[string]string{
	"terms":   "Terms of Service",
	"privacy": "Privacy Policy",
	"cookies": "Cookie Policy",
}

// IndexHandler renders the home page. Any other unmatched path is a 404.
func (s *Server) IndexHandler() http.HandlerFunc {
	render := s.page("index.html")
	notFound := s.NotFoundHandler()

	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != RouteIndex {
			notFound(w, r)
			return
		}
		render(w, r, s.pageData(r, ""))
	}
}

func (s *Server) AboutHandler() http.HandlerFunc {
	render := s.page("about.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, s.pageData(r, "About"))
	}
}

func (s *Server) PolicyHandler() http.HandlerFunc {
	render := s.page("policy.html")
	notFound := s.NotFoundHandler()

	return func(w http.ResponseWriter, r *http.Request) {
		page := r.PathValue("page")
		title, ok := policyPages[page]
		if !ok {
			notFound(w, r)
			return
		}
		data := s.pageData(r, title)
		data.Policy = page
		render(w, r, data)
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	render := s.pageWithStatus("not_found.html", http.StatusNotFound)
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, s.pageData(r, "Not found"))
	}
}
