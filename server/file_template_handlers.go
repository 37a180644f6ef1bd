package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/jrsteele09/swiftchat-web/session"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout. The page
// provides the "content" block.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New("layout.html").ParseFS(TemplateFilesFS(), "layout.html", name)
}

// PageData is what every page template receives
type PageData struct {
	AppName       string
	RepositoryURL string
	Title         string
	Session       session.Snapshot
	Error         string
	Message       string

	// Form values preserved across a failed submission
	Email string
	Name  string
	Token string

	Policy  string
	Stats   *gateway.Stats
	Users   *gateway.UserPage
	Reports *gateway.ReportPage
}

func (s *Server) pageData(r *http.Request, title string) PageData {
	data := PageData{
		AppName:       s.config.GetAppName(),
		RepositoryURL: s.config.GetRepositoryURL(),
		Title:         title,
		Session:       session.Snapshot{IsLoading: true},
	}
	if ctrl := controllerFrom(r.Context()); ctrl != nil {
		data.Session = ctrl.Snapshot(r.Context())
	}
	return data
}

type renderFunc func(w http.ResponseWriter, r *http.Request, data PageData)

// page parses the template once. A template that does not parse is a build defect.
func (s *Server) page(name string) renderFunc {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request, data PageData) {
		renderStatus(w, tmpl, http.StatusOK, data)
	}
}

// pageWithStatus is page for responses that are not 200
func (s *Server) pageWithStatus(name string, status int) renderFunc {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return func(w http.ResponseWriter, r *http.Request, data PageData) {
		renderStatus(w, tmpl, status, data)
	}
}

func renderStatus(w http.ResponseWriter, tmpl *template.Template, status int, data PageData) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
