// Package views renders the demo's HTML pages from embedded templates.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// HomeData is the model for the home page.
type HomeData struct {
	Title    string
	Username string
}

// UserData is the model for the proxied-API result page.
type UserData struct {
	Username  string
	Routename string
	// Data is the pretty-printed upstream response body.
	Data string
}

// Renderer renders the application's views.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{templates: tmpl}, nil
}

// Home renders the home page.
func (r *Renderer) Home(w io.Writer, data HomeData) error {
	return r.templates.ExecuteTemplate(w, "index.html", data)
}

// UserData renders the result of an authenticated API call.
func (r *Renderer) UserData(w io.Writer, data UserData) error {
	return r.templates.ExecuteTemplate(w, "user-data.html", data)
}
