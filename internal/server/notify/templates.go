package notify

import (
	"bytes"
	"embed"
	"html/template"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type templateData struct {
	AppName  string
	Name     string
	Code     string
	ValidFor string
	Year     int
}

// Renderer builds Messages from the embedded HTML templates.
type Renderer struct {
	appName string
	codeTTL time.Duration
}

func NewRenderer(appName string, codeTTL time.Duration) *Renderer {
	return &Renderer{appName: appName, codeTTL: codeTTL}
}

func (r *Renderer) Welcome(email, name string) (Message, error) {
	return r.render("welcome.html", email, subjectWelcome, templateData{Name: name})
}

func (r *Renderer) PasswordReset(email, name, code string) (Message, error) {
	return r.render("reset.html", email, subjectReset, templateData{
		Name:     name,
		Code:     code,
		ValidFor: r.codeTTL.String(),
	})
}

func (r *Renderer) render(name, to, subject string, data templateData) (Message, error) {
	data.AppName = r.appName
	data.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: subject, HTML: buf.String()}, nil
}
