package ui

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"loanlens/domain/loan"
	"loanlens/internal/charts"
	"loanlens/internal/content"
	"loanlens/internal/errors"
	"loanlens/internal/format"
)

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"count":   format.Count,
		"money":   format.Money,
		"percent": format.Percent,
		"share":   format.Share,
		"since":   format.Since,
		"short": func(s string) string {
			if len(s) > 12 {
				return s[:12]
			}
			return s
		},
	}
	return template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
}

// page is the data every template needs for the layout
type page struct {
	Content   *content.Content
	Sidebar   template.HTML
	Page      string
	ScriptURL string
	Dataset   loan.Info
}

type overviewPage struct {
	page
	Metrics      []format.Metric
	Trends       []charts.Chart
	Condition    charts.Chart
	Grade        charts.Chart
	Distribution *distributionSection
}

type performancePage struct {
	page
	Condition    charts.Chart
	Grade        charts.Chart
	Distribution *distributionSection
}

type distributionSection struct {
	Action   string
	Selected loan.Condition
	Options  []loan.Condition
	Records  int
	Empty    bool
	Charts   []charts.Chart
}

type errorPage struct {
	page
	Status     int
	StatusText string
	Code       string
	Message    string
}

func (s *Server) newPage(name string) page {
	p := page{
		Content: s.content,
		Sidebar: s.content.SidebarHTML(),
		Page:    name,
	}
	if s.charts != nil {
		p.ScriptURL = s.charts.ScriptURL()
	}
	return p
}

// renderTemplate renders into a buffer first so a failing template never
// leaves a half-written page behind
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("[UI] template %s failed: %v", name, err)
		c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("template rendering failed"))
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// renderError shows the error page. Fatal dataset errors become 503 and an
// invalid selection 400; nothing of the requested page is rendered.
func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	data := errorPage{
		page:       s.newPage("error"),
		Status:     status,
		StatusText: http.StatusText(status),
		Code:       errors.GetCode(err),
		Message:    err.Error(),
	}
	data.ScriptURL = ""
	s.logError(c, status, err)
	s.renderTemplate(c, status, "error.html", data)
}

func (s *Server) logError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("[UI] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		return
	}
	s.logger.Debug("[UI] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
}
