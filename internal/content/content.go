// Package content holds the dashboard's page text: titles, the sidebar
// feature list and tab labels. Defaults are embedded; a YAML file can
// override any field.
package content

import (
	_ "embed"
	"html/template"
	"os"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"gopkg.in/yaml.v3"

	"loanlens/internal/errors"
)

//go:embed dashboard.yaml
var defaultContent []byte

// Content is the text of both dashboard pages
type Content struct {
	PageTitle    string              `yaml:"page_title"`
	Title        string              `yaml:"title"`
	Sidebar      SidebarContent      `yaml:"sidebar"`
	Nav          NavContent          `yaml:"nav"`
	Trends       TabsContent         `yaml:"trends"`
	Performance  PerformanceContent  `yaml:"performance"`
	Distribution DistributionContent `yaml:"distribution"`
}

// SidebarContent is the feature list next to every page
type SidebarContent struct {
	Header   string `yaml:"header"`
	Markdown string `yaml:"markdown"`
}

// NavContent labels the page links
type NavContent struct {
	Overview    string `yaml:"overview"`
	Performance string `yaml:"performance"`
}

// TabsContent labels a tab strip
type TabsContent struct {
	Tabs []string `yaml:"tabs"`
}

// PerformanceContent labels the condition/grade panel
type PerformanceContent struct {
	Heading string `yaml:"heading"`
	Toggle  string `yaml:"toggle"`
}

// DistributionContent labels the loan-amount distribution section
type DistributionContent struct {
	Heading     string   `yaml:"heading"`
	SelectLabel string   `yaml:"select_label"`
	Empty       string   `yaml:"empty"`
	Tabs        []string `yaml:"tabs"`
}

// Default returns the embedded content
func Default() *Content {
	var c Content
	if err := yaml.Unmarshal(defaultContent, &c); err != nil {
		panic("embedded dashboard.yaml: " + err.Error())
	}
	return &c
}

// Load returns the embedded content with any fields set in path applied on
// top. An empty path returns the defaults.
func Load(path string) (*Content, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigInvalid("reading DASHBOARD_CONTENT_FILE: " + err.Error())
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, errors.ConfigInvalid("parsing DASHBOARD_CONTENT_FILE: " + err.Error())
	}
	return c, nil
}

// Tab returns the i-th label of tabs, or fallback when the list is short
func Tab(tabs []string, i int, fallback string) string {
	if i < len(tabs) && tabs[i] != "" {
		return tabs[i]
	}
	return fallback
}

// SidebarHTML renders the sidebar markdown
func (c *Content) SidebarHTML() template.HTML {
	return Markdown(c.Sidebar.Markdown)
}

// Markdown renders trusted markdown from the content file to HTML
func Markdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.ToHTML([]byte(src), p, r))
}
