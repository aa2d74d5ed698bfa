// Package content loads the static portfolio sections from YAML.
package content

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/russross/blackfriday/v2"
	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var defaultContent []byte

type Link struct {
	Label string `yaml:"label"`
	URL   string `yaml:"url"`
}

type Job struct {
	Title   string `yaml:"title"`
	Company string `yaml:"company"`
	Year    string `yaml:"year"`
	Summary string `yaml:"summary"`
}

type Project struct {
	Name    string `yaml:"name"`
	Summary string `yaml:"summary"`
	Image   string `yaml:"image"`
	URL     string `yaml:"url"`
}

type SkillGroup struct {
	Group string   `yaml:"group"`
	Items []string `yaml:"items"`
}

// Site is everything rendered on the page apart from the interactive parts.
type Site struct {
	Owner        string       `yaml:"owner"`
	Roles        []string     `yaml:"roles"`
	Tagline      string       `yaml:"tagline"`
	Quote        string       `yaml:"quote"`
	ProfileImage string       `yaml:"profile_image"`
	Resume       string       `yaml:"resume"`
	ContactEmail string       `yaml:"contact_email"`
	Links        []Link       `yaml:"links"`
	About        string       `yaml:"about"`
	Experience   []Job        `yaml:"experience"`
	Projects     []Project    `yaml:"projects"`
	Skills       []SkillGroup `yaml:"skills"`

	aboutHTML template.HTML
}

// Section is an in-page navigation anchor.
type Section struct {
	ID    string
	Label string
}

var sections = []Section{
	{"about", "About Me"},
	{"experience", "Experience"},
	{"projects", "Projects"},
	{"skills", "Skills"},
	{"contact", "Contact"},
}

func Sections() []Section { return sections }

// Default returns the built-in site content.
func Default() (*Site, error) {
	return Parse(defaultContent)
}

// Load reads content from path, or the built-in content when path is empty.
func Load(path string) (*Site, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Site, error) {
	var s Site
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	html, err := renderMarkdown(s.About)
	if err != nil {
		return nil, err
	}
	s.aboutHTML = html
	return &s, nil
}

func (s *Site) validate() error {
	if len(s.Roles) == 0 {
		return errors.New("content: at least one role is required")
	}
	for i, r := range s.Roles {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("content: role %d is empty", i)
		}
	}
	if s.ContactEmail == "" {
		return errors.New("content: contact_email is required")
	}
	return nil
}

// AboutHTML is the rendered about section.
func (s *Site) AboutHTML() template.HTML { return s.aboutHTML }

// renderMarkdown turns markdown into HTML and makes outbound links open in a
// new tab.
func renderMarkdown(md string) (template.HTML, error) {
	raw := blackfriday.Run([]byte(md))
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			a.SetAttr("target", "_blank")
			a.SetAttr("rel", "noopener noreferrer")
		}
	})
	doc.Find("p").AddClass("mb-4")

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return template.HTML(strings.TrimSpace(out)), nil
}
