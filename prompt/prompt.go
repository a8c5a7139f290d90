package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// Template represents a prompt template with variables
type Template struct {
	Name     string
	Content  string
	template *template.Template
}

// NewTemplate creates a new prompt template
func NewTemplate(name, content string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return &Template{
		Name:     name,
		Content:  content,
		template: tmpl,
	}, nil
}

// MustTemplate is like NewTemplate but panics on a parse error.
// It is meant for package-level templates.
func MustTemplate(name, content string) *Template {
	tmpl, err := NewTemplate(name, content)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Render renders the template with given variables
func (t *Template) Render(vars map[string]any) (string, error) {
	var buf strings.Builder
	if err := t.template.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

// Builder accumulates a transcript. Parts are only ever appended.
type Builder struct {
	parts []string
	size  int
}

// NewBuilder creates a new prompt builder seeded with the given parts
func NewBuilder(parts ...string) *Builder {
	b := &Builder{parts: make([]string, 0, len(parts))}
	for _, p := range parts {
		b.Add(p)
	}
	return b
}

// Add adds a part to the prompt
func (b *Builder) Add(part string) *Builder {
	b.parts = append(b.parts, part)
	b.size += len(part)
	return b
}

// AddLine adds a part on its own line, inserting a line break first unless
// the prompt is empty or already ends with one.
func (b *Builder) AddLine(part string) *Builder {
	if b.size > 0 && !b.EndsWith("\n") {
		b.Add("\n")
	}
	return b.Add(part)
}

// EndsWith reports whether the built prompt ends with suffix
func (b *Builder) EndsWith(suffix string) bool {
	return strings.HasSuffix(b.Build(), suffix)
}

// Contains reports whether the built prompt contains s
func (b *Builder) Contains(s string) bool {
	return strings.Contains(b.Build(), s)
}

// Len returns the byte length of the built prompt
func (b *Builder) Len() int {
	return b.size
}

// Build returns the final prompt string
func (b *Builder) Build() string {
	return strings.Join(b.parts, "")
}
