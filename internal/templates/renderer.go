// Package templates renders the small strict text templates used for agent
// personas and account email.
package templates

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Set is a group of named templates parsed once with strict missing-key
// semantics.
type Set struct {
	tmpl *template.Template
}

// MustParse builds a Set from name/text pairs and panics on a parse error.
// It is meant for package-level template tables.
func MustParse(sources map[string]string) *Set {
	set, err := Parse(sources)
	if err != nil {
		panic(err)
	}
	return set
}

// Parse builds a Set from name/text pairs.
func Parse(sources map[string]string) (*Set, error) {
	root := template.New("root").Option("missingkey=error")
	for name, text := range sources {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("templates: %s: template text required", name)
		}
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, fmt.Errorf("templates: parse %s: %w", name, err)
		}
	}
	return &Set{tmpl: root}, nil
}

// Render executes the named template.
func (s *Set) Render(name string, data any) (string, error) {
	t := s.tmpl.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("templates: unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("templates: execute %s: %w", name, err)
	}
	return buf.String(), nil
}
