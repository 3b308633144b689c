// Package html renders form schemas as static HTML documents. Field controls
// are generated directly; the page shell around them comes from a pongo2
// template so hosts can restyle the chrome without touching Go code.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/goliatone/go-theme"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

const pageTemplate = "templates/form.html"

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	theme      *theme.RendererConfig
}

// WithTemplatesFS supplies an alternate page template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads page templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTheme applies a resolved theme to the rendered page: CSS custom
// properties from the theme tokens plus a stylesheet link when the theme
// resolves one.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// Renderer turns a schema into a complete HTML page.
type Renderer struct {
	mu sync.Mutex

	templateSet *pongo2.TemplateSet
	page        *pongo2.Template
	theme       *theme.RendererConfig
}

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Renderer{
		templateSet: pongo2.NewSet("formbuilder", pongo2.NewFSLoader(cfg.templateFS)),
		theme:       cfg.theme,
	}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces the full page for schema. Fields render in display order
// regardless of how the slice is stored.
func (r *Renderer) Render(_ context.Context, schema model.FormSchema) ([]byte, error) {
	fields := append([]model.FormField(nil), schema.Fields...)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})

	rendered := make([]string, 0, len(fields))
	for _, field := range fields {
		markup, err := renderField(field)
		if err != nil {
			return nil, fmt.Errorf("html renderer: field %q: %w", field.ID, err)
		}
		rendered = append(rendered, markup)
	}

	page, err := r.pageTemplate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = page.ExecuteWriter(pongo2.Context{
		"form": map[string]any{
			"id":   schema.ID,
			"name": schema.Name,
		},
		"fields": rendered,
		"theme":  r.themeContext(),
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("html renderer: execute page template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) pageTemplate() (*pongo2.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.page != nil {
		return r.page, nil
	}
	page, err := r.templateSet.FromFile(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("html renderer: load page template: %w", err)
	}
	r.page = page
	return page, nil
}

func (r *Renderer) themeContext() map[string]any {
	ctx := map[string]any{
		"name":           "",
		"variant":        "",
		"stylesheet":     "",
		"css_vars_style": "",
	}
	if r.theme == nil {
		return ctx
	}
	ctx["name"] = r.theme.Theme
	ctx["variant"] = r.theme.Variant
	ctx["css_vars_style"] = cssVarsStyle(r.theme.CSSVars)
	if r.theme.AssetURL != nil {
		ctx["stylesheet"] = r.theme.AssetURL("stylesheet")
	}
	return ctx
}

// cssVarsStyle emits a :root block so theme tokens cascade to every control.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	builder.WriteString(":root{")
	for _, key := range keys {
		builder.WriteString(key)
		builder.WriteByte(':')
		builder.WriteString(vars[key])
		builder.WriteByte(';')
	}
	builder.WriteString("}")
	return builder.String()
}
