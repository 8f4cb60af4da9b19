package core

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/flosch/pongo2/v6"

	"github.com/adam-gaia/checklints/internal/types"
)

// templateLoader resolves template names for pongo2. Registered names win,
// then paths relative to the including template.
type templateLoader struct {
	fs       FileSystem
	registry map[string]string // name -> absolute path
	loaded   []string          // files read since the last reset
}

// Abs implements pongo2.TemplateLoader
func (l *templateLoader) Abs(base, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if path, ok := l.registry[name]; ok {
		return path
	}
	if base != "" {
		return filepath.Join(filepath.Dir(base), name)
	}
	return name
}

// Get implements pongo2.TemplateLoader
func (l *templateLoader) Get(path string) (io.Reader, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(l.loaded, path) {
		l.loaded = append(l.loaded, path)
	}
	return bytes.NewReader(data), nil
}

// TemplateRenderer renders Jinja-style templates with the current facts.
type TemplateRenderer struct {
	loader *templateLoader
	set    *pongo2.TemplateSet
	logger *log.Logger
}

// NewTemplateRenderer creates a renderer with an empty name registry.
func NewTemplateRenderer(fs FileSystem, logger *log.Logger) *TemplateRenderer {
	if logger == nil {
		logger = log.Default()
	}
	// Templates render plain files, not HTML.
	pongo2.SetAutoescape(false)

	loader := &templateLoader{fs: fs, registry: make(map[string]string)}
	return &TemplateRenderer{
		loader: loader,
		set:    pongo2.NewSet("checklints", loader),
		logger: logger,
	}
}

// Register makes a template file available by name to includes and extends.
func (r *TemplateRenderer) Register(name, path string) {
	r.loader.registry[name] = path
	r.logger.Debug("registered template", "name", name, "path", path)
}

// AddDir registers every file below dir under its slash-separated relative path.
func (r *TemplateRenderer) AddDir(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		r.Register(filepath.ToSlash(rel), path)
		return nil
	})
}

// Len returns the number of registered templates.
func (r *TemplateRenderer) Len() int {
	return len(r.loader.registry)
}

// Render renders the template at path (or registered under that name) with facts.
func (r *TemplateRenderer) Render(path string, facts *types.Facts) (string, error) {
	out, _, err := r.RenderTracked(path, facts)
	return out, err
}

// RenderTracked is Render that also returns every template file read while
// rendering: the template itself plus anything it includes, extends or imports.
func (r *TemplateRenderer) RenderTracked(path string, facts *types.Facts) (string, []string, error) {
	r.loader.loaded = nil
	defer func() { r.loader.loaded = nil }()

	tpl, err := r.set.FromFile(r.loader.Abs("", path))
	if err != nil {
		return "", nil, fmt.Errorf("failed to load template %s: %w", path, err)
	}

	ctx := pongo2.Context{}
	if facts != nil {
		for k, v := range facts.Map() {
			ctx[k] = v
		}
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to render template %s: %w", path, err)
	}
	return out, slices.Clone(r.loader.loaded), nil
}
