// Package pipeline runs a parsed document through package loading,
// registry layering and generation, consulting the output cache when one
// is configured.
package pipeline

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	multicode "github.com/redvampir/multicode-sub002"
	"github.com/redvampir/multicode-sub002/codegen"
	"github.com/redvampir/multicode-sub002/internal/cache"
	"github.com/redvampir/multicode-sub002/nodepkg"
	"github.com/redvampir/multicode-sub002/parse"
)

// Request describes one generation run
type Request struct {
	Document *parse.Document
	// BaseDir resolves relative package paths of the document
	BaseDir string
	// Packages are loaded after the ones the document names
	Packages []string
	Options  multicode.Options
}

// Result is the outcome of a run
type Result struct {
	*cache.Entry
	Cached   bool
	Package  *nodepkg.Package
	Duration time.Duration
}

// HasErrors reports whether generation produced error diagnostics
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == multicode.SeverityError {
			return true
		}
	}
	return false
}

// Pipeline generates documents. The cache is optional.
type Pipeline struct {
	loader *nodepkg.Loader
	cache  *cache.Cache
	logger zerolog.Logger
}

// New creates a pipeline; c may be nil
func New(c *cache.Cache, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		loader: nodepkg.NewLoader(logger),
		cache:  c,
		logger: logger,
	}
}

// PackageDirs returns the package directories a request loads, in order
func (r *Request) PackageDirs() []string {
	var dirs []string
	if r.Document != nil {
		for _, p := range r.Document.Packages {
			if !filepath.IsAbs(p) && r.BaseDir != "" {
				p = filepath.Join(r.BaseDir, p)
			}
			dirs = append(dirs, p)
		}
	}
	return append(dirs, r.Packages...)
}

// LoadPackages loads node definitions from dirs
func (p *Pipeline) LoadPackages(dirs ...string) (*nodepkg.Package, error) {
	pkg, err := p.loader.Load(dirs...)
	if err != nil {
		return nil, fmt.Errorf("load node packages: %w", err)
	}
	return pkg, nil
}

// Run generates the document of req
func (p *Pipeline) Run(req Request) (*Result, error) {
	if req.Document == nil || req.Document.Graph == nil {
		return nil, fmt.Errorf("document has no graph")
	}
	start := time.Now()

	pkg, err := p.LoadPackages(req.PackageDirs()...)
	if err != nil {
		return nil, err
	}

	driver := codegen.NewDriver(codegen.NewLayeredRegistry(pkg, p.logger), req.Options, p.logger).
		WithDefinitions(pkg)
	generate := func() (*codegen.Output, error) {
		return driver.Generate(req.Document.Graph)
	}

	result := &Result{Package: pkg}
	if p.cache == nil {
		out, err := generate()
		if err != nil {
			return nil, err
		}
		result.Entry = cache.NewEntry(out)
	} else {
		key, err := cache.Fingerprint(req.Document.Graph, req.Options, pkg)
		if err != nil {
			return nil, err
		}
		result.Entry, result.Cached, err = p.cache.GetOrGenerate(key, generate)
		if err != nil {
			return nil, err
		}
	}
	result.Duration = time.Since(start)

	p.logger.Debug().
		Str("graph", req.Document.Graph.Name).
		Int("definitions", len(pkg.Definitions())).
		Bool("cached", result.Cached).
		Dur("took", result.Duration).
		Msg("pipeline finished")
	return result, nil
}
