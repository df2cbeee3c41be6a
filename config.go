package routegen

import (
	"github.com/broady/routegen/typescript"
)

// Config holds the configuration for one generator.
type Config struct {
	// Source is the scan root containing endpoint files.
	// e.g. "./server/api"
	Source string

	// HandlerName is the registration function recognized in endpoint
	// files. Default: "defineApexHandler"
	HandlerName string

	// Include and Exclude are doublestar globs over slash paths relative to
	// Source. A nil Exclude skips node_modules and hidden directories.
	Include []string
	Exclude []string

	// Concurrency bounds the number of files parsed at once.
	// Default: GOMAXPROCS
	Concurrency int

	// TypeScript controls the emitted module.
	TypeScript typescript.Config
}

// Generator provides a fluent API for configuring code generation.
// Create with FromDir() and configure with method chaining.
//
// Example:
//
//	routegen.FromDir("./server/api").
//	    Prefix("useApi").
//	    ToFile("./.nuxt/routegen/api.ts")
type Generator struct {
	cfg Config
}

// FromDir creates a Generator scanning dir.
func FromDir(dir string) *Generator {
	return &Generator{cfg: Config{Source: dir}}
}

// FromConfig creates a Generator from a complete configuration.
func FromConfig(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Config returns a copy of the current configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// HandlerName sets the recognized registration function.
func (g *Generator) HandlerName(name string) *Generator {
	g.cfg.HandlerName = name
	return g
}

// Include adds include globs.
func (g *Generator) Include(patterns ...string) *Generator {
	g.cfg.Include = append(g.cfg.Include, patterns...)
	return g
}

// Exclude adds exclude globs. The first call replaces the default
// exclusions.
func (g *Generator) Exclude(patterns ...string) *Generator {
	if g.cfg.Exclude == nil {
		g.cfg.Exclude = []string{}
	}
	g.cfg.Exclude = append(g.cfg.Exclude, patterns...)
	return g
}

// Concurrency bounds parallel parsing.
func (g *Generator) Concurrency(n int) *Generator {
	g.cfg.Concurrency = n
	return g
}

// Prefix sets the accessor name prefix.
func (g *Generator) Prefix(prefix string) *Generator {
	g.cfg.TypeScript.Prefix = prefix
	return g
}

// BaseURL sets the path routes are served under.
func (g *Generator) BaseURL(url string) *Generator {
	g.cfg.TypeScript.BaseURL = url
	return g
}

// IndexName sets the name of the exported aggregate object.
func (g *Generator) IndexName(name string) *Generator {
	g.cfg.TypeScript.IndexName = name
	return g
}

// FetchImport sets the module useFetch is imported from.
func (g *Generator) FetchImport(module string) *Generator {
	g.cfg.TypeScript.FetchImport = module
	return g
}

// WithoutAsync disables the $fetch based accessor variants.
func (g *Generator) WithoutAsync() *Generator {
	g.cfg.TypeScript.NoAsync = true
	return g
}

// WithoutDocs disables JSDoc comments on accessors.
func (g *Generator) WithoutDocs() *Generator {
	g.cfg.TypeScript.NoDocs = true
	return g
}
