// Package project resolves the CLI flags and the optional routegen.jsonc
// file into a configured generator.
package project

import (
	"os"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/broady/routegen"
	"github.com/broady/routegen/internal/config"
	"github.com/broady/routegen/internal/discover"
	"github.com/broady/routegen/typescript"
)

// Flags are shared by every command that generates. Non-zero flags override
// values from the project file.
type Flags struct {
	Config      string   `help:"Project file (default: ./routegen.jsonc when present)." type:"path" short:"c"`
	Source      string   `help:"Directory containing endpoint files." type:"path" short:"s"`
	Output      string   `help:"Generated module path." type:"path" short:"o"`
	HandlerName string   `help:"Handler registration function to recognize." name:"handler"`
	Prefix      string   `help:"Accessor name prefix."`
	BaseURL     string   `help:"Path the API is served under." name:"base-url"`
	IndexName   string   `help:"Name of the exported aggregate object." name:"index"`
	FetchImport string   `help:"Module useFetch is imported from." name:"fetch-import"`
	Concurrency int      `help:"Files parsed in parallel (default: GOMAXPROCS)." short:"j"`
	Include     []string `help:"Glob of endpoint files to include (repeatable)."`
	Exclude     []string `help:"Glob of paths to exclude (repeatable)."`
	NoAsync     bool     `help:"Skip the $fetch accessor variants." name:"no-async"`
	NoDocs      bool     `help:"Skip JSDoc comments." name:"no-docs"`
}

// Project is a resolved configuration.
type Project struct {
	File *config.File

	// ConfigPath is the project file that was loaded, if any.
	ConfigPath string
}

// Load merges the project file with the flags and validates the result.
func (f *Flags) Load() (*Project, error) {
	p := &Project{File: &config.File{}}

	path := f.Config
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "get working directory")
		}
		path, _ = config.Find(wd)
	}
	if path != "" {
		file, err := config.Read(path)
		if err != nil {
			return nil, err
		}
		p.File, p.ConfigPath = file, path
	}

	f.apply(p.File)
	if err := p.File.Validate(); err != nil {
		return nil, errors.WithHint(err, "set --source and --output or add them to "+config.FileName)
	}
	return p, nil
}

func (f *Flags) apply(file *config.File) {
	setString(&file.Source, f.Source)
	setString(&file.Output, f.Output)
	setString(&file.HandlerName, f.HandlerName)
	setString(&file.Prefix, f.Prefix)
	setString(&file.BaseURL, f.BaseURL)
	setString(&file.IndexName, f.IndexName)
	setString(&file.FetchImport, f.FetchImport)
	if f.Concurrency != 0 {
		file.Concurrency = f.Concurrency
	}
	if len(f.Include) > 0 {
		file.Include = f.Include
	}
	if len(f.Exclude) > 0 {
		file.Exclude = f.Exclude
	}
	if f.NoAsync {
		file.NoAsync = true
	}
	if f.NoDocs {
		file.NoDocs = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Source returns the scan root.
func (p *Project) Source() string { return p.File.Source }

// Output returns the generated module path.
func (p *Project) Output() string { return p.File.Output }

// Discover returns the candidate selection rules.
func (p *Project) Discover() discover.Options {
	return discover.Options{Include: p.File.Include, Exclude: p.File.Exclude}
}

// Generator returns a generator configured from the project.
func (p *Project) Generator() *routegen.Generator {
	f := p.File
	return routegen.FromConfig(routegen.Config{
		Source:      f.Source,
		HandlerName: f.HandlerName,
		Include:     f.Include,
		Exclude:     f.Exclude,
		Concurrency: f.Concurrency,
		TypeScript: typescript.Config{
			Prefix:      f.Prefix,
			BaseURL:     f.BaseURL,
			IndexName:   f.IndexName,
			FetchImport: f.FetchImport,
			NoAsync:     f.NoAsync,
			NoDocs:      f.NoDocs,
		},
	})
}

// Report logs per-file diagnostics and returns an error when there were
// any, so the command exits non-zero after the output was written.
func Report(log *zap.Logger, res *routegen.Result) error {
	if res == nil {
		return nil
	}
	for _, d := range res.Diagnostics {
		log.Warn("skipped endpoint file",
			zap.Stringer("source", d.Source()),
			zap.String("kind", string(d.Kind)),
			zap.String("message", d.Message))
	}
	if n := len(res.Diagnostics); n > 0 {
		return errors.Newf("%d endpoint file(s) could not be processed", n)
	}
	return nil
}
