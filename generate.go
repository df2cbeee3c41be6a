package routegen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"

	"github.com/broady/routegen/extract"
	"github.com/broady/routegen/internal/discover"
	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/parser"
	"github.com/broady/routegen/route"
	"github.com/broady/routegen/sink"
	"github.com/broady/routegen/typescript"
)

// ErrStale is returned by Check when the output on disk differs from what
// would be generated.
var ErrStale = errors.New("generated output is out of date")

// Result describes one generation run.
type Result struct {
	// Candidates is the number of files the discoverer returned.
	Candidates int

	// Descriptors are the recognized endpoints in discovery order.
	Descriptors []ir.EndpointDescriptor

	// Accessors name the generated declarations, parallel to Descriptors.
	Accessors []typescript.Accessor

	// Diagnostics are per-file problems, in discovery order.
	Diagnostics []ir.Diagnostic

	// Output is the generated module. Nil when the run aborted.
	Output []byte

	// Written is true when Output was handed to the sink.
	Written bool

	fileErrs []error
}

// Endpoints returns the number of synthesized endpoints.
func (r *Result) Endpoints() int {
	return len(r.Descriptors)
}

// Err joins the per-file errors behind Diagnostics, each a *ParseError or
// *ReadError. Nil when every candidate was processed.
func (r *Result) Err() error {
	if len(r.fileErrs) == 0 {
		return nil
	}
	return errors.Join(r.fileErrs...)
}

type fileResult struct {
	desc *ir.EndpointDescriptor
	diag *ir.Diagnostic
	err  error
}

// Generate runs discovery, extraction and synthesis without writing.
// Per-file failures are reported in the result; a duplicate route aborts
// with *DuplicateRouteError and a result carrying the diagnostics.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	cfg := g.cfg
	if cfg.Source == "" {
		return nil, errors.New("source directory is required")
	}

	paths, err := discover.Find(ctx, cfg.Source, discover.Options{
		Include: cfg.Include,
		Exclude: cfg.Exclude,
	})
	if err != nil {
		return nil, errors.Wrap(err, "discover endpoint files")
	}

	limit := cfg.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	// Each worker writes only its own slot, so discovery order survives
	// out-of-order completion.
	results := make([]fileResult, len(paths))
	ex := extract.New(cfg.HandlerName)
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, rel := range paths {
		eg.Go(func() error {
			results[i] = processFile(ctx, cfg.Source, rel, ex)
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Candidates: len(paths)}
	for _, r := range results {
		if r.diag != nil {
			res.Diagnostics = append(res.Diagnostics, *r.diag)
			res.fileErrs = append(res.fileErrs, r.err)
		}
		if r.desc != nil {
			res.Descriptors = append(res.Descriptors, *r.desc)
		}
	}

	if dups := ir.FindDuplicates(res.Descriptors); len(dups) > 0 {
		for _, d := range dups {
			res.Diagnostics = append(res.Diagnostics, ir.Diagnostic{
				Path:    d.Path,
				Kind:    ir.DiagDuplicateRoute,
				Message: d.Error(),
			})
		}
		return res, &DuplicateRouteError{Conflicts: dups}
	}

	gen := typescript.New(cfg.TypeScript)
	out, err := gen.Generate(res.Descriptors)
	if err != nil {
		return res, errors.Wrap(err, "synthesize client module")
	}
	res.Output = out
	res.Accessors = gen.Accessors(res.Descriptors)
	return res, nil
}

// processFile reads, parses and extracts one candidate. It never fails the
// batch: problems become a diagnostic.
func processFile(ctx context.Context, root, rel string, ex *extract.Extractor) fileResult {
	method, rt, err := route.Resolve(rel)
	if err != nil {
		return fileFailure(rel, ir.DiagReadError, err, &ReadError{Path: rel, Err: err})
	}

	src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		return fileFailure(rel, ir.DiagReadError, err, &ReadError{Path: rel, Err: err})
	}

	tree, err := parser.Parse(ctx, rel, src)
	if err != nil {
		if ctx.Err() != nil {
			return fileResult{}
		}
		pe := &ParseError{Path: rel, Err: err}
		r := fileFailure(rel, ir.DiagParseError, err, pe)
		r.diag.Line, r.diag.Column = pe.Position()
		return r
	}
	defer tree.Close()

	frag, ok := ex.Extract(tree)
	if !ok {
		return fileResult{}
	}
	return fileResult{desc: &ir.EndpointDescriptor{
		Route:      rt,
		Method:     method,
		InputType:  frag.InputType,
		ReturnType: frag.ReturnType,
		SourcePath: rel,
	}}
}

func fileFailure(rel string, kind ir.DiagnosticKind, cause, typed error) fileResult {
	return fileResult{
		diag: &ir.Diagnostic{Path: rel, Kind: kind, Message: cause.Error()},
		err:  typed,
	}
}

// ToSink generates and writes the module to path within s. On any abort
// the sink is not touched.
func (g *Generator) ToSink(ctx context.Context, s sink.OutputSink, path string) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return res, err
	}
	if err := s.WriteFile(ctx, path, res.Output); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, &OutputWriteError{Path: path, Err: err}
	}
	res.Written = true
	return res, nil
}

// ToFile generates and atomically replaces the file at path.
// This is a terminal operation that writes to disk.
func (g *Generator) ToFile(path string) (*Result, error) {
	return g.ToFileContext(context.Background(), path)
}

// ToFileContext is ToFile with a context. A canceled run never replaces
// the file.
func (g *Generator) ToFileContext(ctx context.Context, path string) (*Result, error) {
	s, name := sink.ForFile(path)
	return g.ToSink(ctx, s, name)
}

// Check generates in memory and compares against the file at path. It
// returns ErrStale when the file is missing or differs.
func (g *Generator) Check(ctx context.Context, path string) (*Result, error) {
	res, err := g.Generate(ctx)
	if err != nil {
		return res, err
	}
	s, name := sink.ForFile(path)
	current, err := s.ReadFile(ctx, name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return res, errors.Wrapf(ErrStale, "%s does not exist", path)
		}
		return res, errors.Wrapf(err, "read %s", path)
	}
	if string(current) != string(res.Output) {
		return res, errors.Wrapf(ErrStale, "%s", path)
	}
	return res, nil
}
