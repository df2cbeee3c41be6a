// Package discover finds endpoint files below a scan root.
//
// A candidate is a regular file with a recognized source extension whose
// name carries a method marker (.get, .post, .put, .delete). Candidates are
// returned as slash-separated paths relative to the root, in the lexical
// order of a directory walk.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"

	"github.com/broady/routegen/parser"
	"github.com/broady/routegen/route"
)

// DefaultExclude skips dependency and hidden directories.
var DefaultExclude = []string{
	"**/node_modules/**",
	"**/.*/**",
}

// Options narrows the set of candidates.
type Options struct {
	// Include limits candidates to paths matching at least one pattern.
	// Empty means every path.
	Include []string

	// Exclude drops paths matching any pattern. Nil means DefaultExclude;
	// use an empty non-nil slice to exclude nothing.
	Exclude []string
}

func (o Options) exclude() []string {
	if o.Exclude == nil {
		return DefaultExclude
	}
	return o.Exclude
}

// Match reports whether rel, a slash-separated path relative to the root,
// is a candidate file name under opts. It does not touch the filesystem.
func Match(rel string, opts Options) bool {
	if _, ok := parser.LanguageForPath(rel); !ok {
		return false
	}
	if _, _, ok := route.MethodFromName(path.Base(rel)); !ok {
		return false
	}
	if matchAny(opts.exclude(), rel) {
		return false
	}
	return len(opts.Include) == 0 || matchAny(opts.Include, rel)
}

// Find walks root and returns every candidate in traversal order.
func Find(ctx context.Context, root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrap(err, "scan root")
	}
	if !info.IsDir() {
		return nil, errors.Newf("scan root %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsPermission(err) && p != root {
				return filepath.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if SkipDir(rel, opts) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			// Symlinks count when they resolve to a regular file.
			if d.Type()&fs.ModeSymlink == 0 {
				return nil
			}
			target, err := os.Stat(p)
			if err != nil || !target.Mode().IsRegular() {
				return nil
			}
		}
		if Match(rel, opts) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", root)
	}
	return files, nil
}

// SkipDir reports whether the directory rel is excluded under opts. The
// walk in Find and file watchers use it to prune whole subtrees.
func SkipDir(rel string, opts Options) bool {
	return excludesDir(opts.exclude(), rel)
}

// excludesDir reports whether a "<dir>/**" pattern covers the directory
// rel, so the walk can skip it without visiting its files.
func excludesDir(patterns []string, rel string) bool {
	for _, p := range patterns {
		prefix, ok := strings.CutSuffix(p, "/**")
		if !ok || prefix == "" {
			continue
		}
		if ok, err := doublestar.Match(prefix, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if p == "" {
			continue
		}
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
