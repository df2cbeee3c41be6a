// Package routegentest provides fixtures and helpers shared by routegen
// tests.
//
// Multi-file endpoint trees are written as txtar archives:
//
//	Generates the users scenario.
//	Options: prefix=useApi, async=false
//	-- api/users.get.ts --
//	export default defineApexHandler<{ id: string }>(...)
//	-- want/api.ts --
//	...
//
// Files under want/ hold expected output. Every other file is source.
package routegentest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// Case is one parsed archive.
type Case struct {
	// Name is the archive file name without .txtar.
	Name string

	// Description is the archive comment.
	Description string

	// Options holds key=value pairs from an "Options:" comment line.
	Options map[string]string

	// Files maps slash paths to source content.
	Files map[string][]byte

	// Want maps slash paths (without the want/ prefix) to expected output.
	Want map[string][]byte
}

// ParseCase converts an archive into a Case.
func ParseCase(name string, ar *txtar.Archive) (*Case, error) {
	c := &Case{
		Name:        name,
		Description: string(ar.Comment),
		Options:     make(map[string]string),
		Files:       make(map[string][]byte),
		Want:        make(map[string][]byte),
	}
	c.parseOptions()

	for _, f := range ar.Files {
		if rel, ok := strings.CutPrefix(f.Name, "want/"); ok {
			c.Want[rel] = f.Data
			continue
		}
		if _, dup := c.Files[f.Name]; dup {
			return nil, errors.Newf("duplicate file %q in archive", f.Name)
		}
		c.Files[f.Name] = f.Data
	}
	if len(c.Files) == 0 {
		return nil, errors.New("archive has no source files")
	}
	return c, nil
}

func (c *Case) parseOptions() {
	for _, line := range strings.Split(c.Description, "\n") {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Options:")
		if !ok {
			continue
		}
		for _, kv := range strings.Split(rest, ",") {
			k, v, _ := strings.Cut(strings.TrimSpace(kv), "=")
			if k != "" {
				c.Options[k] = v
			}
		}
		return
	}
}

// Option returns the named option or def when unset.
func (c *Case) Option(name, def string) string {
	if v, ok := c.Options[name]; ok {
		return v
	}
	return def
}

// WriteFiles materializes the source files into a fresh temp directory and
// returns it.
func (c *Case) WriteFiles(t testing.TB) string {
	t.Helper()
	files := make(map[string]string, len(c.Files))
	for name, data := range c.Files {
		files[name] = string(data)
	}
	return WriteTree(t, files)
}

// Check compares got against the want/ files. Every want file must be
// present; extra outputs are reported.
func (c *Case) Check(t testing.TB, got map[string][]byte) {
	t.Helper()
	for name, want := range c.Want {
		g, ok := got[name]
		if !ok {
			t.Errorf("missing output file %q", name)
			continue
		}
		if diff := cmp.Diff(string(want), string(g)); diff != "" {
			t.Errorf("file %q mismatch (-want +got):\n%s", name, diff)
		}
	}
	for name := range got {
		if _, ok := c.Want[name]; !ok {
			t.Errorf("unexpected output file %q", name)
		}
	}
}

// LoadCases parses every *.txtar file in dir, sorted by name.
func LoadCases(t testing.TB, dir string) []*Case {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(dir, "*.txtar"))
	if err != nil {
		t.Fatalf("glob %s: %v", dir, err)
	}
	if len(paths) == 0 {
		t.Fatalf("no txtar files in %s", dir)
	}
	sort.Strings(paths)

	cases := make([]*Case, 0, len(paths))
	for _, p := range paths {
		ar, err := txtar.ParseFile(p)
		if err != nil {
			t.Fatalf("parse %s: %v", p, err)
		}
		name := strings.TrimSuffix(filepath.Base(p), ".txtar")
		c, err := ParseCase(name, ar)
		if err != nil {
			t.Fatalf("case %s: %v", name, err)
		}
		cases = append(cases, c)
	}
	return cases
}

// WriteTree writes files (slash path to content) below a new temp
// directory and returns the directory.
func WriteTree(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}
