package routegen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/broady/routegen/internal/routegentest"
	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/sink"
)

func configure(c *routegentest.Case, dir string) *Generator {
	g := FromDir(dir).
		HandlerName(c.Option("handler", "")).
		Prefix(c.Option("prefix", "")).
		BaseURL(c.Option("baseURL", "")).
		IndexName(c.Option("index", "")).
		FetchImport(c.Option("import", ""))
	if c.Option("docs", "true") == "false" {
		g.WithoutDocs()
	}
	if c.Option("async", "true") == "false" {
		g.WithoutAsync()
	}
	return g
}

func TestGenerate_Golden(t *testing.T) {
	for _, c := range routegentest.LoadCases(t, "testdata") {
		t.Run(c.Name, func(t *testing.T) {
			dir := c.WriteFiles(t)
			mem := sink.NewMemorySink()
			res, err := configure(c, dir).ToSink(context.Background(), mem, "api.ts")
			if err != nil {
				t.Fatalf("ToSink() error = %v", err)
			}
			if len(res.Diagnostics) != 0 {
				t.Errorf("Diagnostics = %v", res.Diagnostics)
			}
			if !res.Written {
				t.Error("Written = false")
			}
			c.Check(t, mem.Files())
		})
	}
}

var usersTree = map[string]string{
	"users.get.ts": `export default defineApexHandler<{ id: string }>(async (data) => {
  const user = await findUser(data.id)
  return { name: user.name }
})`,
	"users.post.ts": `export default defineApexHandler<{ name: string }>(data => ({ id: newId }))`,
}

func TestGenerate_Scenario(t *testing.T) {
	dir := routegentest.WriteTree(t, usersTree)
	res, err := FromDir(dir).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := []ir.EndpointDescriptor{
		{
			Route:      ir.Route{ir.Static("users")},
			Method:     ir.MethodGet,
			InputType:  "{ id: string }",
			ReturnType: "{ name: user.name }",
			SourcePath: "users.get.ts",
		},
		{
			Route:      ir.Route{ir.Static("users")},
			Method:     ir.MethodPost,
			InputType:  "{ name: string }",
			ReturnType: "{ id: newId }",
			SourcePath: "users.post.ts",
		},
	}
	if diff := cmp.Diff(want, res.Descriptors); diff != "" {
		t.Errorf("Descriptors mismatch (-want +got):\n%s", diff)
	}
	if res.Endpoints() != 2 || res.Candidates != 2 {
		t.Errorf("Endpoints() = %d, Candidates = %d", res.Endpoints(), res.Candidates)
	}
	if len(res.Accessors) != 2 || res.Accessors[1].Name != "useTFetchUsersCreate" {
		t.Errorf("Accessors = %+v", res.Accessors)
	}
	if strings.Count(string(res.Output), "  '/") != 2 {
		t.Errorf("expected one route group per aggregate:\n%s", res.Output)
	}
}

func TestGenerate_MultilineInputType(t *testing.T) {
	dir := routegentest.WriteTree(t, map[string]string{
		"users.post.ts": "export default defineApexHandler<{\n  id: string\n  name: string\n}>(async () => {\n  return { ok: true }\n})\n",
	})
	res, err := FromDir(dir).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Descriptors) != 1 {
		t.Fatalf("Descriptors = %+v", res.Descriptors)
	}
	if got, want := res.Descriptors[0].InputType, "{\n  id: string\n  name: string\n}"; got != want {
		t.Errorf("InputType = %q, want %q", got, want)
	}
	want := "<T extends {\n  id: string\n  name: string\n}, R extends { ok: true }>"
	if !strings.Contains(string(res.Output), want) {
		t.Errorf("output missing %q:\n%s", want, res.Output)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	files := map[string]string{}
	for i, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files[name+"/item.get.ts"] = "export default defineApexHandler<{ n: " + string(rune('0'+i)) + " }>(() => ({ ok: true }))"
		files[name+"/item.post.ts"] = "export default defineApexHandler(() => 1)"
	}
	dir := routegentest.WriteTree(t, files)

	first, err := FromDir(dir).Concurrency(1).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 2, 16} {
		again, err := FromDir(dir).Concurrency(n).Generate(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first.Output, again.Output) {
			t.Errorf("Concurrency(%d) output differs from sequential run", n)
		}
	}
}

func TestToFile_Idempotent(t *testing.T) {
	dir := routegentest.WriteTree(t, usersTree)
	out := filepath.Join(t.TempDir(), "gen", "api.ts")

	if _, err := FromDir(dir).ToFile(out); err != nil {
		t.Fatal(err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FromDir(dir).ToFile(out); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("second run changed the output file")
	}
}

func TestToFile_DottedFileName(t *testing.T) {
	dir := routegentest.WriteTree(t, usersTree)
	out := filepath.Join(t.TempDir(), "api..gen.ts")

	res, err := FromDir(dir).ToFile(out)
	if err != nil {
		t.Fatalf("ToFile(%q) error = %v", out, err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, res.Output) {
		t.Error("file content differs from Result.Output")
	}
}

func TestGenerate_NonMatchSafety(t *testing.T) {
	dir := routegentest.WriteTree(t, map[string]string{
		"a.get.ts":    `export default defineEventHandler(() => 1)`,
		"b.get.ts":    `export const handler = defineApexHandler(() => 1)`,
		"c.delete.ts": `export default function () { return 1 }`,
		"d.put.ts":    `const x = 1`,
	})
	res, err := FromDir(dir).Generate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Candidates != 4 || res.Endpoints() != 0 || len(res.Diagnostics) != 0 || res.Err() != nil {
		t.Errorf("Candidates = %d, Endpoints() = %d, Diagnostics = %v, Err() = %v",
			res.Candidates, res.Endpoints(), res.Diagnostics, res.Err())
	}
}

func TestToFile_Duplicate(t *testing.T) {
	dir := routegentest.WriteTree(t, map[string]string{
		"users.get.ts":          `export default defineApexHandler(() => 1)`,
		"users/index.get.ts":    `export default defineApexHandler(() => 2)`,
		"items/[id].get.ts":     `export default defineApexHandler(() => 3)`,
		"items/[itemId].get.ts": `export default defineApexHandler(() => 4)`,
	})
	out := filepath.Join(t.TempDir(), "api.ts")
	if err := os.WriteFile(out, []byte("previous"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := FromDir(dir).ToFile(out)
	var dup *DuplicateRouteError
	if !errors.As(err, &dup) {
		t.Fatalf("ToFile() error = %v, want *DuplicateRouteError", err)
	}
	if len(dup.Conflicts) != 2 {
		t.Errorf("Conflicts = %v", dup.Conflicts)
	}
	if res == nil || res.Written || res.Output != nil {
		t.Fatalf("result = %+v, want unwritten result", res)
	}

	var kinds []ir.DiagnosticKind
	for _, d := range res.Diagnostics {
		kinds = append(kinds, d.Kind)
	}
	if diff := cmp.Diff([]ir.DiagnosticKind{ir.DiagDuplicateRoute, ir.DiagDuplicateRoute}, kinds); diff != "" {
		t.Errorf("diagnostic kinds mismatch (-want +got):\n%s", diff)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "previous" {
		t.Errorf("output file changed to %q", got)
	}
}

func TestGenerate_PartialFailure(t *testing.T) {
	dir := routegentest.WriteTree(t, map[string]string{
		"a.get.ts":    `export default defineApexHandler(() => 1)`,
		"b.get.ts":    `export default defineApexHandler(() => { return {`,
		"c.post.ts":   `export default defineApexHandler(() => 3)`,
		"d.delete.js": `export default defineApexHandler((data) => data)`,
	})
	mem := sink.NewMemorySink()
	res, err := FromDir(dir).ToSink(context.Background(), mem, "api.ts")
	if err != nil {
		t.Fatalf("ToSink() error = %v", err)
	}
	if res.Endpoints() != 3 {
		t.Errorf("Endpoints() = %d, want 3", res.Endpoints())
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("Diagnostics = %v, want 1", res.Diagnostics)
	}
	if d := res.Diagnostics[0]; d.Path != "b.get.ts" || d.Kind != ir.DiagParseError {
		t.Errorf("Diagnostics[0] = %+v", d)
	}
	if d := res.Diagnostics[0]; d.Line != 1 || d.Column == 0 {
		t.Errorf("Diagnostics[0] position = %d:%d, want line 1", d.Line, d.Column)
	}

	var pe *ParseError
	if !errors.As(res.Err(), &pe) {
		t.Fatalf("Err() = %v, want *ParseError", res.Err())
	}
	if line, _ := pe.Position(); line != 1 {
		t.Errorf("ParseError line = %d, want 1", line)
	}
	if mem.Get("api.ts") == nil {
		t.Error("output not written despite recoverable failure")
	}
}

type failingSink struct{}

func (failingSink) WriteFile(context.Context, string, []byte) error {
	return os.ErrPermission
}

func TestToSink_OutputWriteError(t *testing.T) {
	dir := routegentest.WriteTree(t, usersTree)
	res, err := FromDir(dir).ToSink(context.Background(), failingSink{}, "api.ts")
	var werr *OutputWriteError
	if !errors.As(err, &werr) {
		t.Fatalf("ToSink() error = %v, want *OutputWriteError", err)
	}
	if !errors.Is(err, os.ErrPermission) || werr.Path != "api.ts" {
		t.Errorf("OutputWriteError = %+v", werr)
	}
	if res.Written {
		t.Error("Written = true after failure")
	}
}

func TestCheck(t *testing.T) {
	dir := routegentest.WriteTree(t, usersTree)
	out := filepath.Join(t.TempDir(), "api.ts")
	ctx := context.Background()

	if _, err := FromDir(dir).Check(ctx, out); !errors.Is(err, ErrStale) {
		t.Errorf("Check() on missing file = %v, want ErrStale", err)
	}

	if _, err := FromDir(dir).ToFile(out); err != nil {
		t.Fatal(err)
	}
	if _, err := FromDir(dir).Check(ctx, out); err != nil {
		t.Errorf("Check() on fresh file = %v", err)
	}

	if _, err := FromDir(dir).Prefix("useOther").Check(ctx, out); !errors.Is(err, ErrStale) {
		t.Errorf("Check() with changed config = %v, want ErrStale", err)
	}
}

func TestGenerate_Errors(t *testing.T) {
	if _, err := FromDir("").Generate(context.Background()); err == nil {
		t.Error("Generate() without source should fail")
	}
	if _, err := FromDir(filepath.Join(t.TempDir(), "missing")).Generate(context.Background()); err == nil {
		t.Error("Generate() with missing source should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := routegentest.WriteTree(t, usersTree)
	if _, err := FromDir(dir).Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() with canceled context = %v", err)
	}
}

func TestGenerator_Fluent(t *testing.T) {
	g := FromDir("api").
		HandlerName("h").
		Include("**/*.ts").
		Exclude("**/_*").
		Exclude("x/**").
		Concurrency(3).
		Prefix("p").
		BaseURL("/b").
		IndexName("i").
		FetchImport("m").
		WithoutAsync().
		WithoutDocs()

	cfg := g.Config()
	if cfg.Source != "api" || cfg.HandlerName != "h" || cfg.Concurrency != 3 {
		t.Errorf("Config() = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"**/_*", "x/**"}, cfg.Exclude); diff != "" {
		t.Errorf("Exclude mismatch:\n%s", diff)
	}
	ts := cfg.TypeScript
	if ts.Prefix != "p" || ts.BaseURL != "/b" || ts.IndexName != "i" || ts.FetchImport != "m" || !ts.NoAsync || !ts.NoDocs {
		t.Errorf("TypeScript = %+v", ts)
	}
}
