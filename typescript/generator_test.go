package typescript

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"

	"github.com/broady/routegen/ir"
)

func usersDescriptors() []ir.EndpointDescriptor {
	return []ir.EndpointDescriptor{
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
}

func TestGenerate_Users(t *testing.T) {
	want, err := os.ReadFile("testdata/users.golden.ts")
	if err != nil {
		t.Fatal(err)
	}

	got, err := New(Config{NoAsync: true, NoDocs: true}).Generate(usersDescriptors())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if diff := cmp.Diff(string(want), string(got)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	g := New(Config{})
	first, err := g.Generate(usersDescriptors())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := New(Config{}).Generate(usersDescriptors())
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d produced different output", i)
		}
	}
}

func TestGenerate_Duplicate(t *testing.T) {
	descs := append(usersDescriptors(), ir.EndpointDescriptor{
		Route:      ir.Route{ir.Static("users")},
		Method:     ir.MethodGet,
		SourcePath: "users/index.get.ts",
	})

	out, err := New(Config{}).Generate(descs)
	if out != nil {
		t.Errorf("Generate() returned output on duplicate")
	}
	var dup *ir.DuplicateRouteError
	if !errors.As(err, &dup) {
		t.Fatalf("Generate() error = %v, want *ir.DuplicateRouteError", err)
	}
	if dup.Path != "users/index.get.ts" || dup.Existing != "users.get.ts" {
		t.Errorf("duplicate = %+v", dup)
	}
}

func TestGenerate_EmptyTypesBecomeUnknown(t *testing.T) {
	descs := []ir.EndpointDescriptor{{Route: ir.Route{ir.Static("ping")}, Method: ir.MethodGet}}
	out, err := New(Config{}).Generate(descs)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "<T extends unknown, R extends unknown>") {
		t.Errorf("missing unknown placeholders:\n%s", out)
	}
}

func TestGenerate_HeaderNotesSyntacticResponses(t *testing.T) {
	out, err := New(Config{}).Generate(usersDescriptors())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.SplitN(string(out), "\n", 4)
	if len(lines) < 4 {
		t.Fatalf("short output:\n%s", out)
	}
	want := "// Response types are copied from handler return expressions and are not type-checked."
	if lines[2] != want {
		t.Errorf("header line 3 = %q, want %q", lines[2], want)
	}
}

func TestGenerate_Params(t *testing.T) {
	descs := []ir.EndpointDescriptor{
		{
			Route:     ir.Route{ir.Static("users"), ir.Param("id")},
			Method:    ir.MethodPut,
			InputType: "{ name: string }",
		},
		{
			Route:  ir.Route{ir.Static("files"), ir.CatchAll("path")},
			Method: ir.MethodGet,
		},
		{
			Route:  ir.Route{ir.Param("user-id"), ir.Static("orders")},
			Method: ir.MethodDelete,
		},
	}
	out, err := New(Config{}).Generate(descs)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	for _, want := range []string{
		"const omit = <T extends object, K extends string>",
		"export const useTFetchUsersUpdateById = <T extends { 'id': string } & ({ name: string }), R extends unknown>",
		"useFetch<R>(`/api/users/${encodeURIComponent(data.id)}`, { method: 'PUT', body: omit(data, 'id'), ...opt })",
		"export const useTFetchFilesGetByPath = <T extends { 'path': string }, R extends unknown>",
		"`/api/files/${encodeURI(data.path)}`",
		"export const useTFetchUserIdOrdersRemove = ",
		"`/api/${encodeURIComponent(data['user-id'])}/orders`, { method: 'DELETE', query: omit(data, 'user-id'), ...opt })",
		"export const useTFetchUsersUpdateByIdAsync = ",
		"  $fetch<R>(`/api/users/${encodeURIComponent(data.id)}`",
		"'/users/:id': {\n    PUT: useTFetchUsersUpdateById,\n  },",
		"export const apiAsync = {",
		"    PUT: useTFetchUsersUpdateByIdAsync,",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
}

func TestGenerate_NoOmitWithoutParams(t *testing.T) {
	out, err := New(Config{}).Generate(usersDescriptors())
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "const omit") {
		t.Error("omit helper emitted without parameterized routes")
	}
}

func TestGenerate_Config(t *testing.T) {
	g := New(Config{
		Prefix:      "use",
		BaseURL:     "/v1/",
		IndexName:   "client",
		FetchImport: "#app",
		NoAsync:     true,
	})
	out, err := g.Generate(usersDescriptors())
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	for _, want := range []string{
		"from '#app'",
		"export const useUsersGet = ",
		"`/v1/users`",
		"export const client = {",
		"@see users.post.ts",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "Async") {
		t.Error("async variants emitted with NoAsync")
	}
}

func TestGenerate_RootRoute(t *testing.T) {
	descs := []ir.EndpointDescriptor{
		{Route: nil, Method: ir.MethodGet},
		{Route: ir.Route{ir.Param("pid")}, Method: ir.MethodPost},
	}
	g := New(Config{BaseURL: "/"})
	out, err := g.Generate(descs)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	for _, want := range []string{
		"export const useTFetchGet = ",
		"useFetch<R>(`/`, { method: 'GET', query: data, ...opt })",
		"export const useTFetchCreateByPid = ",
		"`/${encodeURIComponent(data.pid)}`",
		"  '/': {\n    GET: useTFetchGet,\n  },\n  '/:pid': {\n    POST: useTFetchCreateByPid,\n  },",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q\n%s", want, text)
		}
	}
}

func TestAccessors_CollisionSuffix(t *testing.T) {
	descs := []ir.EndpointDescriptor{
		{Route: ir.Route{ir.Static("users.v2")}, Method: ir.MethodGet},
		{Route: ir.Route{ir.Static("users-v2")}, Method: ir.MethodGet},
		{Route: ir.Route{ir.Static("users_v2")}, Method: ir.MethodGet},
	}
	got := New(Config{}).Accessors(descs)
	want := []string{"useTFetchUsersV2Get", "useTFetchUsersV2Get2", "useTFetchUsersV2Get3"}
	for i, a := range got {
		if a.Name != want[i] {
			t.Errorf("Accessors()[%d].Name = %q, want %q", i, a.Name, want[i])
		}
		if a.AsyncName != want[i]+"Async" {
			t.Errorf("Accessors()[%d].AsyncName = %q", i, a.AsyncName)
		}
	}
}

func TestAccessorStem(t *testing.T) {
	tests := []struct {
		route  ir.Route
		method ir.Method
		want   string
	}{
		{ir.Route{ir.Static("users")}, ir.MethodGet, "UsersGet"},
		{ir.Route{ir.Static("users"), ir.Param("id")}, ir.MethodGet, "UsersGetById"},
		{ir.Route{ir.Static("comments"), ir.Param("id"), ir.Static("products"), ir.Param("uid")}, ir.MethodGet, "CommentsIdProductsGetByUid"},
		{ir.Route{ir.Param("pid"), ir.Static("categories"), ir.Param("uid"), ir.Static("orders")}, ir.MethodPost, "PidCategoriesUidOrdersCreate"},
		{ir.Route{ir.Static("settings"), ir.Param("order-id")}, ir.MethodGet, "SettingsGetByOrderId"},
		{nil, ir.MethodDelete, "Remove"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := accessorStem(ir.EndpointDescriptor{Route: tt.route, Method: tt.method})
			if got != tt.want {
				t.Errorf("accessorStem(%s %s) = %q, want %q", tt.method, tt.route, got, tt.want)
			}
		})
	}
}
