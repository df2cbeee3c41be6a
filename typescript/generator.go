// Package typescript synthesizes the aggregated TypeScript client module
// from a set of endpoint descriptors.
//
// Every descriptor becomes two accessors, a useFetch composable and a
// $fetch based "Async" variant, and one aggregate object groups the
// accessors by route and method:
//
//	export const api = {
//	  '/users': {
//	    GET: useTFetchUsersGet,
//	    POST: useTFetchUsersCreate,
//	  },
//	} as const
package typescript

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/broady/routegen/ir"
)

const header = `/* eslint-disable */
// Code generated by routegen. DO NOT EDIT.
// Response types are copied from handler return expressions and are not type-checked.
`

const omitHelper = `
const omit = <T extends object, K extends string>(data: T, ...keys: K[]): Omit<T, K> => {
  const out = { ...data } as Record<string, unknown>
  for (const key of keys) delete out[key]
  return out as unknown as Omit<T, K>
}
`

// Generator produces client module source text. It holds only its
// configuration and is safe for concurrent use.
type Generator struct {
	cfg Config
}

// New creates a Generator. Zero-valued fields of cfg take their defaults.
func New(cfg Config) *Generator {
	return &Generator{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration, defaults applied.
func (g *Generator) Config() Config {
	return g.cfg
}

// Accessor names the generated declarations for one descriptor.
type Accessor struct {
	Name       string
	AsyncName  string // empty when async variants are disabled
	URL        string // URL template as emitted, without backticks
	Descriptor ir.EndpointDescriptor
}

// Accessors computes accessor names for descs in input order. Names that
// collide get a numeric suffix, first come first served.
func (g *Generator) Accessors(descs []ir.EndpointDescriptor) []Accessor {
	used := map[string]bool{g.cfg.IndexName: true, g.cfg.IndexName + "Async": true}
	out := make([]Accessor, len(descs))
	for i, d := range descs {
		base := sanitizeIdentifier(g.cfg.Prefix + accessorStem(d))
		name := base
		for n := 2; used[name] || used[name+"Async"]; n++ {
			name = base + strconv.Itoa(n)
		}
		used[name] = true
		out[i] = Accessor{Name: name, URL: g.url(d.Route), Descriptor: d}
		if !g.cfg.NoAsync {
			out[i].AsyncName = name + "Async"
			used[out[i].AsyncName] = true
		}
	}
	return out
}

// accessorStem builds the part of an accessor name after the prefix:
// PascalCase segments, then the verb, then By<Param> for a trailing
// parameter.
//
//	users/[id]/posts.post.ts  -> UsersIdPostsCreate
//	users/[id].get.ts         -> UsersGetById
func accessorStem(d ir.EndpointDescriptor) string {
	var b strings.Builder
	segs := d.Route
	var trailing *ir.Segment
	if n := len(segs); n > 0 && segs[n-1].IsParam() {
		trailing = &segs[n-1]
		segs = segs[:n-1]
	}
	for _, s := range segs {
		b.WriteString(toPascalCase(s.Name))
	}
	b.WriteString(d.Method.Verb())
	if trailing != nil {
		b.WriteString("By")
		b.WriteString(toPascalCase(trailing.Name))
	}
	return b.String()
}

// url renders the request URL as the body of a template literal reading
// parameters from `data`.
func (g *Generator) url(r ir.Route) string {
	var b strings.Builder
	b.WriteString(escapeTemplate(g.cfg.BaseURL))
	for _, s := range r {
		b.WriteByte('/')
		switch s.Kind {
		case ir.SegmentParam:
			b.WriteString("${encodeURIComponent(" + propertyAccess("data", s.Name) + ")}")
		case ir.SegmentCatchAll:
			b.WriteString("${encodeURI(" + propertyAccess("data", s.Name) + ")}")
		default:
			b.WriteString(escapeTemplate(s.Name))
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// Generate returns the module text for descs. Output is a pure function of
// the configuration and the descriptors, in order. A duplicate (route,
// method) pair is the only failure.
func (g *Generator) Generate(descs []ir.EndpointDescriptor) ([]byte, error) {
	if dups := ir.FindDuplicates(descs); len(dups) > 0 {
		return nil, dups[0]
	}

	accessors := g.Accessors(descs)

	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("\nimport { useFetch, type UseFetchOptions } from ")
	buf.WriteString(quoteString(g.cfg.FetchImport))
	buf.WriteString("\n")

	for _, d := range descs {
		if len(d.Route.Params()) > 0 {
			buf.WriteString(omitHelper)
			break
		}
	}

	for _, a := range accessors {
		g.emitAccessor(&buf, a)
	}

	g.emitIndex(&buf, g.cfg.IndexName, accessors, func(a Accessor) string { return a.Name })
	if !g.cfg.NoAsync {
		g.emitIndex(&buf, g.cfg.IndexName+"Async", accessors, func(a Accessor) string { return a.AsyncName })
	}
	return buf.Bytes(), nil
}

func (g *Generator) emitAccessor(buf *bytes.Buffer, a Accessor) {
	d := a.Descriptor
	params := d.Route.Params()

	input := typeOrUnknown(d.InputType)
	if len(params) > 0 {
		fields := make([]string, len(params))
		for i, p := range params {
			fields[i] = quoteString(p.Name) + ": string"
		}
		paramType := "{ " + strings.Join(fields, "; ") + " }"
		if d.InputType == "" {
			input = paramType
		} else {
			input = paramType + " & (" + d.InputType + ")"
		}
	}
	typeParams := "<T extends " + input + ", R extends " + typeOrUnknown(d.ReturnType) + ">"

	payload := "data"
	if len(params) > 0 {
		keys := make([]string, len(params))
		for i, p := range params {
			keys[i] = quoteString(p.Name)
		}
		payload = "omit(data, " + strings.Join(keys, ", ") + ")"
	}
	placement := "query"
	if d.Method.HasBody() {
		placement = "body"
	}
	request := "(`" + a.URL + "`, { method: '" + string(d.Method) + "', " + placement + ": " + payload + ", ...opt })"

	buf.WriteString("\n")
	g.emitDoc(buf, a, placement, "useFetch")
	buf.WriteString("export const " + a.Name + " = " + typeParams + "(data: T, opt: UseFetchOptions<R> = {}) =>\n")
	buf.WriteString("  useFetch<R>" + request + "\n")

	if a.AsyncName == "" {
		return
	}
	buf.WriteString("\n")
	g.emitDoc(buf, a, placement, "$fetch")
	buf.WriteString("export const " + a.AsyncName + " = " + typeParams + "(data: T, opt: Parameters<typeof $fetch>[1] = {}) =>\n")
	buf.WriteString("  $fetch<R>" + request + "\n")
}

var docEscaper = strings.NewReplacer("*/", "*\\/")

func (g *Generator) emitDoc(buf *bytes.Buffer, a Accessor, placement, fetcher string) {
	if g.cfg.NoDocs {
		return
	}
	buf.WriteString("/**\n")
	buf.WriteString(" * Sends a `" + string(a.Descriptor.Method) + "` request to `" + docEscaper.Replace(a.URL) + "` with the given data as `" + placement + "`.\n")
	buf.WriteString(" * @param data - Data to send as " + placement + ".\n")
	buf.WriteString(" * @param opt - Options passed to the underlying `" + fetcher + "`.\n")
	if a.Descriptor.SourcePath != "" {
		buf.WriteString(" * @see " + docEscaper.Replace(a.Descriptor.SourcePath) + "\n")
	}
	buf.WriteString(" */\n")
}

// emitIndex writes the aggregate object. Routes appear in first-seen order
// and methods in input order within a route.
func (g *Generator) emitIndex(buf *bytes.Buffer, name string, accessors []Accessor, ref func(Accessor) string) {
	type group struct {
		label   string
		members []Accessor
	}
	var groups []*group
	byKey := make(map[string]*group)
	for _, a := range accessors {
		key := a.Descriptor.Route.Key()
		grp, ok := byKey[key]
		if !ok {
			grp = &group{label: "/" + a.Descriptor.Route.String()}
			byKey[key] = grp
			groups = append(groups, grp)
		}
		grp.members = append(grp.members, a)
	}

	buf.WriteString("\nexport const " + name + " = {\n")
	for _, grp := range groups {
		buf.WriteString("  " + quoteString(grp.label) + ": {\n")
		for _, a := range grp.members {
			buf.WriteString("    " + string(a.Descriptor.Method) + ": " + ref(a) + ",\n")
		}
		buf.WriteString("  },\n")
	}
	buf.WriteString("} as const\n")
}

func typeOrUnknown(text string) string {
	if strings.TrimSpace(text) == "" {
		return "unknown"
	}
	return text
}
