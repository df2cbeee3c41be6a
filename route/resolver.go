// Package route derives an endpoint's HTTP method and route from its file
// path relative to the scan root.
//
//	users/[id].get.ts       GET    users/:id
//	files/[...path].put.ts  PUT    files/*path
//	index.post.ts           POST   (root)
package route

import (
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/broady/routegen/ir"
)

// ErrNoMethodMarker is returned for file names carrying none of the
// recognized method markers.
var ErrNoMethodMarker = errors.New("file name has no method marker")

// MethodFromName finds the method marker in a file name. The lower-cased
// name is scanned left to right and the earliest marker wins; Methods order
// only matters for markers starting at the same offset, which cannot happen
// for the four recognized markers. It also returns the byte offset of the
// marker.
func MethodFromName(name string) (ir.Method, int, bool) {
	lower := strings.ToLower(name)
	best, bestIdx := ir.Method(""), -1
	for _, m := range ir.Methods {
		idx := strings.Index(lower, m.Marker())
		if idx < 0 {
			continue
		}
		if bestIdx < 0 || idx < bestIdx {
			best, bestIdx = m, idx
		}
	}
	return best, bestIdx, bestIdx >= 0
}

// Resolve derives the method and route for relPath, a slash-separated path
// relative to the scan root.
func Resolve(relPath string) (ir.Method, ir.Route, error) {
	relPath = strings.TrimPrefix(path.Clean("/"+relPath), "/")
	dir, name := path.Split(relPath)

	method, idx, ok := MethodFromName(name)
	if !ok {
		return "", nil, errors.Wrapf(ErrNoMethodMarker, "%s", relPath)
	}

	var route ir.Route
	for _, part := range strings.Split(strings.TrimSuffix(dir, "/"), "/") {
		if part == "" {
			continue
		}
		route = append(route, ParseSegment(part))
	}

	// users.get.ts -> users; the marker and everything after it is dropped.
	if base := name[:idx]; base != "" && base != "index" {
		route = append(route, ParseSegment(base))
	}
	return method, route, nil
}

// ParseSegment classifies one path component.
func ParseSegment(s string) ir.Segment {
	if len(s) > 2 && strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := s[1 : len(s)-1]
		if rest, ok := strings.CutPrefix(inner, "..."); ok {
			if rest != "" {
				return ir.CatchAll(rest)
			}
			return ir.Static(s)
		}
		return ir.Param(inner)
	}
	return ir.Static(s)
}
