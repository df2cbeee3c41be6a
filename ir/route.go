package ir

import "strings"

// SegmentKind distinguishes literal path segments from parameters.
type SegmentKind int

const (
	SegmentStatic   SegmentKind = iota // literal segment: users
	SegmentParam                       // single parameter: [id]
	SegmentCatchAll                    // rest parameter: [...slug]
)

// String returns the string representation of the segment kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentStatic:
		return "Static"
	case SegmentParam:
		return "Param"
	case SegmentCatchAll:
		return "CatchAll"
	default:
		return "Unknown"
	}
}

// Segment is one component of a route.
type Segment struct {
	Kind SegmentKind
	// Name is the literal text for static segments and the parameter name
	// otherwise.
	Name string
}

// Static returns a literal segment.
func Static(name string) Segment { return Segment{Kind: SegmentStatic, Name: name} }

// Param returns a parameter segment.
func Param(name string) Segment { return Segment{Kind: SegmentParam, Name: name} }

// CatchAll returns a rest parameter segment.
func CatchAll(name string) Segment { return Segment{Kind: SegmentCatchAll, Name: name} }

// IsParam reports whether the segment is a parameter of either kind.
func (s Segment) IsParam() bool {
	return s.Kind == SegmentParam || s.Kind == SegmentCatchAll
}

// String renders the segment in URL pattern form: users, :id, *slug.
func (s Segment) String() string {
	switch s.Kind {
	case SegmentParam:
		return ":" + s.Name
	case SegmentCatchAll:
		return "*" + s.Name
	default:
		return s.Name
	}
}

// Route is the ordered list of segments an endpoint is served under,
// relative to the API base path.
type Route []Segment

// String renders the route in URL pattern form, e.g. "users/:id".
// The empty route renders as "".
func (r Route) String() string {
	parts := make([]string, len(r))
	for i, s := range r {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Key returns the canonical identity of the route used for uniqueness.
// Parameter names are erased: users/[id] and users/[uid] match the same
// requests and therefore share a key.
func (r Route) Key() string {
	parts := make([]string, len(r))
	for i, s := range r {
		switch s.Kind {
		case SegmentParam:
			parts[i] = ":"
		case SegmentCatchAll:
			parts[i] = "*"
		default:
			parts[i] = s.Name
		}
	}
	return strings.Join(parts, "/")
}

// Params returns the parameter segments in order.
func (r Route) Params() []Segment {
	var params []Segment
	for _, s := range r {
		if s.IsParam() {
			params = append(params, s)
		}
	}
	return params
}
