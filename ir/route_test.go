package ir

import "testing"

func TestRoute_String(t *testing.T) {
	tests := []struct {
		name  string
		route Route
		want  string
	}{
		{"empty", Route{}, ""},
		{"static", Route{Static("users")}, "users"},
		{"param", Route{Static("users"), Param("id")}, "users/:id"},
		{"catch-all", Route{Static("files"), CatchAll("path")}, "files/*path"},
		{"nested", Route{Param("pid"), Static("tags"), Param("uid")}, ":pid/tags/:uid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.route.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoute_Key(t *testing.T) {
	a := Route{Static("users"), Param("id")}
	b := Route{Static("users"), Param("uid")}
	c := Route{Static("users"), CatchAll("id")}

	if a.Key() != b.Key() {
		t.Errorf("param names should not affect key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Errorf("param and catch-all should differ: both %q", a.Key())
	}
}

func TestRoute_Params(t *testing.T) {
	r := Route{Param("pid"), Static("tags"), CatchAll("rest")}
	params := r.Params()
	if len(params) != 2 {
		t.Fatalf("Params() length = %d, want 2", len(params))
	}
	if params[0].Name != "pid" || params[1].Kind != SegmentCatchAll {
		t.Errorf("Params() = %+v", params)
	}
	if got := (Route{Static("users")}).Params(); got != nil {
		t.Errorf("Params() on static route = %+v, want nil", got)
	}
}

func TestSegmentKind_String(t *testing.T) {
	tests := []struct {
		kind SegmentKind
		want string
	}{
		{SegmentStatic, "Static"},
		{SegmentParam, "Param"},
		{SegmentCatchAll, "CatchAll"},
		{SegmentKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("SegmentKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestEndpointDescriptor_Key(t *testing.T) {
	get := EndpointDescriptor{Route: Route{Static("users")}, Method: MethodGet}
	post := EndpointDescriptor{Route: Route{Static("users")}, Method: MethodPost}
	if get.Key() == post.Key() {
		t.Errorf("different methods share key %q", get.Key())
	}
	if get.Key() != "GET users" {
		t.Errorf("Key() = %q, want %q", get.Key(), "GET users")
	}
}
