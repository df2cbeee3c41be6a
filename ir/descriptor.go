package ir

// EndpointDescriptor represents a single recognized endpoint file.
type EndpointDescriptor struct {
	// Route is derived from the file's location relative to the scan root.
	Route Route

	// Method is derived from the marker in the file name.
	Method Method

	// InputType is the reconstructed text of the first generic type argument
	// passed to the handler-registration call. Empty when there is none.
	// Example: "{ id: string }"
	InputType string

	// ReturnType is the reconstructed text of the expression returned by the
	// handler function. Empty when no return was found.
	// Example: "{ name: user.name }"
	ReturnType string

	// SourcePath is the slash-separated path relative to the scan root.
	// Example: "users/[id].get.ts"
	SourcePath string
}

// Key returns the identity of the descriptor within a set: method plus
// canonical route.
func (d EndpointDescriptor) Key() string {
	return string(d.Method) + " " + d.Route.Key()
}

// Fragment is the part of a descriptor recovered from a file's syntax tree.
// Route and method are filled in separately from the file's path.
type Fragment struct {
	InputType  string
	ReturnType string
}
