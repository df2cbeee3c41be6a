package ir

import "fmt"

// DuplicateRouteError reports two descriptors that resolve to the same
// method and route. Path is the file that lost; Existing claimed the pair
// first.
type DuplicateRouteError struct {
	Method   Method
	Route    Route
	Path     string
	Existing string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("duplicate route %s /%s: %s conflicts with %s", e.Method, e.Route, e.Path, e.Existing)
}

// FindDuplicates returns one error for every descriptor whose key was
// already claimed by an earlier descriptor in the slice. The result is in
// input order and nil when every key is unique.
func FindDuplicates(descs []EndpointDescriptor) []*DuplicateRouteError {
	var dups []*DuplicateRouteError
	seen := make(map[string]string, len(descs))
	for _, d := range descs {
		key := d.Key()
		if first, ok := seen[key]; ok {
			dups = append(dups, &DuplicateRouteError{
				Method:   d.Method,
				Route:    d.Route,
				Path:     d.SourcePath,
				Existing: first,
			})
			continue
		}
		seen[key] = d.SourcePath
	}
	return dups
}
