package dev

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/routegen/cmd/routegen/internal/project"
	"github.com/broady/routegen/internal/config"
	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/typescript"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Source is the state the server reports on.
type Source interface {
	Status() project.Status
	Endpoints() []typescript.Accessor
}

// EndpointsQuery filters GET /endpoints.
type EndpointsQuery struct {
	Method string `schema:"method" json:"method" validate:"omitempty,oneof=GET POST PUT DELETE get post put delete"`
	// Route matches routes starting with the given pattern, e.g. "users"
	// or "users/:id".
	Route string `schema:"route" json:"route"`
	Limit int    `schema:"limit" json:"limit" validate:"gte=0,lte=1000"`
}

// Endpoint is one entry of GET /endpoints.
type Endpoint struct {
	Method        string `json:"method"`
	Route         string `json:"route"`
	URL           string `json:"url"`
	Accessor      string `json:"accessor"`
	AsyncAccessor string `json:"asyncAccessor,omitempty"`
	Input         string `json:"input"`
	Return        string `json:"return"`
	Source        string `json:"source"`
}

// EndpointsResponse is the body of GET /endpoints.
type EndpointsResponse struct {
	Query     EndpointsQuery `json:"query"`
	Total     int            `json:"total"`
	Endpoints []Endpoint     `json:"endpoints"`
}

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// NewHandler serves the status endpoints relative to its mount point.
func NewHandler(src Source) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, src.Status())
	})
	mux.HandleFunc("GET /endpoints", func(w http.ResponseWriter, r *http.Request) {
		q, err := decodeQuery(r)
		if err != nil {
			resp := errorResponse{Error: err.Error()}
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				resp = errorResponse{Error: "invalid query", Fields: config.Messages(verrs)}
			}
			writeJSON(w, http.StatusBadRequest, resp)
			return
		}
		writeJSON(w, http.StatusOK, filterEndpoints(src.Endpoints(), q))
	})
	return mux
}

func decodeQuery(r *http.Request) (EndpointsQuery, error) {
	var q EndpointsQuery
	if err := schemaDecoder.Decode(&q, r.URL.Query()); err != nil {
		return q, errors.Wrap(err, "decode query")
	}
	if err := config.Validator().Struct(&q); err != nil {
		return q, err
	}
	return q, nil
}

func filterEndpoints(accessors []typescript.Accessor, q EndpointsQuery) EndpointsResponse {
	route := strings.Trim(q.Route, "/")
	resp := EndpointsResponse{Query: q, Endpoints: []Endpoint{}}
	var method ir.Method
	if q.Method != "" {
		var ok bool
		if method, ok = ir.ParseMethod(q.Method); !ok {
			return resp
		}
	}
	for _, a := range accessors {
		d := a.Descriptor
		if method != "" && d.Method != method {
			continue
		}
		if route != "" && !routeHasPrefix(d.Route.String(), route) {
			continue
		}
		resp.Total++
		if q.Limit > 0 && len(resp.Endpoints) >= q.Limit {
			continue
		}
		resp.Endpoints = append(resp.Endpoints, Endpoint{
			Method:        string(d.Method),
			Route:         "/" + d.Route.String(),
			URL:           a.URL,
			Accessor:      a.Name,
			AsyncAccessor: a.AsyncName,
			Input:         d.InputType,
			Return:        d.ReturnType,
			Source:        d.SourcePath,
		})
	}
	return resp
}

// routeHasPrefix matches whole segments: "users" covers "users/:id" but
// not "usersettings".
func routeHasPrefix(route, prefix string) bool {
	return route == prefix || strings.HasPrefix(route, prefix+"/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
