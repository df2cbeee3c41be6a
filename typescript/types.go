package typescript

import "strings"

// Defaults applied by Config.withDefaults.
const (
	DefaultPrefix      = "useTFetch"
	DefaultBaseURL     = "/api"
	DefaultIndexName   = "api"
	DefaultFetchImport = "nuxt/app"
)

// Config controls the shape of the generated client module.
type Config struct {
	// Prefix is prepended to every accessor name.
	// Default: "useTFetch"
	Prefix string

	// BaseURL is the path every route is served under. A trailing slash is
	// ignored.
	// Default: "/api"
	BaseURL string

	// IndexName is the name of the exported aggregate object.
	// Default: "api"
	IndexName string

	// FetchImport is the module useFetch and UseFetchOptions are imported
	// from.
	// Default: "nuxt/app"
	FetchImport string

	// NoAsync disables the $fetch based "Async" accessor variants.
	NoAsync bool

	// NoDocs disables JSDoc comments on accessors.
	NoDocs bool
}

func (c Config) withDefaults() Config {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.IndexName == "" {
		c.IndexName = DefaultIndexName
	}
	if c.FetchImport == "" {
		c.FetchImport = DefaultFetchImport
	}
	return c
}
