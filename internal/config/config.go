// Package config loads and validates the optional routegen.jsonc project
// file.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/muhammadmuzzammil1998/jsonc"

	"github.com/broady/routegen/typescript"
)

// FileName is the project file looked up in the working directory.
const FileName = "routegen.jsonc"

// File mirrors routegen.jsonc. Relative paths are resolved against the
// directory containing the file.
type File struct {
	Source      string   `json:"source" validate:"required"`
	Output      string   `json:"output" validate:"required"`
	HandlerName string   `json:"handlerName" validate:"omitempty,tsident"`
	Prefix      string   `json:"prefix" validate:"omitempty,tsident"`
	BaseURL     string   `json:"baseURL" validate:"omitempty,startswith=/"`
	IndexName   string   `json:"indexName" validate:"omitempty,tsident"`
	FetchImport string   `json:"fetchImport"`
	Concurrency int      `json:"concurrency" validate:"gte=0,lte=256"`
	Include     []string `json:"include" validate:"dive,required,glob"`
	Exclude     []string `json:"exclude" validate:"dive,required,glob"`
	NoAsync     bool     `json:"noAsync"`
	NoDocs      bool     `json:"noDocs"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("tsident", func(fl validator.FieldLevel) bool {
		return typescript.IsIdentifier(fl.Field().String())
	})
	_ = v.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		return doublestar.ValidatePattern(fl.Field().String())
	})
	return v
}

// Validator returns the shared validator with the routegen tags registered.
func Validator() *validator.Validate {
	return validate
}

// Load reads and validates the file at path. Relative source and output
// paths are made relative to the file's directory.
func Load(path string) (*File, error) {
	f, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", path)
	}
	return f, nil
}

// Read is Load without validation, for callers that merge further
// settings before validating.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	f.resolve(filepath.Dir(path))
	return f, nil
}

// Find looks for FileName in dir. The boolean is false when it does not
// exist.
func Find(dir string) (string, bool) {
	path := filepath.Join(dir, FileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// Parse decodes JSON with comments. It does not validate.
func Parse(data []byte) (*File, error) {
	var f File
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "decode"), "routegen.jsonc accepts JSON with // and /* */ comments")
	}
	return &f, nil
}

func (f *File) resolve(dir string) {
	if f.Source != "" && !filepath.IsAbs(f.Source) {
		f.Source = filepath.Join(dir, f.Source)
	}
	if f.Output != "" && !filepath.IsAbs(f.Output) {
		f.Output = filepath.Join(dir, f.Output)
	}
}

// Validate checks the struct tags and reports every failing field.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate")
	}
	return errors.Newf("invalid configuration: %s", strings.Join(Messages(verrs), "; "))
}

// Messages renders validation errors as "field: message" strings.
func Messages(verrs validator.ValidationErrors) []string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Namespace()[strings.IndexByte(fe.Namespace(), '.')+1:]+": "+formatFieldError(fe))
	}
	return msgs
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "tsident":
		return "must be a valid TypeScript identifier"
	case "glob":
		return "must be a valid glob pattern"
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		if fe.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
