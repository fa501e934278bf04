package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"github.com/qri-io/jsonschema"

	"github.com/garnizeh/interntrack/pkg/models"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

const (
	schemaInternshipCreate   = "internship_create"
	schemaInternshipPatch    = "internship_patch"
	schemaInternshipStatus   = "internship_status"
	schemaInternshipFollowUp = "internship_follow_up"
	schemaUserRegister       = "user_register"
	schemaUserLogin          = "user_login"
	schemaUserUpdate         = "user_update"
	schemaForgotPassword     = "user_forgot_password"
	schemaResetPassword      = "user_reset_password"
)

// SchemaSet holds compiled request body schemas keyed by file name without extension.
type SchemaSet struct {
	cache map[string]*jsonschema.Schema
}

// LoadSchemas compiles every *.json file under the schemas directory of fsys.
func LoadSchemas(fsys fs.FS) (*SchemaSet, error) {
	names, err := fs.Glob(fsys, "schemas/*.json")
	if err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}

	set := &SchemaSet{cache: make(map[string]*jsonschema.Schema, len(names))}
	for _, name := range names {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal(raw, rs); err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		set.cache[strings.TrimSuffix(path.Base(name), ".json")] = rs
	}

	return set, nil
}

var defaultSchemas = mustLoadSchemas()

func mustLoadSchemas() *SchemaSet {
	set, err := LoadSchemas(schemaFiles)
	if err != nil {
		panic(err)
	}
	return set
}

// GetSchema returns a compiled schema by name.
func (s *SchemaSet) GetSchema(name string) (*jsonschema.Schema, bool) {
	rs, ok := s.cache[name]
	return rs, ok
}

var requiredMessage = regexp.MustCompile(`^"([^"]+)" value is required`)

// Validate checks data against the named schema. Malformed JSON and schema
// violations are both reported as *models.ValidationError.
func (s *SchemaSet) Validate(ctx context.Context, name string, data []byte) error {
	rs, ok := s.GetSchema(name)
	if !ok {
		return fmt.Errorf("schema %q not loaded", name)
	}

	ve := models.NewValidationError()
	if !json.Valid(data) {
		ve.Add("body", "must be valid JSON")
		return ve
	}

	verrs, err := rs.ValidateBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	for _, ke := range verrs {
		ve.Add(keyErrorField(ke), ke.Message)
	}
	return ve.OrNil()
}

func keyErrorField(ke jsonschema.KeyError) string {
	p := strings.Trim(ke.PropertyPath, "/")
	if p == "" {
		if m := requiredMessage.FindStringSubmatch(ke.Message); m != nil {
			return m[1]
		}
		return "body"
	}
	if i := strings.Index(p, "/"); i >= 0 {
		p = p[:i]
	}
	return p
}
