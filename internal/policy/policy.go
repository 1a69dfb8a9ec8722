package policy

import (
	"context"

	"dossierapi/internal/model"
)

// SchemaPolicy is the external collaborator deciding which file extensions a
// document type accepts under a given dossier schema. The engine only needs
// the allowlist and whether the type exists; how schemas are authored is out
// of scope.
type SchemaPolicy interface {
	// AllowedExtensions returns the normalized extension allowlist for the
	// (schema, type code) pair and whether the type is known to the schema.
	AllowedExtensions(ctx context.Context, schemaName, typeCode string) ([]string, bool, error)
}

// Static is a SchemaPolicy backed by an in-memory rule table with a global
// fallback allowlist. Rules are keyed by schema, then type code. It stands in
// for the real policy service in deployments that configure a single
// allowlist via the environment.
type Static struct {
	fallback map[string]struct{}
	rules    map[string]map[string][]string
}

// NewStatic builds a Static policy from a fallback allowlist.
func NewStatic(fallback []string) *Static {
	fb := make(map[string]struct{}, len(fallback))
	for _, ext := range fallback {
		fb[model.NormalizeExtension(ext)] = struct{}{}
	}
	return &Static{
		fallback: fb,
		rules:    make(map[string]map[string][]string),
	}
}

// AddRule registers a per-(schema, type) allowlist overriding the fallback.
func (p *Static) AddRule(schemaName, typeCode string, extensions []string) {
	types, ok := p.rules[schemaName]
	if !ok {
		types = make(map[string][]string)
		p.rules[schemaName] = types
	}
	norm := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		norm = append(norm, model.NormalizeExtension(ext))
	}
	types[typeCode] = norm
}

var _ SchemaPolicy = (*Static)(nil)

// AllowedExtensions resolves the allowlist for (schema, type). Types without
// an explicit rule fall back to the global allowlist and are considered known.
func (p *Static) AllowedExtensions(_ context.Context, schemaName, typeCode string) ([]string, bool, error) {
	if types, ok := p.rules[schemaName]; ok {
		if exts, ok := types[typeCode]; ok {
			return exts, true, nil
		}
	}
	exts := make([]string, 0, len(p.fallback))
	for ext := range p.fallback {
		exts = append(exts, ext)
	}
	return exts, true, nil
}

// Allows reports whether the extension is in the resolved allowlist.
func Allows(allowed []string, ext string) bool {
	ext = model.NormalizeExtension(ext)
	for _, a := range allowed {
		if a == ext {
			return true
		}
	}
	return false
}
