package generate

import "strings"

// SchemaNode is a resolved, self-contained fragment of the API description's
// type model. The upstream loader resolves all $refs before handing schemas
// to the generator, so nodes never point back into the source document.
type SchemaNode struct {
	Type       string
	Properties []Property // ordered; the loader sorts by name for determinism
	Required   []string
	Items      *SchemaNode
	Enum       []any
	Default    any
	Example    any
	AllOf      []*SchemaNode
	AnyOf      []*SchemaNode
	OneOf      []*SchemaNode
	// HasAdditional marks object schemas that allow additional properties.
	HasAdditional bool
}

// Property is one named object property, order-preserving.
type Property struct {
	Name   string
	Schema *SchemaNode
}

// Prop returns the named property's schema, or nil.
func (n *SchemaNode) Prop(name string) *SchemaNode {
	if n == nil {
		return nil
	}
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Schema
		}
	}
	return nil
}

// IsRequired reports whether name is in the schema's required list.
func (n *SchemaNode) IsRequired(name string) bool {
	if n == nil {
		return false
	}
	for _, r := range n.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Parameter is one declared operation parameter.
type Parameter struct {
	Name        string
	In          string // "query", "path", "header", "cookie"
	Required    bool
	Description string
	Schema      *SchemaNode
}

// Response is one declared response variant.
type Response struct {
	Status string // "200", "201", "default", ...
	Schema *SchemaNode
}

// Operation is the normalized record for one API endpoint, the generator's
// sole input besides the document. The upstream loader produces one per
// method+path pair with parameters already deduplicated and refs resolved.
type Operation struct {
	OperationID string
	Method      string // lowercase HTTP method
	Path        string
	Summary     string
	Description string
	Tags        []string
	Parameters  []Parameter
	RequestBody *SchemaNode // application/json request schema, if any
	Responses   []Response
}

// PrimaryResponseSchema picks the response schema used for response-shape
// hints: 200, then 201, then default, then whatever comes first.
func (op *Operation) PrimaryResponseSchema() *SchemaNode {
	for _, want := range []string{"200", "201", "default"} {
		for _, r := range op.Responses {
			if r.Status == want && r.Schema != nil {
				return r.Schema
			}
		}
	}
	for _, r := range op.Responses {
		if r.Schema != nil {
			return r.Schema
		}
	}
	return nil
}

// RouteGroup is the navigation group for the operation: the first tag when
// present, else the first non-placeholder path segment.
func (op *Operation) RouteGroup() string {
	for _, t := range op.Tags {
		if s := strings.TrimSpace(t); s != "" {
			return s
		}
	}
	for _, part := range strings.Split(op.Path, "/") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "{") {
			continue
		}
		return part
	}
	return ""
}

// Document is the normalized API description: version identity plus the
// named component schemas the generator may consult.
type Document struct {
	Version string
	BaseURL string
	Schemas map[string]*SchemaNode
}

// VersionOrUnknown returns the document version, or "unknown" when the
// description does not declare one.
func (d *Document) VersionOrUnknown() string {
	if d == nil || d.Version == "" {
		return "unknown"
	}
	return d.Version
}
