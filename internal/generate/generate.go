// Package generate turns a normalized API operation into a fresh screen
// schema: screen kind and entity inference, field descriptors for path, query
// and body inputs, submit-wrapper detection, and response-shape hints. The
// output is the "next" side of reconciliation and is fully stamped with
// provenance before it leaves this package.
package generate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/screenforge/screenforge/internal/project"
	"github.com/screenforge/screenforge/internal/schema"
)

// ErrInvalidOperation marks operations the generator cannot build a screen
// for: a missing method, path, or operation id.
var ErrInvalidOperation = errors.New("invalid operation")

// Generator builds screen schemas from operations, applying any project
// configuration overrides.
type Generator struct {
	cfg *project.Config
}

// New returns a Generator. cfg may be nil.
func New(cfg *project.Config) *Generator {
	return &Generator{cfg: cfg}
}

var pathParamPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Generate builds the screen schema for one operation.
func (g *Generator) Generate(op *Operation, doc *Document) (*schema.ScreenSchema, error) {
	if op.Method == "" || op.Path == "" || op.OperationID == "" {
		return nil, fmt.Errorf("%w: %s %s (operationId %q)", ErrInvalidOperation, op.Method, op.Path, op.OperationID)
	}

	entity := g.inferEntity(op)
	kind := g.screenKind(op)
	abbr := g.abbreviations()

	body, submitWrap := effectiveBody(op, doc, entity)

	s := &schema.ScreenSchema{
		Entity:      entity,
		Screen:      kind,
		Description: description(op),
		Layout:      schema.Layout{Type: "single-column"},
		Operation: schema.OperationRef{
			OperationID: op.OperationID,
			Endpoint:    op.Path,
			Method:      op.Method,
			BaseURL:     doc.baseURL(),
			SubmitWrap:  submitWrap,
		},
		PathParams:  g.pathParams(op, abbr),
		QueryParams: g.queryParams(op, abbr),
		Fields:      g.bodyFields(body, abbr),
	}

	s.Actions = g.actions(op, entity, s)
	s.Response = responseHint(op, abbr)

	return schema.Normalize(s, schema.ActorAPI, doc.VersionOrUnknown()), nil
}

func (g *Generator) abbreviations() map[string]string {
	if g.cfg == nil {
		return nil
	}
	return g.cfg.Abbreviations
}

// screenKind infers form-vs-view and mode from the HTTP method, unless a
// project pin overrides the inference.
func (g *Generator) screenKind(op *Operation) schema.ScreenKind {
	if pin, ok := g.cfg.ScreenPinFor(op.OperationID); ok {
		return schema.ScreenKind{Type: pin.Type, Mode: pin.Mode}
	}
	switch op.Method {
	case "post":
		return schema.ScreenKind{Type: schema.ScreenForm, Mode: schema.ModeCreate}
	case "put", "patch":
		return schema.ScreenKind{Type: schema.ScreenForm, Mode: schema.ModeEdit}
	case "get":
		if hasQueryParams(op) {
			return schema.ScreenKind{Type: schema.ScreenForm, Mode: schema.ModeFilter}
		}
		return schema.ScreenKind{Type: schema.ScreenView, Mode: schema.ModeReadonly}
	default:
		return schema.ScreenKind{Type: schema.ScreenView, Mode: schema.ModeReadonly}
	}
}

// actions infers the primary action. Read screens with no inputs get none;
// everything else gets a method-appropriate verb.
func (g *Generator) actions(op *Operation, entity string, s *schema.ScreenSchema) schema.Actions {
	switch op.Method {
	case "post":
		return schema.Actions{Primary: &schema.ActionDescriptor{Type: "create", Label: "Create " + entity}}
	case "put", "patch":
		return schema.Actions{Primary: &schema.ActionDescriptor{Type: "save", Label: "Save"}}
	case "delete":
		return schema.Actions{Primary: &schema.ActionDescriptor{Type: "delete", Label: "Delete " + entity}}
	case "get":
		if len(s.QueryParams) == 0 && len(s.Fields) == 0 {
			return schema.Actions{}
		}
		return schema.Actions{Primary: &schema.ActionDescriptor{Type: "search", Label: "Search"}}
	default:
		return schema.Actions{Primary: &schema.ActionDescriptor{Type: "execute", Label: "Execute"}}
	}
}

// inferEntity derives the entity display name: the trimmed summary when
// present, else the last meaningful path segment singularized, else the
// operation id stripped of its verb prefix. Project config can override the
// final display name.
func (g *Generator) inferEntity(op *Operation) string {
	entity := strings.TrimSpace(op.Summary)
	if entity == "" {
		entity = entityFromPath(op.Path)
	}
	if entity == "" {
		entity = entityFromOperationID(op.OperationID)
	}
	if display := g.cfg.EntityDisplay(entity); display != "" {
		return display
	}
	return entity
}

func entityFromPath(path string) string {
	var last string
	for _, part := range strings.Split(path, "/") {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "{") {
			continue
		}
		last = part
	}
	if last == "" {
		return ""
	}
	return ToLabel(singularize(last), nil)
}

var verbPrefixes = []string{"get", "create", "update", "patch", "delete", "call", "list"}

func entityFromOperationID(id string) string {
	lower := strings.ToLower(id)
	for _, p := range verbPrefixes {
		if strings.HasPrefix(lower, p) && len(id) > len(p) {
			return ToLabel(id[len(p):], nil)
		}
	}
	return ToLabel(id, nil)
}

func singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies") && len(s) > 3:
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "ses"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s") && !strings.HasSuffix(s, "ss"):
		return s[:len(s)-1]
	}
	return s
}

func description(op *Operation) string {
	if d := strings.TrimSpace(op.Description); d != "" {
		return d
	}
	return strings.TrimSpace(op.Summary)
}

func hasQueryParams(op *Operation) bool {
	for _, p := range op.Parameters {
		if p.In == "query" {
			return true
		}
	}
	return false
}

// pathParams builds a descriptor per template placeholder, in template order.
// Declared path parameters contribute type and description; placeholders the
// document never declares still surface as required strings so the endpoint
// is always fillable.
func (g *Generator) pathParams(op *Operation, abbr map[string]string) []schema.FieldDescriptor {
	declared := make(map[string]*Parameter)
	for i := range op.Parameters {
		if op.Parameters[i].In == "path" {
			declared[op.Parameters[i].Name] = &op.Parameters[i]
		}
	}

	var out []schema.FieldDescriptor
	for _, m := range pathParamPattern.FindAllStringSubmatch(op.Path, -1) {
		name := m[1]
		f := schema.FieldDescriptor{
			Name:     name,
			Type:     schema.TypeString,
			Required: true,
			Label:    schema.Ptr(ToLabel(name, abbr)),
		}
		if p := declared[name]; p != nil {
			applyParamSchema(&f, p)
		}
		out = append(out, f)
	}
	return out
}

func (g *Generator) queryParams(op *Operation, abbr map[string]string) []schema.FieldDescriptor {
	var out []schema.FieldDescriptor
	for i := range op.Parameters {
		p := &op.Parameters[i]
		if p.In != "query" {
			continue
		}
		f := schema.FieldDescriptor{
			Name:     p.Name,
			Type:     schema.TypeString,
			Required: p.Required,
			Label:    schema.Ptr(ToLabel(p.Name, abbr)),
		}
		applyParamSchema(&f, p)
		out = append(out, f)
	}
	return out
}

func applyParamSchema(f *schema.FieldDescriptor, p *Parameter) {
	if p.Description != "" {
		f.Hint = schema.Ptr(p.Description)
	}
	if p.Schema == nil {
		return
	}
	if t := fieldType(p.Schema); t != "" {
		f.Type = t
	}
	if len(p.Schema.Enum) > 0 {
		f.Options = append([]any(nil), p.Schema.Enum...)
	}
	if p.Schema.Default != nil {
		f.DefaultValue = p.Schema.Default
	}
	if p.Schema.Example != nil {
		f.Placeholder = schema.Ptr(fmt.Sprint(p.Schema.Example))
	}
}

// effectiveBody resolves the request body schema the form should expose:
// allOf composition flattened, the single-object-property submit wrapper
// unwrapped, and for create screens the New/Update component union applied.
func effectiveBody(op *Operation, doc *Document, entity string) (*SchemaNode, string) {
	body := flatten(op.RequestBody)
	if body == nil {
		return nil, ""
	}

	body, wrap := unwrapSubmitWrapper(body)

	if op.Method == "post" {
		if unioned := unionCreateComponents(body, doc, entity); unioned != nil {
			body = unioned
		}
	}
	return body, wrap
}

// unwrapSubmitWrapper detects the single-object-property envelope pattern
// ({"article": {...}}) and returns the inner object plus the wrapper key.
func unwrapSubmitWrapper(body *SchemaNode) (*SchemaNode, string) {
	if body == nil || body.Type != "object" || len(body.Properties) != 1 || body.HasAdditional {
		return body, ""
	}
	only := body.Properties[0]
	inner := flatten(only.Schema)
	if inner == nil || inner.Type != "object" || len(inner.Properties) == 0 {
		return body, ""
	}
	return inner, only.Name
}

// unionCreateComponents widens a create form with the optional fields of the
// matching Update component, so edits made through the create screen's
// overlay survive when the API splits New/Update shapes. Returns nil when
// the document has no New{Entity} component.
func unionCreateComponents(body *SchemaNode, doc *Document, entity string) *SchemaNode {
	if doc == nil || len(doc.Schemas) == 0 {
		return nil
	}
	key := strings.ReplaceAll(entity, " ", "")
	newSchema := flatten(doc.Schemas["New"+key])
	if newSchema == nil || newSchema.Type != "object" {
		return nil
	}
	out := &SchemaNode{
		Type:       "object",
		Properties: append([]Property(nil), newSchema.Properties...),
		Required:   append([]string(nil), newSchema.Required...),
	}
	updSchema := flatten(doc.Schemas["Update"+key])
	if updSchema != nil {
		for _, p := range updSchema.Properties {
			if out.Prop(p.Name) == nil {
				out.Properties = append(out.Properties, p)
			}
		}
	}
	// Keep anything the request body declares that neither component does.
	if body != nil {
		for _, p := range body.Properties {
			if out.Prop(p.Name) == nil {
				out.Properties = append(out.Properties, p)
			}
		}
	}
	return out
}

func (g *Generator) bodyFields(body *SchemaNode, abbr map[string]string) []schema.FieldDescriptor {
	if body == nil {
		return nil
	}
	var out []schema.FieldDescriptor
	for _, p := range body.Properties {
		node := flatten(p.Schema)
		f := schema.FieldDescriptor{
			Name:     p.Name,
			Type:     fieldTypeOrString(node),
			Required: body.IsRequired(p.Name),
			Label:    schema.Ptr(ToLabel(p.Name, abbr)),
		}
		if node != nil {
			if len(node.Enum) > 0 {
				f.Options = append([]any(nil), node.Enum...)
			}
			if node.Default != nil {
				f.DefaultValue = node.Default
			}
			if node.Example != nil {
				f.Placeholder = schema.Ptr(fmt.Sprint(node.Example))
			}
		}
		out = append(out, f)
	}
	return out
}

// flatten merges allOf branches into a single node and descends into
// single-branch anyOf/oneOf, so downstream code only sees plain objects.
func flatten(n *SchemaNode) *SchemaNode {
	if n == nil {
		return nil
	}
	if len(n.AllOf) == 0 && len(n.AnyOf) != 1 && len(n.OneOf) != 1 {
		return n
	}
	out := &SchemaNode{
		Type:          n.Type,
		Properties:    append([]Property(nil), n.Properties...),
		Required:      append([]string(nil), n.Required...),
		Items:         n.Items,
		Enum:          n.Enum,
		Default:       n.Default,
		Example:       n.Example,
		HasAdditional: n.HasAdditional,
	}
	branches := n.AllOf
	if len(branches) == 0 && len(n.AnyOf) == 1 {
		branches = n.AnyOf
	}
	if len(branches) == 0 && len(n.OneOf) == 1 {
		branches = n.OneOf
	}
	for _, b := range branches {
		b = flatten(b)
		if b == nil {
			continue
		}
		if out.Type == "" {
			out.Type = b.Type
		}
		if out.Items == nil {
			out.Items = b.Items
		}
		for _, p := range b.Properties {
			if out.Prop(p.Name) == nil {
				out.Properties = append(out.Properties, p)
			}
		}
		for _, r := range b.Required {
			if !out.IsRequired(r) {
				out.Required = append(out.Required, r)
			}
		}
	}
	return out
}

func fieldType(n *SchemaNode) schema.FieldType {
	if n == nil {
		return ""
	}
	switch n.Type {
	case "string":
		return schema.TypeString
	case "number":
		return schema.TypeNumber
	case "integer":
		return schema.TypeInteger
	case "boolean":
		return schema.TypeBoolean
	case "array":
		return schema.TypeArray
	case "object":
		return schema.TypeObject
	}
	return ""
}

func fieldTypeOrString(n *SchemaNode) schema.FieldType {
	if t := fieldType(n); t != "" {
		return t
	}
	return schema.TypeString
}

// Wrapper keys that commonly envelope list responses.
var listWrapperKeys = []string{"data", "items", "results", "list", "records"}

// responseHint infers a table hint for read operations whose primary
// response is an array of objects, directly or under a common wrapper key.
func responseHint(op *Operation, abbr map[string]string) *schema.ResponseHint {
	if op.Method != "get" {
		return nil
	}
	node := flatten(op.PrimaryResponseSchema())
	items := listItems(node)
	if items == nil {
		return nil
	}
	hint := &schema.ResponseHint{Format: "table"}
	for _, p := range items.Properties {
		hint.Columns = append(hint.Columns, schema.ColumnHint{
			Key:     p.Name,
			Label:   ToLabel(p.Name, abbr),
			Visible: true,
		})
	}
	return hint
}

// listItems returns the object schema for a list response's rows, or nil
// when the response is not list-shaped.
func listItems(n *SchemaNode) *SchemaNode {
	if n == nil {
		return nil
	}
	if n.Type == "array" {
		items := flatten(n.Items)
		if items != nil && items.Type == "object" {
			return items
		}
		return nil
	}
	if n.Type == "object" {
		for _, key := range listWrapperKeys {
			if inner := listItems(flatten(n.Prop(key))); inner != nil {
				return inner
			}
		}
	}
	return nil
}

func (d *Document) baseURL() string {
	if d == nil {
		return ""
	}
	return d.BaseURL
}
