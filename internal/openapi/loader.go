// Package openapi loads an OpenAPI 3 description and normalizes it into the
// operation model the generator consumes: refs resolved, parameters
// deduplicated, operation ids synthesized where the document omits them, and
// schemas converted into self-contained nodes with deterministic property
// order.
package openapi

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/screenforge/screenforge/internal/generate"
)

// Load reads and ref-resolves an OpenAPI document from path (JSON or YAML).
func Load(path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading openapi document %s: %w", path, err)
	}
	return doc, nil
}

// Fixed iteration order over HTTP methods, so the emitted operation list is
// stable run to run.
var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS", "TRACE"}

// Collect walks the document and returns its normalized form: the document
// identity plus one Operation per path+method pair, in deterministic order.
func Collect(doc *openapi3.T) (*generate.Document, []generate.Operation, error) {
	if doc == nil || doc.Paths == nil {
		return nil, nil, fmt.Errorf("openapi document has no paths")
	}

	out := &generate.Document{
		Schemas: make(map[string]*generate.SchemaNode),
	}
	if doc.Info != nil {
		out.Version = doc.Info.Version
	}
	if len(doc.Servers) > 0 {
		out.BaseURL = strings.TrimSuffix(doc.Servers[0].URL, "/")
	}
	if doc.Components != nil {
		for name, ref := range doc.Components.Schemas {
			out.Schemas[name] = convertSchema(ref, 0)
		}
	}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var ops []generate.Operation
	seen := make(map[string]int)
	for _, path := range paths {
		item := pathMap[path]
		if item == nil {
			continue
		}
		opsByMethod := item.Operations()
		for _, method := range methodOrder {
			op := opsByMethod[method]
			if op == nil {
				continue
			}
			ops = append(ops, collectOperation(method, path, item, op, seen))
		}
	}
	return out, ops, nil
}

func collectOperation(method, path string, item *openapi3.PathItem, op *openapi3.Operation, seen map[string]int) generate.Operation {
	lower := strings.ToLower(method)
	id := op.OperationID
	if id == "" {
		id = synthesizeOperationID(lower, path)
	}
	// A duplicated id (declared or synthesized) gets a numeric suffix so
	// snapshot file names never collide.
	seen[id]++
	if n := seen[id]; n > 1 {
		id += strconv.Itoa(n)
	}

	o := generate.Operation{
		OperationID: id,
		Method:      lower,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        append([]string(nil), op.Tags...),
		Parameters:  collectParameters(item.Parameters, op.Parameters),
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if mt := op.RequestBody.Value.Content.Get("application/json"); mt != nil {
			o.RequestBody = convertSchema(mt.Schema, 0)
		}
	}

	if op.Responses != nil {
		respMap := op.Responses.Map()
		statuses := make([]string, 0, len(respMap))
		for s := range respMap {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		for _, status := range statuses {
			ref := respMap[status]
			if ref == nil || ref.Value == nil {
				continue
			}
			var node *generate.SchemaNode
			if mt := ref.Value.Content.Get("application/json"); mt != nil {
				node = convertSchema(mt.Schema, 0)
			}
			o.Responses = append(o.Responses, generate.Response{Status: status, Schema: node})
		}
	}
	return o
}

// collectParameters merges path-item and operation parameters, deduplicated
// by in:name with the operation-level declaration winning.
func collectParameters(shared, own openapi3.Parameters) []generate.Parameter {
	byKey := make(map[string]int)
	var out []generate.Parameter

	add := func(refs openapi3.Parameters) {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			p := ref.Value
			conv := generate.Parameter{
				Name:        p.Name,
				In:          p.In,
				Required:    p.Required,
				Description: p.Description,
				Schema:      convertSchema(p.Schema, 0),
			}
			key := p.In + ":" + p.Name
			if i, ok := byKey[key]; ok {
				out[i] = conv
				continue
			}
			byKey[key] = len(out)
			out = append(out, conv)
		}
	}
	add(shared)
	add(own)
	return out
}

// synthesizeOperationID builds an id like GetUserByUserId from the method
// and path when the document declares none.
func synthesizeOperationID(method, path string) string {
	verb := map[string]string{
		"get":    "Get",
		"post":   "Create",
		"put":    "Update",
		"patch":  "Patch",
		"delete": "Delete",
	}[method]
	if verb == "" {
		verb = "Call"
	}

	var b strings.Builder
	b.WriteString(verb)
	for _, part := range strings.Split(path, "/") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			b.WriteString("By")
			b.WriteString(pascal(part[1 : len(part)-1]))
			continue
		}
		b.WriteString(pascal(part))
	}
	return b.String()
}

func pascal(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	})
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// maxSchemaDepth bounds recursion over pathological or cyclic schemas.
const maxSchemaDepth = 24

// convertSchema turns a resolved kin-openapi schema into a self-contained
// node. Properties are sorted by name; map iteration order must never leak
// into generated output.
func convertSchema(ref *openapi3.SchemaRef, depth int) *generate.SchemaNode {
	if ref == nil || ref.Value == nil || depth > maxSchemaDepth {
		return nil
	}
	s := ref.Value

	node := &generate.SchemaNode{
		Type:     primaryType(s.Type),
		Required: append([]string(nil), s.Required...),
		Enum:     append([]any(nil), s.Enum...),
		Default:  s.Default,
		Example:  s.Example,
	}
	if len(node.Enum) == 0 {
		node.Enum = nil
	}

	if len(s.Properties) > 0 {
		names := make([]string, 0, len(s.Properties))
		for name := range s.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			node.Properties = append(node.Properties, generate.Property{
				Name:   name,
				Schema: convertSchema(s.Properties[name], depth+1),
			})
		}
		if node.Type == "" {
			node.Type = "object"
		}
	}

	node.Items = convertSchema(s.Items, depth+1)
	if node.Type == "" && node.Items != nil {
		node.Type = "array"
	}

	for _, branch := range s.AllOf {
		node.AllOf = append(node.AllOf, convertSchema(branch, depth+1))
	}
	for _, branch := range s.AnyOf {
		node.AnyOf = append(node.AnyOf, convertSchema(branch, depth+1))
	}
	for _, branch := range s.OneOf {
		node.OneOf = append(node.OneOf, convertSchema(branch, depth+1))
	}

	if s.AdditionalProperties.Has != nil && *s.AdditionalProperties.Has {
		node.HasAdditional = true
	}
	if s.AdditionalProperties.Schema != nil {
		node.HasAdditional = true
	}
	return node
}

func primaryType(t *openapi3.Types) string {
	if t == nil {
		return ""
	}
	for _, v := range t.Slice() {
		if v != "null" {
			return v
		}
	}
	return ""
}
