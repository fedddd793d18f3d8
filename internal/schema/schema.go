// Package schema defines the screen-schema data model shared by the
// generator, the reconciliation engine, and the persistence layer. One
// ScreenSchema describes the UI for a single API operation and is persisted
// as a JSON snapshot, so every type here carries stable JSON tags.
package schema

// FieldType is the semantic type of a field, reduced to the form-friendly
// subset of JSON Schema types.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Scope identifies which of the three field lists (or the screen itself)
// a node belongs to. It is the namespace half of a Meta id.
type Scope string

const (
	ScopePath   Scope = "path"
	ScopeQuery  Scope = "query"
	ScopeBody   Scope = "body"
	ScopeScreen Scope = "screen"
)

// FieldID derives the stable identity key for a field. Identity is the join
// key across snapshots — it survives label and other presentation edits,
// which is why it is built from the scope and the wire name rather than
// anything user-editable.
func FieldID(scope Scope, name string) string {
	return string(scope) + ":" + name
}

// ScreenID derives the identity key for the screen node itself.
func ScreenID(operationID string) string {
	return string(ScopeScreen) + ":" + operationID
}

// ScreenKind is the inferred kind of screen: a form or a read-only view,
// qualified by mode (create/edit/filter/readonly).
type ScreenKind struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

const (
	ScreenForm = "form"
	ScreenView = "view"

	ModeCreate   = "create"
	ModeEdit     = "edit"
	ModeFilter   = "filter"
	ModeReadonly = "readonly"
)

// OperationRef identifies the API operation a screen was generated from.
// It is identity-bearing and never user-editable.
type OperationRef struct {
	OperationID string `json:"operationId"`
	Endpoint    string `json:"endpointTemplate"`
	Method      string `json:"httpMethod"`
	BaseURL     string `json:"baseUrl,omitempty"`
	// SubmitWrap is the envelope key the request body must be wrapped in at
	// submit time when the API declares a single-property wrapper object
	// (e.g. {"article": {...}}). The wrapper itself is never exposed as a field.
	SubmitWrap string `json:"submitWrap,omitempty"`
}

// ActionDescriptor describes a screen action. Only the label is
// user-editable.
type ActionDescriptor struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Actions holds the screen's action descriptors.
type Actions struct {
	Primary *ActionDescriptor `json:"primary,omitempty"`
}

// Layout is the screen layout hint consumed by downstream renderers.
type Layout struct {
	Type string `json:"type"`
}

// ColumnHint describes one inferred response table column.
type ColumnHint struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

// ResponseHint captures what the operation's response looks like, so a
// renderer can pick a presentation (currently only "table").
type ResponseHint struct {
	Format  string       `json:"format"`
	Columns []ColumnHint `json:"columns,omitempty"`
}

// FieldDescriptor describes one path parameter, query parameter, or body
// property. Presentation attributes are pointers: a nil pointer means "not
// set", which the reconciliation engine uses to tell user-authored values
// apart from generated defaults.
type FieldDescriptor struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`

	Label        *string `json:"label,omitempty"`
	Placeholder  *string `json:"placeholder,omitempty"`
	Hint         *string `json:"hint,omitempty"`
	Info         *string `json:"info,omitempty"`
	UIHint       *string `json:"uiHint,omitempty"`
	Group        *string `json:"group,omitempty"`
	Hidden       *bool   `json:"hidden,omitempty"`
	Options      []any   `json:"options"`
	DefaultValue any     `json:"defaultValue,omitempty"`

	Meta Meta `json:"meta"`
}

// IsHidden reports the effective visibility of the field.
func (f *FieldDescriptor) IsHidden() bool {
	return f.Hidden != nil && *f.Hidden
}

// IsEnum reports whether the field currently carries enum options.
func (f *FieldDescriptor) IsEnum() bool {
	return f.Options != nil
}

// ScreenSchema is the root artifact for one API operation.
type ScreenSchema struct {
	Meta        Meta              `json:"meta"`
	Entity      string            `json:"entity"`
	Screen      ScreenKind        `json:"screenKind"`
	Description string            `json:"description,omitempty"`
	Layout      Layout            `json:"layout"`
	Operation   OperationRef      `json:"operation"`
	PathParams  []FieldDescriptor `json:"pathParams"`
	QueryParams []FieldDescriptor `json:"queryParams"`
	Fields      []FieldDescriptor `json:"fields"`
	Actions     Actions           `json:"actions"`
	Response    *ResponseHint     `json:"response,omitempty"`
}

// FieldList returns the field list for the given scope. Safe on a nil
// receiver so absent snapshots read as empty lists.
func (s *ScreenSchema) FieldList(scope Scope) []FieldDescriptor {
	if s == nil {
		return nil
	}
	switch scope {
	case ScopePath:
		return s.PathParams
	case ScopeQuery:
		return s.QueryParams
	case ScopeBody:
		return s.Fields
	}
	return nil
}

// Clone returns a deep copy. The reconciliation engine never mutates its
// inputs, so every field that crosses the merge boundary is cloned first.
func (s *ScreenSchema) Clone() *ScreenSchema {
	if s == nil {
		return nil
	}
	out := *s
	out.PathParams = cloneFields(s.PathParams)
	out.QueryParams = cloneFields(s.QueryParams)
	out.Fields = cloneFields(s.Fields)
	if s.Actions.Primary != nil {
		p := *s.Actions.Primary
		out.Actions.Primary = &p
	}
	if s.Response != nil {
		r := *s.Response
		r.Columns = append([]ColumnHint(nil), s.Response.Columns...)
		out.Response = &r
	}
	return &out
}

// Clone returns a deep copy of the field descriptor.
func (f FieldDescriptor) Clone() FieldDescriptor {
	out := f
	out.Label = clonePtr(f.Label)
	out.Placeholder = clonePtr(f.Placeholder)
	out.Hint = clonePtr(f.Hint)
	out.Info = clonePtr(f.Info)
	out.UIHint = clonePtr(f.UIHint)
	out.Group = clonePtr(f.Group)
	out.Hidden = clonePtr(f.Hidden)
	if f.Options != nil {
		out.Options = append([]any(nil), f.Options...)
	}
	return out
}

func cloneFields(fields []FieldDescriptor) []FieldDescriptor {
	if fields == nil {
		return nil
	}
	out := make([]FieldDescriptor, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a convenience for building presentation attributes in place.
func Ptr[T any](v T) *T {
	return &v
}
