package schema

// Actor identifies who produced or last touched a schema node.
type Actor string

const (
	ActorAPI  Actor = "api"
	ActorUser Actor = "user"
)

// Meta is the provenance record attached to the screen and to every field.
// The id is the join key used by the reconciliation engine to align the
// three snapshots; everything else records who created the node, who last
// changed it, and under which API description version.
type Meta struct {
	ID             string `json:"id"`
	Source         Actor  `json:"source"`
	IntroducedBy   Actor  `json:"introducedBy"`
	LastChangedBy  Actor  `json:"lastChangedBy"`
	OpenAPIVersion string `json:"openapiVersion"`
	AutoAdded      bool   `json:"autoAdded,omitempty"`
	UserRemoved    bool   `json:"userRemoved,omitempty"`
}

// IsZero reports whether the node has never been stamped.
func (m Meta) IsZero() bool {
	return m.ID == ""
}

// NewMeta stamps a fresh provenance record. source and introducedBy are
// fixed at creation; lastChangedBy starts out equal to the creator.
func NewMeta(id string, source Actor, openapiVersion string) Meta {
	return Meta{
		ID:             id,
		Source:         source,
		IntroducedBy:   source,
		LastChangedBy:  source,
		OpenAPIVersion: openapiVersion,
	}
}

// Normalize stamps every node of the screen that is missing a Meta record
// and returns the screen. Nodes that already carry a Meta are left alone —
// re-stamping is reserved for the reconciliation engine. Hand-edited
// overlays are normalized with fallback=ActorUser so fields the user added
// by hand are attributed correctly.
func Normalize(s *ScreenSchema, fallback Actor, openapiVersion string) *ScreenSchema {
	if s == nil {
		return nil
	}
	if s.Meta.IsZero() {
		id := ScreenID(s.Operation.OperationID)
		if s.Operation.OperationID == "" {
			id = string(ScopeScreen)
		}
		s.Meta = NewMeta(id, fallback, openapiVersion)
	}
	normalizeFields(s.PathParams, ScopePath, fallback, openapiVersion)
	normalizeFields(s.QueryParams, ScopeQuery, fallback, openapiVersion)
	normalizeFields(s.Fields, ScopeBody, fallback, openapiVersion)
	return s
}

func normalizeFields(fields []FieldDescriptor, scope Scope, fallback Actor, openapiVersion string) {
	for i := range fields {
		if fields[i].Meta.IsZero() {
			fields[i].Meta = NewMeta(FieldID(scope, fields[i].Name), fallback, openapiVersion)
		}
	}
}

// IDFor returns the identity key for a field within a scope, preferring an
// existing stamp over the derived key. Snapshots are independently
// deserialized trees, so identity can never rely on pointer equality.
func IDFor(f *FieldDescriptor, scope Scope) string {
	if !f.Meta.IsZero() {
		return f.Meta.ID
	}
	return FieldID(scope, f.Name)
}
