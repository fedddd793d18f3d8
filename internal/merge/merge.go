// Package merge implements the three-way reconciliation of screen schemas:
// the freshly generated schema (next), the user's persisted overlay, and the
// previously generated baseline. The overlay is authoritative for
// presentation and display order; the next snapshot is authoritative for
// structure. Every discrepancy is resolved by a fixed rule and recorded in a
// decision log — reconciliation never fails on mismatched input.
package merge

import (
	"github.com/screenforge/screenforge/internal/schema"
)

// Decision log codes. Each entry in Result.Log is "<code> <meta id>".
const (
	LogRemovedByAPI        = "REMOVED_BY_API"
	LogPreserveUserRemoved = "PRESERVE_USER_REMOVED"
	LogUserRemovedTomb     = "USER_REMOVED_TOMBSTONE"
	LogAddedByAPI          = "ADDED_BY_API"
	LogOptionalToRequired  = "OPTIONAL_TO_REQUIRED"
	LogRequiredToOptional  = "REQUIRED_TO_OPTIONAL"
	LogTypeChanged         = "TYPE_CHANGED"
	LogEnumToString        = "ENUM_TO_STRING"
	LogStringToEnum        = "STRING_TO_ENUM"
)

// Result is the reconciliation output: the merged schema plus the ordered
// decision log. Re-running with identical inputs yields an identical merged
// tree and an empty log.
type Result struct {
	Merged *schema.ScreenSchema
	Log    []string
}

// Reconcile merges the next-generated schema with the user overlay, using
// the previous-generated schema as a change-detection baseline. overlay and
// previous may be nil; next must not be. Inputs are never mutated.
//
// With no overlay the result is simply the freshly stamped next schema —
// the first-generation case needs no merge.
func Reconcile(next, overlay, previous *schema.ScreenSchema, openapiVersion string) Result {
	nextN := schema.Normalize(next.Clone(), schema.ActorAPI, openapiVersion)

	if overlay == nil {
		return Result{Merged: nextN}
	}

	overlayN := schema.Normalize(overlay.Clone(), schema.ActorUser, openapiVersion)
	var prevN *schema.ScreenSchema
	if previous != nil {
		prevN = schema.Normalize(previous.Clone(), schema.ActorAPI, openapiVersion)
	}

	merged := nextN.Clone()
	var log []string

	// Screen-level attributes use plain overlay-wins-if-present semantics,
	// without the tombstone treatment fields get. The asymmetry is
	// intentional: screen settings like a pinned screen kind encode a
	// deliberate user choice and are low-risk to carry forward.
	if overlayN.Entity != "" {
		merged.Entity = overlayN.Entity
	}
	if overlayN.Screen != (schema.ScreenKind{}) {
		merged.Screen = overlayN.Screen
	}
	if overlayN.Layout != (schema.Layout{}) {
		merged.Layout = overlayN.Layout
	}
	merged.Actions = mergeActions(nextN.Actions, overlayN.Actions)
	merged.Meta = mergeMeta(nextN.Meta, &overlayN.Meta, openapiVersion)

	for _, scope := range []schema.Scope{schema.ScopePath, schema.ScopeQuery, schema.ScopeBody} {
		fields, fieldLog := mergeFieldList(
			nextN.FieldList(scope),
			overlayN.FieldList(scope),
			prevN.FieldList(scope),
			scope,
			openapiVersion,
		)
		switch scope {
		case schema.ScopePath:
			merged.PathParams = fields
		case schema.ScopeQuery:
			merged.QueryParams = fields
		case schema.ScopeBody:
			merged.Fields = fields
		}
		log = append(log, fieldLog...)
	}

	return Result{Merged: merged, Log: log}
}

// mergeActions adopts only the overlay's primary action label; the action
// type stays whatever the generator inferred.
func mergeActions(next, overlay schema.Actions) schema.Actions {
	merged := next
	if next.Primary != nil {
		p := *next.Primary
		merged.Primary = &p
	}
	if overlay.Primary != nil && overlay.Primary.Label != "" {
		if merged.Primary == nil {
			merged.Primary = &schema.ActionDescriptor{}
		}
		merged.Primary.Label = overlay.Primary.Label
	}
	return merged
}

// mergeFieldList reconciles one scope's field list. Two pure passes: the
// overlay walk (the overlay's ordering is authoritative for display order)
// followed by the remaining-next walk, concatenated.
func mergeFieldList(nextFields, overlayFields, prevFields []schema.FieldDescriptor, scope schema.Scope, version string) ([]schema.FieldDescriptor, []string) {
	nextByID := indexByID(nextFields, scope)
	overlayByID := indexByID(overlayFields, scope)
	prevByID := indexByID(prevFields, scope)

	fromOverlay, used, overlayLog := walkOverlay(overlayFields, nextByID, prevByID, scope, version)
	remaining, remainingLog := walkRemaining(nextFields, used, overlayByID, prevByID, scope, version)

	return append(fromOverlay, remaining...), append(overlayLog, remainingLog...)
}

// walkOverlay processes fields in overlay order: dropped-by-API, preserved
// tombstones, and full merges.
func walkOverlay(overlayFields []schema.FieldDescriptor, nextByID, prevByID map[string]*schema.FieldDescriptor, scope schema.Scope, version string) ([]schema.FieldDescriptor, map[string]bool, []string) {
	var result []schema.FieldDescriptor
	var log []string
	used := make(map[string]bool, len(overlayFields))

	for i := range overlayFields {
		ov := &overlayFields[i]
		id := schema.IDFor(ov, scope)
		used[id] = true

		next := nextByID[id]
		prev := prevByID[id]

		switch Classify(next != nil, true, prev != nil, ov.Meta.UserRemoved) {
		case DecisionDrop:
			// The API no longer produces this field. Hard delete — no
			// tombstones for fields the API itself removed.
			log = append(log, LogRemovedByAPI+" "+id)

		case DecisionPreserveRemoved:
			result = append(result, tombstone(next, &ov.Meta, version))
			// A stable tombstone re-merging against itself is not a
			// decision; only log when the overlay had not settled yet.
			if !ov.IsHidden() {
				log = append(log, LogPreserveUserRemoved+" "+id)
			}

		case DecisionMerge:
			merged, transitions := mergeField(next, ov, prev, version)
			result = append(result, merged)
			log = append(log, transitions...)
		}
	}
	return result, used, log
}

// walkRemaining processes next-generated fields with no overlay entry:
// inferred user removals (tombstones) and brand-new API fields.
func walkRemaining(nextFields []schema.FieldDescriptor, used map[string]bool, overlayByID, prevByID map[string]*schema.FieldDescriptor, scope schema.Scope, version string) ([]schema.FieldDescriptor, []string) {
	var result []schema.FieldDescriptor
	var log []string

	for i := range nextFields {
		next := &nextFields[i]
		id := schema.IDFor(next, scope)
		if used[id] {
			continue
		}
		prev := prevByID[id]

		switch Classify(true, overlayByID[id] != nil, prev != nil, false) {
		case DecisionTombstone:
			// Present in previous but absent from the overlay: the user
			// deleted it on a prior edit. Keep it hidden rather than let an
			// omission destroy data the API still produces.
			result = append(result, tombstone(next, &prev.Meta, version))
			log = append(log, LogUserRemovedTomb+" "+id)

		case DecisionAdd:
			added := next.Clone()
			autoAdded := !next.Required
			if autoAdded {
				// New optional fields stay invisible until the user opts
				// in; new required fields must surface immediately.
				added.Hidden = schema.Ptr(true)
			}
			added.Meta = mergeMeta(next.Meta, nil, version)
			added.Meta.AutoAdded = autoAdded
			added.Meta.UserRemoved = false
			result = append(result, added)
			log = append(log, LogAddedByAPI+" "+id)
		}
	}
	return result, log
}

// tombstone keeps the next-generated field's authoritative content but
// forces it hidden and marks it user-removed.
func tombstone(next *schema.FieldDescriptor, userMeta *schema.Meta, version string) schema.FieldDescriptor {
	out := next.Clone()
	out.Hidden = schema.Ptr(true)
	out.Meta = mergeMeta(next.Meta, userMeta, version)
	out.Meta.UserRemoved = true
	out.Meta.LastChangedBy = schema.ActorUser
	out.Meta.AutoAdded = false
	return out
}

// mergeField merges a matched next/overlay pair, consulting previous for
// required/type/enum transition detection. Returns the merged field and any
// transition log entries.
func mergeField(next, ov, prev *schema.FieldDescriptor, version string) (schema.FieldDescriptor, []string) {
	merged := next.Clone()
	meta := mergeMeta(next.Meta, &ov.Meta, version)
	var log []string

	// Presentation attributes: the overlay wins whenever it defines them.
	if ov.Label != nil {
		merged.Label = schema.Ptr(*ov.Label)
	}
	if ov.Placeholder != nil {
		merged.Placeholder = schema.Ptr(*ov.Placeholder)
	}
	if ov.Hint != nil {
		merged.Hint = schema.Ptr(*ov.Hint)
	}
	if ov.Info != nil {
		merged.Info = schema.Ptr(*ov.Info)
	}
	if ov.UIHint != nil {
		merged.UIHint = schema.Ptr(*ov.UIHint)
	}
	if ov.Group != nil {
		merged.Group = schema.Ptr(*ov.Group)
	}
	if ov.Hidden != nil {
		merged.Hidden = schema.Ptr(*ov.Hidden)
	}

	if prev != nil && prev.Required != next.Required {
		if next.Required {
			// A newly required field cannot stay hidden, whatever the
			// overlay said before the contract changed.
			merged.Hidden = schema.Ptr(false)
			log = append(log, LogOptionalToRequired+" "+meta.ID)
		} else {
			log = append(log, LogRequiredToOptional+" "+meta.ID)
		}
	}

	if prev != nil && prev.Type != next.Type {
		// The ui hint may no longer apply to the new type.
		merged.UIHint = nil
		merged.Options = cloneOptions(next.Options)
		log = append(log, LogTypeChanged+" "+meta.ID)
	}

	prevEnum := prev != nil && prev.IsEnum()
	nextEnum := next.IsEnum()
	if prevEnum && !nextEnum {
		merged.Options = nil
		log = append(log, LogEnumToString+" "+meta.ID)
	}
	if !prevEnum && nextEnum {
		merged.Options = cloneOptions(next.Options)
		log = append(log, LogStringToEnum+" "+meta.ID)
	}

	merged.Meta = meta
	return merged, log
}

// mergeMeta recomputes a node's provenance. The overlay is authoritative for
// who touched the node; the version is always restamped to the current
// merge. autoAdded and userRemoved accumulate (true in either snapshot stays
// true) so a re-merge of an already-merged overlay is a fixed point.
func mergeMeta(next schema.Meta, overlay *schema.Meta, version string) schema.Meta {
	base := next
	if base.IsZero() && overlay != nil {
		base = *overlay
	}
	base.OpenAPIVersion = version
	if overlay != nil && !overlay.IsZero() {
		if overlay.Source != "" {
			base.Source = overlay.Source
		}
		if overlay.IntroducedBy != "" {
			base.IntroducedBy = overlay.IntroducedBy
		}
		if overlay.LastChangedBy != "" {
			base.LastChangedBy = overlay.LastChangedBy
		}
		base.UserRemoved = overlay.UserRemoved || base.UserRemoved
		base.AutoAdded = overlay.AutoAdded || base.AutoAdded
	}
	return base
}

func indexByID(fields []schema.FieldDescriptor, scope schema.Scope) map[string]*schema.FieldDescriptor {
	m := make(map[string]*schema.FieldDescriptor, len(fields))
	for i := range fields {
		m[schema.IDFor(&fields[i], scope)] = &fields[i]
	}
	return m
}

func cloneOptions(opts []any) []any {
	if opts == nil {
		return nil
	}
	return append([]any(nil), opts...)
}
