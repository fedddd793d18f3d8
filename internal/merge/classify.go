package merge

// Decision is the per-field outcome of the three-way diff. The merge walks
// never branch on raw presence flags directly — they go through Classify so
// the full decision table lives in one place.
type Decision int

const (
	// DecisionNone: the field exists in neither the next snapshot nor the
	// overlay. Nothing to do (previous-only fields are already gone).
	DecisionNone Decision = iota

	// DecisionDrop: the overlay still carries the field but the API no
	// longer produces it. Hard delete — no tombstone for API removals.
	DecisionDrop

	// DecisionPreserveRemoved: the overlay marks the field user-removed.
	// Keep the next-generated content as a hidden tombstone.
	DecisionPreserveRemoved

	// DecisionMerge: the field exists in both next and overlay. Full
	// field-level merge, consulting previous for change detection.
	DecisionMerge

	// DecisionTombstone: the field exists in next and existed in previous,
	// but the user deleted it from the overlay. Infer intentional removal.
	DecisionTombstone

	// DecisionAdd: brand-new field introduced by the API.
	DecisionAdd
)

// Classify maps a field's presence across the three snapshots, plus the
// overlay's userRemoved flag, to a merge decision.
func Classify(inNext, inOverlay, inPrevious, userRemoved bool) Decision {
	switch {
	case !inNext && !inOverlay:
		return DecisionNone
	case !inNext:
		return DecisionDrop
	case inOverlay && userRemoved:
		return DecisionPreserveRemoved
	case inOverlay:
		return DecisionMerge
	case inPrevious:
		return DecisionTombstone
	default:
		return DecisionAdd
	}
}

func (d Decision) String() string {
	switch d {
	case DecisionDrop:
		return "drop"
	case DecisionPreserveRemoved:
		return "preserve-removed"
	case DecisionMerge:
		return "merge"
	case DecisionTombstone:
		return "tombstone"
	case DecisionAdd:
		return "add"
	default:
		return "none"
	}
}
