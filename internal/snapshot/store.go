// Package snapshot persists screen schemas as JSON files. Two trees sit
// under the output root: generated/ holds the machine-written baselines and
// overlays/ holds the user-edited copies. Files are named
// <operationId>.screen.json and written with stable two-space indentation so
// diffs stay readable.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/screenforge/screenforge/internal/schema"
)

const (
	GeneratedDir = "generated"
	OverlayDir   = "overlays"

	fileSuffix = ".screen.json"
)

// Store reads and writes snapshots under a single output root.
type Store struct {
	root string
}

// NewStore returns a store rooted at dir. Directories are created lazily on
// first write.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the output root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) path(tree, operationID string) string {
	return filepath.Join(s.root, tree, operationID+fileSuffix)
}

// LoadGenerated returns the previously generated baseline for an operation,
// or nil when none exists.
func (s *Store) LoadGenerated(operationID string) (*schema.ScreenSchema, error) {
	return s.load(s.path(GeneratedDir, operationID))
}

// LoadOverlay returns the user overlay for an operation, or nil when none
// exists.
func (s *Store) LoadOverlay(operationID string) (*schema.ScreenSchema, error) {
	return s.load(s.path(OverlayDir, operationID))
}

// load treats both a missing file and malformed JSON as an absent snapshot.
// A half-written or hand-mangled file must degrade to first-generation
// behavior, not abort the whole run.
func (s *Store) load(path string) (*schema.ScreenSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	var out schema.ScreenSchema
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil
	}
	return &out, nil
}

// SaveGenerated writes the machine baseline for an operation.
func (s *Store) SaveGenerated(operationID string, sc *schema.ScreenSchema) error {
	return s.writeJSON(s.path(GeneratedDir, operationID), sc)
}

// SaveOverlay writes the overlay for an operation. The generate pipeline
// writes the merged result here so the user always edits the reconciled
// copy.
func (s *Store) SaveOverlay(operationID string, sc *schema.ScreenSchema) error {
	return s.writeJSON(s.path(OverlayDir, operationID), sc)
}

func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// readJSON reads and decodes an artifact file; a missing file leaves v
// untouched. Unlike snapshots, a malformed artifact is a real error.
func (s *Store) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// ListOperationIDs returns the operation ids present in the given tree,
// sorted.
func (s *Store) ListOperationIDs(tree string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, tree))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s snapshots: %w", tree, err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, fileSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}

// PruneOrphans removes snapshots in both trees for operations the current
// document no longer defines. Returns the removed operation ids.
func (s *Store) PruneOrphans(live map[string]bool) ([]string, error) {
	var removed []string
	for _, tree := range []string{GeneratedDir, OverlayDir} {
		ids, err := s.ListOperationIDs(tree)
		if err != nil {
			return removed, err
		}
		for _, id := range ids {
			if live[id] {
				continue
			}
			if err := os.Remove(s.path(tree, id)); err != nil {
				return removed, fmt.Errorf("removing orphan snapshot %s: %w", id, err)
			}
			if tree == GeneratedDir {
				removed = append(removed, id)
			}
		}
	}
	return removed, nil
}
