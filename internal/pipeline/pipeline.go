// Package pipeline runs the full generation pass: load the API description,
// generate a fresh schema per operation, reconcile against the persisted
// baseline and overlay, persist the results, emit routes and menu, and record
// the decision history.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/screenforge/screenforge/internal/generate"
	"github.com/screenforge/screenforge/internal/history"
	"github.com/screenforge/screenforge/internal/merge"
	"github.com/screenforge/screenforge/internal/openapi"
	"github.com/screenforge/screenforge/internal/project"
	"github.com/screenforge/screenforge/internal/snapshot"
)

// Options configures one generation run.
type Options struct {
	// SpecPath is the OpenAPI document (JSON or YAML).
	SpecPath string
	// OutputDir is the snapshot root (generated/, overlays/, routes.json,
	// menu.json).
	OutputDir string
	// ProjectDir is where screenforge.cue is looked up. Defaults to ".".
	ProjectDir string
	// History receives one run record per reconciled operation. Optional.
	History history.Store
}

// OperationResult is the outcome for one operation.
type OperationResult struct {
	OperationID string
	Decisions   []string
}

// Summary describes a completed run.
type Summary struct {
	DocumentVersion string
	Results         []OperationResult
	Screens         []snapshot.ScreenGroup
	Pruned          []string
	Skipped         []string
}

// Decisions counts log entries across all operations.
func (s *Summary) Decisions() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.Decisions)
	}
	return n
}

// Run executes one generation pass.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		projectDir = "."
	}
	cfg, err := project.Load(projectDir)
	if err != nil {
		return nil, err
	}

	doc, err := openapi.Load(opts.SpecPath)
	if err != nil {
		return nil, err
	}
	normalized, ops, err := openapi.Collect(doc)
	if err != nil {
		return nil, err
	}

	gen := generate.New(cfg)
	store := snapshot.NewStore(opts.OutputDir)
	version := normalized.VersionOrUnknown()

	summary := &Summary{DocumentVersion: version}
	live := make(map[string]bool, len(ops))

	for i := range ops {
		op := &ops[i]
		next, err := gen.Generate(op, normalized)
		if err != nil {
			if errors.Is(err, generate.ErrInvalidOperation) {
				log.Printf("skipping operation: %v", err)
				summary.Skipped = append(summary.Skipped, op.Method+" "+op.Path)
				continue
			}
			return nil, err
		}
		live[op.OperationID] = true

		previous, err := store.LoadGenerated(op.OperationID)
		if err != nil {
			return nil, err
		}
		overlay, err := store.LoadOverlay(op.OperationID)
		if err != nil {
			return nil, err
		}

		res := merge.Reconcile(next, overlay, previous, version)

		if err := store.SaveGenerated(op.OperationID, next); err != nil {
			return nil, err
		}
		if err := store.SaveOverlay(op.OperationID, res.Merged); err != nil {
			return nil, err
		}

		if opts.History != nil && len(res.Log) > 0 {
			run := &history.Run{
				OperationID:     op.OperationID,
				DocumentVersion: version,
				Decisions:       res.Log,
			}
			if err := opts.History.Record(ctx, run); err != nil {
				return nil, fmt.Errorf("recording history for %s: %w", op.OperationID, err)
			}
		}

		summary.Results = append(summary.Results, OperationResult{
			OperationID: op.OperationID,
			Decisions:   res.Log,
		})
		summary.Screens = append(summary.Screens, snapshot.ScreenGroup{
			Schema: res.Merged,
			Group:  op.RouteGroup(),
		})
	}

	pruned, err := store.PruneOrphans(live)
	if err != nil {
		return nil, err
	}
	summary.Pruned = pruned

	routes := snapshot.BuildRoutes(summary.Screens)
	if err := store.SaveRoutes(routes); err != nil {
		return nil, err
	}
	if err := store.SaveMenu(snapshot.BuildMenu(routes)); err != nil {
		return nil, err
	}

	return summary, nil
}
