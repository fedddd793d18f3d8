// Package project loads the optional screenforge.cue project configuration:
// entity display overrides, label abbreviations, and per-operation screen
// pins. The file is CUE so overrides are validated and composable; a missing
// file yields a zero-value config.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// ConfigFile is the expected file name in the project root.
const ConfigFile = "screenforge.cue"

// ScreenPin forces a screen kind for one operation, overriding inference.
type ScreenPin struct {
	Type string
	Mode string
}

// Config holds project-level generation overrides.
type Config struct {
	// Entities maps a lowercased inferred entity name to its display name.
	Entities map[string]string
	// Abbreviations maps a lowercased label word to its preferred casing
	// (e.g. "id" -> "ID"). Merged over the built-in table.
	Abbreviations map[string]string
	// Screens maps an operationId to a pinned screen kind.
	Screens map[string]ScreenPin
}

// EntityDisplay returns the configured display name for entity, or "".
func (c *Config) EntityDisplay(entity string) string {
	if c == nil {
		return ""
	}
	return c.Entities[lower(entity)]
}

// ScreenPinFor returns the pinned screen kind for an operation, if any.
func (c *Config) ScreenPinFor(operationID string) (ScreenPin, bool) {
	if c == nil {
		return ScreenPin{}, false
	}
	pin, ok := c.Screens[operationID]
	return pin, ok
}

// Load reads screenforge.cue from dir. A missing file is not an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	ctx := cuecontext.New()
	insts := load.Instances([]string{"./" + ConfigFile}, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, fmt.Errorf("no CUE instances found for %s", path)
	}
	if insts[0].Err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, insts[0].Err)
	}
	val := ctx.BuildInstance(insts[0])
	if val.Err() != nil {
		return nil, fmt.Errorf("building %s: %w", path, val.Err())
	}

	return parse(val)
}

func parse(val cue.Value) (*Config, error) {
	cfg := &Config{
		Entities:      make(map[string]string),
		Abbreviations: make(map[string]string),
		Screens:       make(map[string]ScreenPin),
	}

	if ents := val.LookupPath(cue.ParsePath("entities")); ents.Err() == nil {
		iter, _ := ents.Fields()
		for iter.Next() {
			name := iter.Selector().String()
			if dn := iter.Value().LookupPath(cue.ParsePath("display")); dn.Err() == nil {
				if s, err := dn.String(); err == nil {
					cfg.Entities[lower(name)] = s
				}
			}
		}
	}

	if abbr := val.LookupPath(cue.ParsePath("abbreviations")); abbr.Err() == nil {
		iter, _ := abbr.Fields()
		for iter.Next() {
			word := iter.Selector().String()
			if s, err := iter.Value().String(); err == nil {
				cfg.Abbreviations[lower(word)] = s
			}
		}
	}

	if screens := val.LookupPath(cue.ParsePath("screens")); screens.Err() == nil {
		iter, _ := screens.Fields()
		for iter.Next() {
			opID := iter.Selector().String()
			var pin ScreenPin
			if v := iter.Value().LookupPath(cue.ParsePath("type")); v.Err() == nil {
				pin.Type, _ = v.String()
			}
			if v := iter.Value().LookupPath(cue.ParsePath("mode")); v.Err() == nil {
				pin.Mode, _ = v.String()
			}
			if pin.Type != "" {
				cfg.Screens[opID] = pin
			}
		}
	}

	return cfg, nil
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
