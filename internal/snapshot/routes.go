package snapshot

import (
	"sort"
	"strings"

	"github.com/screenforge/screenforge/internal/schema"
)

// Route is one navigable screen entry in routes.json.
type Route struct {
	Path        string `json:"path"`
	OperationID string `json:"operationId"`
	Entity      string `json:"entity"`
	Screen      string `json:"screen"`
	Group       string `json:"group,omitempty"`
}

// MenuGroup is one navigation bucket in menu.json.
type MenuGroup struct {
	ID     string     `json:"id"`
	Label  string     `json:"label"`
	Routes []MenuItem `json:"routes"`
}

// MenuItem is one entry inside a menu group.
type MenuItem struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// ScreenGroup pairs a merged schema with its navigation group, as resolved
// from the source operation (first tag, else first path segment).
type ScreenGroup struct {
	Schema *schema.ScreenSchema
	Group  string
}

// BuildRoutes derives the route table from the merged screens, sorted by
// route path for stable output.
func BuildRoutes(screens []ScreenGroup) []Route {
	routes := make([]Route, 0, len(screens))
	for _, sg := range screens {
		sc := sg.Schema
		routes = append(routes, Route{
			Path:        routePath(sc.Operation.OperationID),
			OperationID: sc.Operation.OperationID,
			Entity:      sc.Entity,
			Screen:      sc.Screen.Type + "/" + sc.Screen.Mode,
			Group:       sg.Group,
		})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	return routes
}

// BuildMenu buckets routes by group. Groups are sorted by label; screens
// with no group land in a trailing "ungrouped" bucket.
func BuildMenu(routes []Route) []MenuGroup {
	byGroup := make(map[string][]MenuItem)
	for _, r := range routes {
		byGroup[r.Group] = append(byGroup[r.Group], MenuItem{
			Path:  r.Path,
			Label: r.Entity,
		})
	}

	labels := make([]string, 0, len(byGroup))
	for g := range byGroup {
		if g != "" {
			labels = append(labels, g)
		}
	}
	sort.Strings(labels)

	var menu []MenuGroup
	for _, label := range labels {
		menu = append(menu, MenuGroup{
			ID:     kebab(label),
			Label:  label,
			Routes: byGroup[label],
		})
	}
	if ungrouped := byGroup[""]; len(ungrouped) > 0 {
		menu = append(menu, MenuGroup{ID: "ungrouped", Label: "Other", Routes: ungrouped})
	}
	return menu
}

// SaveRoutes writes routes.json at the output root.
func (s *Store) SaveRoutes(routes []Route) error {
	return s.writeJSON(s.routesPath(), routes)
}

// SaveMenu writes menu.json at the output root.
func (s *Store) SaveMenu(menu []MenuGroup) error {
	return s.writeJSON(s.menuPath(), menu)
}

// LoadRoutes reads routes.json, or nil when it has not been generated yet.
func (s *Store) LoadRoutes() ([]Route, error) {
	var routes []Route
	if err := s.readJSON(s.routesPath(), &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// LoadMenu reads menu.json, or nil when it has not been generated yet.
func (s *Store) LoadMenu() ([]MenuGroup, error) {
	var menu []MenuGroup
	if err := s.readJSON(s.menuPath(), &menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func (s *Store) routesPath() string { return s.root + "/routes.json" }
func (s *Store) menuPath() string   { return s.root + "/menu.json" }

func routePath(operationID string) string {
	return "/" + kebab(operationID)
}

// kebab lowercases and hyphenates a camel or spaced identifier.
func kebab(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == ' ' || r == '_' || r == '/':
			b.WriteByte('-')
			prevLower = false
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	return strings.Trim(b.String(), "-")
}
