package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/screenforge/screenforge/internal/schema"
)

func testScreen(opID string) *schema.ScreenSchema {
	return &schema.ScreenSchema{
		Meta:   schema.NewMeta("screen:"+opID, schema.ActorAPI, "1.0.0"),
		Entity: "Article",
		Screen: schema.ScreenKind{Type: schema.ScreenForm, Mode: schema.ModeCreate},
		Operation: schema.OperationRef{
			OperationID: opID,
			Endpoint:    "/articles",
			Method:      "post",
		},
		Fields: []schema.FieldDescriptor{
			{
				Name:     "title",
				Type:     schema.TypeString,
				Required: true,
				Label:    schema.Ptr("Title"),
				Meta:     schema.NewMeta("body:title", schema.ActorAPI, "1.0.0"),
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	in := testScreen("CreateArticle")
	if err := store.SaveOverlay("CreateArticle", in); err != nil {
		t.Fatalf("SaveOverlay: %v", err)
	}

	out, err := store.LoadOverlay("CreateArticle")
	if err != nil {
		t.Fatalf("LoadOverlay: %v", err)
	}
	if out == nil {
		t.Fatal("LoadOverlay returned nil for existing snapshot")
	}
	if out.Entity != "Article" || len(out.Fields) != 1 {
		t.Errorf("round trip mangled schema: %+v", out)
	}
	if *out.Fields[0].Label != "Title" {
		t.Errorf("label = %q, want Title", *out.Fields[0].Label)
	}
	if out.Fields[0].Meta.ID != "body:title" {
		t.Errorf("meta id = %q, want body:title", out.Fields[0].Meta.ID)
	}
}

func TestStoreMissingSnapshotIsNil(t *testing.T) {
	store := NewStore(t.TempDir())
	got, err := store.LoadGenerated("Nope")
	if err != nil {
		t.Fatalf("LoadGenerated: %v", err)
	}
	if got != nil {
		t.Errorf("missing snapshot = %+v, want nil", got)
	}
}

func TestStoreMalformedSnapshotIsNil(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	path := filepath.Join(dir, OverlayDir, "Broken.screen.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadOverlay("Broken")
	if err != nil {
		t.Fatalf("LoadOverlay: %v", err)
	}
	if got != nil {
		t.Errorf("malformed snapshot = %+v, want nil", got)
	}
}

func TestStoreWritesTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	if err := store.SaveGenerated("CreateArticle", testScreen("CreateArticle")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, GeneratedDir, "CreateArticle.screen.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Error("snapshot file missing trailing newline")
	}
	if !strings.Contains(string(data), "  \"entity\": \"Article\"") {
		t.Error("snapshot not written with two-space indentation")
	}
}

func TestPruneOrphans(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, id := range []string{"Keep", "Drop"} {
		if err := store.SaveGenerated(id, testScreen(id)); err != nil {
			t.Fatal(err)
		}
		if err := store.SaveOverlay(id, testScreen(id)); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.PruneOrphans(map[string]bool{"Keep": true})
	if err != nil {
		t.Fatalf("PruneOrphans: %v", err)
	}
	if len(removed) != 1 || removed[0] != "Drop" {
		t.Errorf("removed = %v, want [Drop]", removed)
	}

	ids, err := store.ListOperationIDs(OverlayDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != "Keep" {
		t.Errorf("overlay ids after prune = %v, want [Keep]", ids)
	}
}

func TestBuildRoutesAndMenu(t *testing.T) {
	screens := []ScreenGroup{
		{Schema: screenFor("ListArticles", "Article"), Group: "articles"},
		{Schema: screenFor("GetUserByUserId", "User"), Group: "users"},
		{Schema: screenFor("CallPing", "Ping"), Group: ""},
	}

	routes := BuildRoutes(screens)
	if len(routes) != 3 {
		t.Fatalf("routes = %d, want 3", len(routes))
	}
	if routes[0].Path != "/call-ping" {
		t.Errorf("routes[0].Path = %q, want /call-ping", routes[0].Path)
	}
	if routes[1].Path != "/get-user-by-user-id" {
		t.Errorf("routes[1].Path = %q, want /get-user-by-user-id", routes[1].Path)
	}

	menu := BuildMenu(routes)
	if len(menu) != 3 {
		t.Fatalf("menu groups = %d, want 3", len(menu))
	}
	if menu[0].ID != "articles" || menu[1].ID != "users" {
		t.Errorf("group ids = %q, %q", menu[0].ID, menu[1].ID)
	}
	last := menu[len(menu)-1]
	if last.ID != "ungrouped" || len(last.Routes) != 1 {
		t.Errorf("ungrouped bucket = %+v", last)
	}
}

func TestRoutesMenuRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())
	routes := BuildRoutes([]ScreenGroup{{Schema: screenFor("ListArticles", "Article"), Group: "articles"}})

	if err := store.SaveRoutes(routes); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveMenu(BuildMenu(routes)); err != nil {
		t.Fatal(err)
	}

	gotRoutes, err := store.LoadRoutes()
	if err != nil {
		t.Fatal(err)
	}
	if len(gotRoutes) != 1 || gotRoutes[0].OperationID != "ListArticles" {
		t.Errorf("routes round trip = %+v", gotRoutes)
	}
	gotMenu, err := store.LoadMenu()
	if err != nil {
		t.Fatal(err)
	}
	if len(gotMenu) != 1 || gotMenu[0].ID != "articles" {
		t.Errorf("menu round trip = %+v", gotMenu)
	}
}

func screenFor(opID, entity string) *schema.ScreenSchema {
	s := testScreen(opID)
	s.Entity = entity
	s.Operation.OperationID = opID
	return s
}
