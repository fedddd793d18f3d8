package schema

import "testing"

func TestFieldID(t *testing.T) {
	if got := FieldID(ScopeQuery, "email"); got != "query:email" {
		t.Errorf("FieldID = %q, want %q", got, "query:email")
	}
	if got := ScreenID("GetUser"); got != "screen:GetUser" {
		t.Errorf("ScreenID = %q, want %q", got, "screen:GetUser")
	}
}

func TestNormalizeStampsMissingMeta(t *testing.T) {
	s := &ScreenSchema{
		Operation: OperationRef{OperationID: "CreateArticle"},
		Fields: []FieldDescriptor{
			{Name: "title", Type: TypeString},
		},
		QueryParams: []FieldDescriptor{
			{Name: "q", Type: TypeString},
		},
	}

	Normalize(s, ActorAPI, "1.0.0")

	if s.Meta.ID != "screen:CreateArticle" {
		t.Errorf("screen meta id = %q, want %q", s.Meta.ID, "screen:CreateArticle")
	}
	if s.Fields[0].Meta.ID != "body:title" {
		t.Errorf("field meta id = %q, want %q", s.Fields[0].Meta.ID, "body:title")
	}
	if s.QueryParams[0].Meta.ID != "query:q" {
		t.Errorf("query meta id = %q, want %q", s.QueryParams[0].Meta.ID, "query:q")
	}
	if s.Fields[0].Meta.Source != ActorAPI || s.Fields[0].Meta.LastChangedBy != ActorAPI {
		t.Errorf("field meta actors = %+v, want api everywhere", s.Fields[0].Meta)
	}
	if s.Fields[0].Meta.OpenAPIVersion != "1.0.0" {
		t.Errorf("field version = %q, want 1.0.0", s.Fields[0].Meta.OpenAPIVersion)
	}
}

func TestNormalizeLeavesExistingMetaAlone(t *testing.T) {
	s := &ScreenSchema{
		Operation: OperationRef{OperationID: "CreateArticle"},
		Fields: []FieldDescriptor{
			{Name: "title", Meta: NewMeta("body:title", ActorUser, "0.9.0")},
		},
	}

	Normalize(s, ActorAPI, "1.0.0")

	if s.Fields[0].Meta.Source != ActorUser {
		t.Errorf("existing meta was restamped: %+v", s.Fields[0].Meta)
	}
	if s.Fields[0].Meta.OpenAPIVersion != "0.9.0" {
		t.Errorf("existing version was restamped: %q", s.Fields[0].Meta.OpenAPIVersion)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := &ScreenSchema{
		Entity: "Article",
		Fields: []FieldDescriptor{
			{
				Name:    "status",
				Label:   Ptr("Status"),
				Options: []any{"draft", "published"},
			},
		},
		Actions:  Actions{Primary: &ActionDescriptor{Type: "create", Label: "Create"}},
		Response: &ResponseHint{Format: "table", Columns: []ColumnHint{{Key: "id"}}},
	}

	c := s.Clone()
	*c.Fields[0].Label = "Changed"
	c.Fields[0].Options[0] = "mutated"
	c.Actions.Primary.Label = "Changed"
	c.Response.Columns[0].Key = "mutated"

	if *s.Fields[0].Label != "Status" {
		t.Error("label pointer shared between clone and original")
	}
	if s.Fields[0].Options[0] != "draft" {
		t.Error("options slice shared between clone and original")
	}
	if s.Actions.Primary.Label != "Create" {
		t.Error("primary action shared between clone and original")
	}
	if s.Response.Columns[0].Key != "id" {
		t.Error("response columns shared between clone and original")
	}
}

func TestFieldListNilReceiver(t *testing.T) {
	var s *ScreenSchema
	if got := s.FieldList(ScopeBody); got != nil {
		t.Errorf("FieldList on nil receiver = %v, want nil", got)
	}
}

func TestIDForPrefersExistingStamp(t *testing.T) {
	f := FieldDescriptor{Name: "renamed", Meta: NewMeta("body:original", ActorAPI, "1.0.0")}
	if got := IDFor(&f, ScopeBody); got != "body:original" {
		t.Errorf("IDFor = %q, want %q", got, "body:original")
	}
	unstamped := FieldDescriptor{Name: "title"}
	if got := IDFor(&unstamped, ScopeBody); got != "body:title" {
		t.Errorf("IDFor = %q, want %q", got, "body:title")
	}
}
