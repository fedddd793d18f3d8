package openapi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{
  "openapi": "3.0.0",
  "info": {"title": "test", "version": "1.2.3"},
  "servers": [{"url": "https://api.example.com/"}],
  "paths": {
    "/articles": {
      "get": {
        "summary": "Article",
        "tags": ["articles"],
        "responses": {
          "200": {
            "description": "ok",
            "content": {
              "application/json": {
                "schema": {"type": "array", "items": {"$ref": "#/components/schemas/Article"}}
              }
            }
          }
        }
      },
      "post": {
        "operationId": "CreateArticle",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {"$ref": "#/components/schemas/NewArticle"}
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    },
    "/articles/{id}": {
      "parameters": [
        {"name": "id", "in": "path", "required": true, "schema": {"type": "integer"}}
      ],
      "get": {
        "responses": {"200": {"description": "ok"}}
      }
    }
  },
  "components": {
    "schemas": {
      "Article": {
        "type": "object",
        "properties": {
          "id": {"type": "integer"},
          "title": {"type": "string"}
        }
      },
      "NewArticle": {
        "type": "object",
        "required": ["title"],
        "properties": {
          "title": {"type": "string"},
          "status": {"type": "string", "enum": ["draft", "published"]}
        }
      }
    }
  }
}`

func writeTestDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openapi.json")
	require.NoError(t, os.WriteFile(path, []byte(testDocument), 0o644))
	return path
}

func TestLoadAndCollect(t *testing.T) {
	path := writeTestDoc(t)

	doc, err := Load(path)
	require.NoError(t, err)

	normalized, ops, err := Collect(doc)
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", normalized.Version)
	assert.Equal(t, "https://api.example.com", normalized.BaseURL)
	require.Contains(t, normalized.Schemas, "NewArticle")

	require.Len(t, ops, 3)

	list := ops[0]
	assert.Equal(t, "GetArticles", list.OperationID, "missing operationId is synthesized")
	assert.Equal(t, "get", list.Method)
	assert.Equal(t, []string{"articles"}, list.Tags)
	require.Len(t, list.Responses, 1)
	require.NotNil(t, list.Responses[0].Schema)
	assert.Equal(t, "array", list.Responses[0].Schema.Type)
	items := list.Responses[0].Schema.Items
	require.NotNil(t, items, "ref to Article must be resolved")
	require.Len(t, items.Properties, 2)
	assert.Equal(t, "id", items.Properties[0].Name, "properties sorted by name")

	create := ops[1]
	assert.Equal(t, "CreateArticle", create.OperationID)
	require.NotNil(t, create.RequestBody)
	require.Len(t, create.RequestBody.Properties, 2)
	assert.Equal(t, "status", create.RequestBody.Properties[0].Name)
	assert.Equal(t, []any{"draft", "published"}, create.RequestBody.Properties[0].Schema.Enum)
	assert.Equal(t, []string{"title"}, create.RequestBody.Required)

	byID := ops[2]
	assert.Equal(t, "GetArticlesById", byID.OperationID)
	require.Len(t, byID.Parameters, 1)
	assert.Equal(t, "id", byID.Parameters[0].Name)
	assert.Equal(t, "path", byID.Parameters[0].In)
	assert.Equal(t, "integer", byID.Parameters[0].Schema.Type)
}

func TestSynthesizeOperationID(t *testing.T) {
	tests := []struct {
		method string
		path   string
		want   string
	}{
		{"get", "/articles", "GetArticles"},
		{"post", "/articles", "CreateArticles"},
		{"get", "/user-profiles/{userId}", "GetUserProfilesByUserId"},
		{"delete", "/v1/things/{thing_id}", "DeleteV1ThingsByThingId"},
		{"options", "/ping", "CallPing"},
	}
	for _, tt := range tests {
		if got := synthesizeOperationID(tt.method, tt.path); got != tt.want {
			t.Errorf("synthesizeOperationID(%s, %s) = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}

func TestCollectParametersDedupe(t *testing.T) {
	path := writeTestDoc(t)
	doc, err := Load(path)
	require.NoError(t, err)

	// Duplicate declaration on the operation must win over the path item.
	item := doc.Paths.Value("/articles/{id}")
	require.NotNil(t, item)
	op := item.Get
	op.Parameters = append(op.Parameters, item.Parameters...)

	params := collectParameters(item.Parameters, op.Parameters)
	require.Len(t, params, 1)
	assert.Equal(t, "id", params[0].Name)
}
