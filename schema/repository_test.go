package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
)

func petDocument() map[string]any {
	return map[string]any{
		"openapi": "3.0.3",
		"paths": map[string]any{
			"/pets/{petId}": map[string]any{
				"parameters": []any{
					map[string]any{"$ref": "#/components/parameters/PetId"},
				},
				"get": map[string]any{
					"operationId": "showPetById",
					"responses": map[string]any{
						"200": map[string]any{
							"description": "ok",
							"content": map[string]any{
								"application/json": map[string]any{
									"schema": map[string]any{"$ref": "#/components/schemas/Pet"},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]any{
			"parameters": map[string]any{
				"PetId": map[string]any{
					"name":     "petId",
					"in":       "path",
					"required": true,
					"schema":   map[string]any{"type": "integer"},
				},
			},
			"schemas": map[string]any{
				"Pet": map[string]any{
					"type":     "object",
					"required": []any{"name"},
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"tag":  map[string]any{"type": "string", "nullable": true},
						"parent": map[string]any{
							"$ref": "#/components/schemas/Pet",
						},
					},
				},
			},
		},
	}
}

// =============================================================================
// Resolve
// =============================================================================

func TestResolve_InlinesStructuralReferences(t *testing.T) {
	repo := NewRepository(parser.OASVersion30x)
	resolved, err := repo.Resolve(petDocument())
	require.NoError(t, err)

	params, err := Lookup(resolved, "#/paths/~1pets~1{petId}/parameters")
	require.NoError(t, err)
	list := params.([]any)
	require.Len(t, list, 1)
	param := list[0].(map[string]any)
	assert.Equal(t, "petId", param["name"])
	assert.NotContains(t, param, "$ref")
}

func TestResolve_AbsolutizesSchemaReferences(t *testing.T) {
	repo := NewRepository(parser.OASVersion30x)
	resolved, err := repo.Resolve(petDocument())
	require.NoError(t, err)

	s, err := Lookup(resolved, "#/paths/~1pets~1{petId}/get/responses/200/content/application~1json/schema")
	require.NoError(t, err)
	assert.Equal(t, repo.DocumentURI()+"#/components/schemas/Pet", s.(map[string]any)["$ref"])

	parent, err := Lookup(resolved, "#/components/schemas/Pet/properties/parent")
	require.NoError(t, err)
	assert.Equal(t, repo.DocumentURI()+"#/components/schemas/Pet", parent.(map[string]any)["$ref"])
}

func TestResolve_FoldsNullable(t *testing.T) {
	t.Run("3.0 folds", func(t *testing.T) {
		repo := NewRepository(parser.OASVersion30x)
		resolved, err := repo.Resolve(petDocument())
		require.NoError(t, err)
		tag, err := Lookup(resolved, "#/components/schemas/Pet/properties/tag")
		require.NoError(t, err)
		assert.Equal(t, []any{"string", "null"}, tag.(map[string]any)["type"])
	})

	t.Run("3.1 leaves schemas alone", func(t *testing.T) {
		repo := NewRepository(parser.OASVersion31x)
		resolved, err := repo.Resolve(petDocument())
		require.NoError(t, err)
		tag, err := Lookup(resolved, "#/components/schemas/Pet/properties/tag")
		require.NoError(t, err)
		assert.Equal(t, "string", tag.(map[string]any)["type"])
	})
}

func TestResolve_DoesNotModifyInput(t *testing.T) {
	doc := petDocument()
	repo := NewRepository(parser.OASVersion30x)
	_, err := repo.Resolve(doc)
	require.NoError(t, err)

	item := doc["paths"].(map[string]any)["/pets/{petId}"].(map[string]any)
	ref := item["parameters"].([]any)[0].(map[string]any)
	assert.Equal(t, "#/components/parameters/PetId", ref["$ref"])
}

func TestResolve_CircularReference(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.1.0",
		"paths":   map[string]any{},
		"components": map[string]any{
			"parameters": map[string]any{
				"A": map[string]any{"$ref": "#/components/parameters/B"},
				"B": map[string]any{"$ref": "#/components/parameters/A"},
			},
		},
	}
	_, err := NewRepository(parser.OASVersion31x).Resolve(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrInvalidSpec))
}

func TestResolve_UnresolvableReference(t *testing.T) {
	doc := map[string]any{
		"openapi": "3.1.0",
		"paths": map[string]any{
			"/a": map[string]any{"$ref": "#/components/pathItems/Missing"},
		},
	}
	_, err := NewRepository(parser.OASVersion31x).Resolve(doc)
	require.Error(t, err)
	assert.True(t, oaserrors.HasKind(err, oaserrors.KindInvalidSpec))
}

// =============================================================================
// Validator
// =============================================================================

func TestValidator_Primitive(t *testing.T) {
	repo := NewRepository(parser.OASVersion31x)
	v, err := repo.Validator(map[string]any{"type": "integer", "minimum": 1})
	require.NoError(t, err)

	assert.True(t, v.Validate(int64(42)).Valid)
	assert.True(t, v.Validate(float64(3)).Valid)

	res := v.Validate(int64(0))
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)

	res = v.Validate("42")
	assert.False(t, res.Valid)
}

func TestValidator_ReferencesResolvedDocument(t *testing.T) {
	repo := NewRepository(parser.OASVersion30x)
	_, err := repo.Resolve(petDocument())
	require.NoError(t, err)

	v, err := repo.Validator(map[string]any{"$ref": repo.DocumentURI() + "#/components/schemas/Pet"})
	require.NoError(t, err)

	assert.True(t, v.Validate(map[string]any{"name": "rex", "tag": nil}).Valid)
	assert.True(t, v.Validate(map[string]any{
		"name":   "rex",
		"parent": map[string]any{"name": "max"},
	}).Valid)

	res := v.Validate(map[string]any{"tag": "dog"})
	require.False(t, res.Valid)
	require.NotEmpty(t, res.Errors)

	res = v.Validate(map[string]any{"name": "rex", "parent": map[string]any{"name": 5}})
	require.False(t, res.Valid)
	found := false
	for _, d := range res.Errors {
		if d.InstanceLocation == "/parent/name" {
			found = true
		}
	}
	assert.True(t, found, "diagnostics: %v", res.Errors)
}

func TestValidator_ResolvedFollowsReferences(t *testing.T) {
	repo := NewRepository(parser.OASVersion30x)
	doc := petDocument()
	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	schemas["Pets"] = map[string]any{"type": "array", "items": map[string]any{"$ref": "#/components/schemas/Pet"}}
	schemas["PetList"] = map[string]any{"$ref": "#/components/schemas/Pets"}
	schemas["Loop"] = map[string]any{"$ref": "#/components/schemas/Loop"}
	_, err := repo.Resolve(doc)
	require.NoError(t, err)

	v, err := repo.Validator(map[string]any{"$ref": repo.DocumentURI() + "#/components/schemas/PetList"})
	require.NoError(t, err)
	resolved := v.Resolved()
	assert.Equal(t, ShapeArray, ShapeOf(resolved))
	assert.Equal(t, "object", TypeOf(Items(resolved)))
	assert.Equal(t, []string{"name", "parent", "tag"}, PropertyNames(Items(resolved)))
	assert.Equal(t, map[string]any{"$ref": repo.DocumentURI() + "#/components/schemas/PetList"}, v.Raw())

	pet, err := repo.Validator(map[string]any{"$ref": repo.DocumentURI() + "#/components/schemas/Pet"})
	require.NoError(t, err)
	assert.Equal(t, "object", TypeOf(Property(pet.Resolved(), "parent")))

	loop := repo.FollowRef(map[string]any{"$ref": repo.DocumentURI() + "#/components/schemas/Loop"})
	assert.Equal(t, repo.DocumentURI()+"#/components/schemas/Loop", loop["$ref"])

	remote := map[string]any{"$ref": "https://example.com/s.json"}
	assert.Equal(t, remote, repo.FollowRef(remote))
}

func TestValidator_BooleanSchemas(t *testing.T) {
	repo := NewRepository(parser.OASVersion31x)

	yes, err := repo.Validator(true)
	require.NoError(t, err)
	assert.True(t, yes.Validate("anything").Valid)

	no, err := repo.Validator(false)
	require.NoError(t, err)
	assert.False(t, no.Validate("anything").Valid)
}

func TestValidator_DistinctURIs(t *testing.T) {
	repo := NewRepository(parser.OASVersion31x, WithBaseURI("mem://test/"))
	a, err := repo.Validator(map[string]any{"type": "string"})
	require.NoError(t, err)
	b, err := repo.Validator(map[string]any{"type": "string"})
	require.NoError(t, err)

	assert.NotEqual(t, a.URI(), b.URI())
	assert.Contains(t, a.URI(), "mem://test/schemas/")
	assert.Equal(t, "string", a.Raw()["type"])
}

func TestValidator_InvalidSchema(t *testing.T) {
	repo := NewRepository(parser.OASVersion31x)
	_, err := repo.Validator(map[string]any{"type": 12})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrInvalidSpec))
}

func TestValidator_FormatAssertions(t *testing.T) {
	repo := NewRepository(parser.OASVersion31x, WithFormatAssertions(true))
	v, err := repo.Validator(map[string]any{"type": "string", "format": "email"})
	require.NoError(t, err)

	assert.True(t, v.Validate("a@example.com").Valid)
	assert.False(t, v.Validate("not an email").Valid)
}

// =============================================================================
// Lookup
// =============================================================================

func TestLookup(t *testing.T) {
	doc := petDocument()

	t.Run("escaped segments", func(t *testing.T) {
		v, err := Lookup(doc, "#/paths/~1pets~1{petId}/get/operationId")
		require.NoError(t, err)
		assert.Equal(t, "showPetById", v)
	})

	t.Run("percent encoded", func(t *testing.T) {
		v, err := Lookup(doc, "#/paths/~1pets~1%7BpetId%7D/get/operationId")
		require.NoError(t, err)
		assert.Equal(t, "showPetById", v)
	})

	t.Run("remote reference", func(t *testing.T) {
		_, err := Lookup(doc, "other.yaml#/components/schemas/Pet")
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrUnsupportedFeature))
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := Lookup(doc, "#/components/schemas/Nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, oaserrors.ErrInvalidSpec))
	})
}
