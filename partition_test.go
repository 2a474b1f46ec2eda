package confgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePublicView(t *testing.T) {
	t.Run("IncludesOnlyPublicPaths", func(t *testing.T) {
		schema := testSchema(t,
			SchemaEntry{Path: "service.url", Type: TypeString, Visibility: Public},
			SchemaEntry{Path: "service.token", Type: TypeString, Visibility: Private},
			SchemaEntry{Path: "debug", Type: TypeBool, Visibility: Public},
		)
		rc := &ResolvedConfig{values: map[string]any{
			"service.url":   "https://x",
			"service.token": "secret",
			"debug":         true,
		}}

		nested, flat, err := derivePublicView(schema, rc)
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"service": map[string]any{"url": "https://x"},
			"debug":   true,
		}, nested)
		assert.NotContains(t, flat, "service.token")
	})

	t.Run("ExclusionBySchemaNotByValue", func(t *testing.T) {
		// The private value is syntactically identical to the public one;
		// it must still be excluded.
		schema := testSchema(t,
			SchemaEntry{Path: "public_key", Type: TypeString, Visibility: Public},
			SchemaEntry{Path: "private_key", Type: TypeString, Visibility: Private},
		)
		rc := &ResolvedConfig{values: map[string]any{
			"public_key":  "same-value",
			"private_key": "same-value",
		}}

		_, flat, err := derivePublicView(schema, rc)
		require.NoError(t, err)
		assert.Contains(t, flat, "public_key")
		assert.NotContains(t, flat, "private_key")
	})

	t.Run("PrivateLeafUnderPublicParentOmitted", func(t *testing.T) {
		schema := testSchema(t,
			SchemaEntry{Path: "service", Type: TypeNested, Visibility: Public},
			SchemaEntry{Path: "service.url", Type: TypeString, Visibility: Public},
			SchemaEntry{Path: "service.token", Type: TypeString, Visibility: Private},
		)
		rc := &ResolvedConfig{values: map[string]any{
			"service.url":   "https://x",
			"service.token": "secret",
		}}

		nested, _, err := derivePublicView(schema, rc)
		require.NoError(t, err)

		service, ok := nested["service"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, service, "url")
		assert.NotContains(t, service, "token", "private leaf is omitted from the nested structure entirely")
	})

	t.Run("GuardViolationAbortsView", func(t *testing.T) {
		schema := testSchema(t,
			SchemaEntry{Path: "ok", Type: TypeString, Visibility: Public},
			SchemaEntry{Path: "bad", Type: TypeString, Visibility: Public},
		)
		rc := &ResolvedConfig{values: map[string]any{
			"ok":  "fine",
			"bad": func() {},
		}}

		nested, flat, err := derivePublicView(schema, rc)
		var boundary *BoundaryViolationError
		require.ErrorAs(t, err, &boundary)
		assert.Equal(t, "bad", boundary.Path)
		assert.Equal(t, ReasonCallable, boundary.Reason)
		assert.Nil(t, nested, "no partial view on violation")
		assert.Nil(t, flat)
	})

	t.Run("ViolationInsideNestedValueCarriesFullPath", func(t *testing.T) {
		schema := testSchema(t,
			SchemaEntry{Path: "payload", Type: TypeString, Visibility: Public},
		)
		rc := &ResolvedConfig{values: map[string]any{
			"payload": map[string]any{"handler": func() {}},
		}}

		_, _, err := derivePublicView(schema, rc)
		var boundary *BoundaryViolationError
		require.ErrorAs(t, err, &boundary)
		assert.Equal(t, "payload.handler", boundary.Path)
	})
}
