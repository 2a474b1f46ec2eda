package confgate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaRegistration(t *testing.T) {
	t.Run("DuplicateKey", func(t *testing.T) {
		s := NewSchema()
		err := s.Register(
			SchemaEntry{Path: "server.port", Type: TypeNumber, Default: 8080},
			SchemaEntry{Path: "server.port", Type: TypeNumber, Default: 9090},
		)
		var dup *DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "server.port", dup.Path)
	})

	t.Run("PublicChildUnderPrivateParent", func(t *testing.T) {
		s := NewSchema()
		err := s.Register(
			SchemaEntry{Path: "auth", Type: TypeNested, Visibility: Private},
			SchemaEntry{Path: "auth.provider", Type: TypeString, Default: "oidc", Visibility: Public},
		)
		var conflict *VisibilityConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "auth.provider", conflict.Path)
		assert.Equal(t, "auth", conflict.Parent)
	})

	t.Run("PrivateParentRegisteredAfterPublicChild", func(t *testing.T) {
		s := NewSchema()
		require.NoError(t, s.Register(
			SchemaEntry{Path: "auth.provider", Type: TypeString, Default: "oidc", Visibility: Public},
		))
		err := s.Register(SchemaEntry{Path: "auth", Type: TypeNested, Visibility: Private})
		var conflict *VisibilityConflictError
		require.ErrorAs(t, err, &conflict)
	})

	t.Run("PrivateChildUnderPublicParentIsFine", func(t *testing.T) {
		s := NewSchema()
		require.NoError(t, s.Register(
			SchemaEntry{Path: "service", Type: TypeNested, Visibility: Public},
			SchemaEntry{Path: "service.url", Type: TypeString, Default: "http://x", Visibility: Public},
			SchemaEntry{Path: "service.token", Type: TypeString, Default: "t", Visibility: Private},
		))
	})

	t.Run("UnmappableCharacters", func(t *testing.T) {
		s := NewSchema()
		for _, path := range []string{"", "server..port", "server.po-rt", "server.po rt", "sérver.port", ".port"} {
			err := s.Register(SchemaEntry{Path: path, Type: TypeString, Default: "x"})
			var unmappable *UnmappablePathError
			require.ErrorAs(t, err, &unmappable, "path %q should be unmappable", path)
		}
	})

	t.Run("ExternalNameCollision", func(t *testing.T) {
		// "a.b" and "a_b" both derive A_B; the second registration must fail
		// to keep the naming convention invertible.
		s := NewSchema()
		require.NoError(t, s.Register(SchemaEntry{Path: "a.b", Type: TypeString, Default: "x"}))
		err := s.Register(SchemaEntry{Path: "a_b", Type: TypeString, Default: "y"})
		var unmappable *UnmappablePathError
		require.ErrorAs(t, err, &unmappable)
		assert.Equal(t, "a_b", unmappable.Path)
		assert.Equal(t, "a.b", unmappable.Conflict)
	})

	t.Run("NestedEntryRejectsDefault", func(t *testing.T) {
		s := NewSchema()
		err := s.Register(SchemaEntry{Path: "server", Type: TypeNested, Default: 1})
		require.Error(t, err)
	})

	t.Run("FrozenSchemaRejectsRegistration", func(t *testing.T) {
		s := NewSchema()
		require.NoError(t, s.Register(SchemaEntry{Path: "a", Type: TypeString, Default: "x"}))
		s.Freeze()
		err := s.Register(SchemaEntry{Path: "b", Type: TypeString, Default: "y"})
		require.ErrorIs(t, err, ErrSchemaFrozen)

		// Lookup still works after freezing.
		entry, ok := s.Lookup("a")
		require.True(t, ok)
		assert.Equal(t, TypeString, entry.Type)
	})

	t.Run("ZeroVisibilityIsPrivate", func(t *testing.T) {
		s := NewSchema()
		require.NoError(t, s.Register(SchemaEntry{Path: "secret", Type: TypeString, Default: "x"}))
		entry, ok := s.Lookup("secret")
		require.True(t, ok)
		assert.Equal(t, Private, entry.Visibility)
	})
}

func TestSchemaEntriesOrdering(t *testing.T) {
	s := NewSchema()
	require.NoError(t, s.Register(
		SchemaEntry{Path: "z", Type: TypeString, Default: "z"},
		SchemaEntry{Path: "a", Type: TypeString, Default: "a"},
		SchemaEntry{Path: "m.n", Type: TypeString, Default: "m"},
	))

	entries := s.Entries()
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	assert.Equal(t, []string{"a", "m.n", "z"}, paths)
}

func TestEntriesFromStruct(t *testing.T) {
	type Server struct {
		Host string `conf:"host" visibility:"public"`
		Port int    `conf:"port" visibility:"public"`
	}
	type App struct {
		Server Server `conf:"server" visibility:"public"`
		APIKey string `conf:"apikey"`
		Debug  bool   `conf:"debug" visibility:"public"`
		skip   int    // unexported, must be ignored
	}

	app := App{Debug: true}
	app.Server.Host = "localhost"
	app.Server.Port = 8080
	app.APIKey = "secret"

	entries, err := EntriesFromStruct("", app)
	require.NoError(t, err)

	byPath := make(map[string]SchemaEntry, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e
	}

	require.Contains(t, byPath, "server")
	assert.Equal(t, TypeNested, byPath["server"].Type)
	assert.Equal(t, Public, byPath["server"].Visibility)

	assert.Equal(t, TypeString, byPath["server.host"].Type)
	assert.Equal(t, "localhost", byPath["server.host"].Default)

	assert.Equal(t, TypeNumber, byPath["server.port"].Type)
	assert.Equal(t, 8080, byPath["server.port"].Default)

	// Untagged visibility defaults to private.
	assert.Equal(t, Private, byPath["apikey"].Visibility)
	assert.Equal(t, Public, byPath["debug"].Visibility)
	assert.Equal(t, true, byPath["debug"].Default)

	t.Run("RegistersCleanly", func(t *testing.T) {
		s := NewSchema()
		require.NoError(t, s.Register(entries...))
	})

	t.Run("NonStructRejected", func(t *testing.T) {
		_, err := EntriesFromStruct("", 42)
		require.Error(t, err)
	})

	t.Run("VisibilityInheritance", func(t *testing.T) {
		type Private struct {
			Token string `conf:"token"`
		}
		type Root struct {
			Auth Private `conf:"auth"`
		}
		entries, err := EntriesFromStruct("", Root{})
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotEqual(t, Public, e.Visibility, "untagged subtree must stay private: %s", e.Path)
		}
	})
}
