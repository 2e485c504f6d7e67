package vars

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrecedence(t *testing.T) {
	s := NewStore()
	s.Set("name", String("define"), LayerDefine)
	assert.Equal(t, "define", mustResolve(t, s, "name").String())

	s.Set("name", String("persistent"), LayerPersistent)
	assert.Equal(t, "persistent", mustResolve(t, s, "name").String())

	s.AddConfig(map[string]any{"name": "config1"})
	assert.Equal(t, "config1", mustResolve(t, s, "name").String())

	s.AddConfig(map[string]any{"name": "config2"})
	assert.Equal(t, "config2", mustResolve(t, s, "name").String(),
		"later-declared config should win")

	s.Set("name", String("suite"), LayerSuite)
	assert.Equal(t, "suite", mustResolve(t, s, "name").String())

	s.SetRow(map[string]any{"name": "row"})
	assert.Equal(t, "row", mustResolve(t, s, "name").String())

	s.Set("name", String("override"), LayerOverride)
	assert.Equal(t, "override", mustResolve(t, s, "name").String())
}

func TestResolveNotFound(t *testing.T) {
	s := NewStore()
	v, ok := s.Resolve("missing")
	assert.False(t, ok)
	assert.True(t, v.IsNull())
}

func TestSetDoesNotCascade(t *testing.T) {
	s := NewStore()
	s.Set("token", String("captured"), LayerPersistent)

	_, inRow := s.row["token"]
	assert.False(t, inRow)
	assert.Equal(t, "captured", mustResolve(t, s, "token").String())
}

func TestRowLifecycle(t *testing.T) {
	s := NewStore()
	s.SetRow(map[string]any{"email": "row@example.com"})
	assert.Equal(t, "row@example.com", mustResolve(t, s, "email").String())

	s.ClearRow()
	_, ok := s.Resolve("email")
	assert.False(t, ok)
}

func TestRowShadowsPersistent(t *testing.T) {
	s := NewStore()
	s.Set("user_id", Number(7), LayerPersistent)
	s.SetRow(map[string]any{"user_id": 42})
	assert.Equal(t, float64(42), mustResolve(t, s, "user_id").Raw())

	s.ClearRow()
	assert.Equal(t, float64(7), mustResolve(t, s, "user_id").Raw())
}

func TestSnapshotFlattens(t *testing.T) {
	s := NewStore()
	s.Set("a", String("define-a"), LayerDefine)
	s.Set("b", String("persistent-b"), LayerPersistent)
	s.AddConfig(map[string]any{"b": "config-b", "c": "config-c"})
	s.Set("c", String("suite-c"), LayerSuite)

	snap := s.Snapshot()
	assert.Equal(t, "define-a", snap["a"].String())
	assert.Equal(t, "config-b", snap["b"].String())
	assert.Equal(t, "suite-c", snap["c"].String())
}

func TestValueKinds(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind Kind
		str  string
	}{
		{"string", "hello", KindString, "hello"},
		{"int", 42, KindNumber, "42"},
		{"float", 3.5, KindNumber, "3.5"},
		{"bool", true, KindBool, "true"},
		{"nil", nil, KindNull, ""},
		{"map", map[string]any{"k": "v"}, KindStructured, `{"k":"v"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := From(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.str, v.String())
		})
	}
}

func mustResolve(t *testing.T, s *Store, name string) Value {
	t.Helper()
	v, ok := s.Resolve(name)
	require.True(t, ok, "variable %q should resolve", name)
	return v
}
