package template

import (
	"fmt"
	"testing"

	"github.com/imhmg/purl/packages/fake"
	"github.com/imhmg/purl/packages/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(values map[string]any) *Resolver {
	store := vars.NewStore()
	store.SetAll(values, vars.LayerSuite)
	return NewResolver(store, fake.New())
}

func TestResolveSimple(t *testing.T) {
	r := newTestResolver(map[string]any{"base_url": "https://api.test"})

	out, err := r.ResolveString("${base_url}/users")
	require.NoError(t, err)
	assert.Equal(t, "https://api.test/users", out)
}

func TestResolveNoPlaceholders(t *testing.T) {
	r := newTestResolver(nil)
	out, err := r.ResolveString("plain text")
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestWholeValueKeepsType(t *testing.T) {
	r := newTestResolver(map[string]any{
		"port":    8080,
		"enabled": true,
	})

	out, err := r.Resolve("${port}")
	require.NoError(t, err)
	assert.Equal(t, float64(8080), out)

	out, err = r.Resolve("${enabled}")
	require.NoError(t, err)
	assert.Equal(t, true, out)

	// Embedded in a larger string the value is textual.
	str, err := r.ResolveString("port=${port}")
	require.NoError(t, err)
	assert.Equal(t, "port=8080", str)
}

func TestVariableReferencesVariable(t *testing.T) {
	r := newTestResolver(map[string]any{
		"greeting": "hello ${name}",
		"name":     "X",
	})

	out, err := r.ResolveString("${greeting}")
	require.NoError(t, err)
	assert.Equal(t, "hello X", out)
}

func TestChainOfTenResolves(t *testing.T) {
	values := map[string]any{"v10": "X"}
	for i := 1; i < 10; i++ {
		values[fmt.Sprintf("v%d", i)] = fmt.Sprintf("${v%d}", i+1)
	}
	r := newTestResolver(values)

	out, err := r.ResolveString("${v1}")
	require.NoError(t, err)
	assert.Equal(t, "X", out)
}

func TestChainOfElevenIsFatal(t *testing.T) {
	values := map[string]any{"v11": "X"}
	for i := 1; i < 11; i++ {
		values[fmt.Sprintf("v%d", i)] = fmt.Sprintf("${v%d}", i+1)
	}
	r := newTestResolver(values)

	_, err := r.ResolveString("${v1}")
	var cyclic *CyclicError
	require.ErrorAs(t, err, &cyclic)
}

func TestTwoCycleIsFatal(t *testing.T) {
	r := newTestResolver(map[string]any{
		"a": "${b}",
		"b": "${a}",
	})

	_, err := r.ResolveString("${a}")
	var cyclic *CyclicError
	require.ErrorAs(t, err, &cyclic)
	assert.Contains(t, err.Error(), "cyclic")
}

func TestSelfReferenceIsFatal(t *testing.T) {
	r := newTestResolver(map[string]any{"a": "prefix ${a}"})

	_, err := r.ResolveString("${a}")
	var cyclic *CyclicError
	require.ErrorAs(t, err, &cyclic)
}

func TestUnresolvedIsFatal(t *testing.T) {
	r := newTestResolver(nil)

	_, err := r.ResolveString("${missing}")
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "${missing}", unresolved.Placeholder)
}

func TestUnresolvedNamesFieldPath(t *testing.T) {
	r := newTestResolver(nil)

	_, err := r.ResolveAt(map[string]any{
		"Headers": map[string]any{"Authorization": "Bearer ${token}"},
	}, "")

	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "${token}", unresolved.Placeholder)
	assert.Equal(t, "Headers.Authorization", unresolved.Path)
}

func TestFakeGeneratorCall(t *testing.T) {
	r := newTestResolver(nil)

	a, err := r.ResolveString("${fake.uuid4()}")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f-]{36}$`, a)

	b, err := r.ResolveString("${fake.uuid4()}")
	require.NoError(t, err)
	// Two resolutions need not be equal; equality here would be a fluke.
	assert.NotEqual(t, a, b)
}

func TestUnknownFakeMethodIsFatal(t *testing.T) {
	r := newTestResolver(nil)

	_, err := r.ResolveString("${fake.bogus()}")
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Contains(t, unresolved.Reason, "unknown generator method")
}

func TestResolveNestedStructure(t *testing.T) {
	r := newTestResolver(map[string]any{
		"host":  "api.test",
		"limit": 25,
	})

	in := map[string]any{
		"Endpoint": "https://${host}/items",
		"QueryParams": map[string]any{
			"limit": "${limit}",
		},
		"Tags": []any{"${host}", "static"},
	}

	out, err := r.Resolve(in)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "https://api.test/items", m["Endpoint"])
	assert.Equal(t, float64(25), m["QueryParams"].(map[string]any)["limit"])
	assert.Equal(t, []any{"api.test", "static"}, m["Tags"])
}

func TestResolveLeavesScalarsAlone(t *testing.T) {
	r := newTestResolver(nil)
	out, err := r.Resolve(map[string]any{"n": 3, "b": false})
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, 3, m["n"])
	assert.Equal(t, false, m["b"])
}
