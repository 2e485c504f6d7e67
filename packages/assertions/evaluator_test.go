package assertions

import (
	"testing"
	"time"

	"github.com/imhmg/purl/packages/fake"
	"github.com/imhmg/purl/packages/http"
	"github.com/imhmg/purl/packages/template"
	"github.com/imhmg/purl/packages/vars"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testResponse() *http.Response {
	return &http.Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json", "X-Token": "abc123"},
		Body:       []byte(`{"id": 7, "email": "a@b.com", "count": 12, "tags": ["alpha", "beta"], "deleted": false}`),
		Duration:   80 * time.Millisecond,
	}
}

func testResolver(values map[string]any) *template.Resolver {
	store := vars.NewStore()
	store.SetAll(values, vars.LayerSuite)
	return template.NewResolver(store, fake.New())
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		expr  string
		left  string
		op    string
		right string
	}{
		{"@status |==| 200", "@status", "==", "200"},
		{"@status [==] 200", "@status", "==", "200"},
		{"@body jsonpath $.id |!=| 9", "@body jsonpath $.id", "!=", "9"},
		{"@time |<| 5000", "@time", "<", "5000"},
		{"@body |contains| hello", "@body", "contains", "hello"},
		{"@body |!contains| oops", "@body", "!contains", "oops"},
		{"@body jsonpath $.id", "@body jsonpath $.id", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			left, op, right := parseExpr(tt.expr)
			assert.Equal(t, tt.left, left)
			assert.Equal(t, tt.op, op)
			assert.Equal(t, tt.right, right)
		})
	}
}

func TestEqualityAssertions(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("id matches", "@body jsonpath $.id |==| 7")
	assert.True(t, r.Passed, r.Message)
	assert.Equal(t, float64(7), r.Actual)

	r = e.Evaluate("id differs", "@body jsonpath $.id |!=| 9")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("wrong id", "@body jsonpath $.id |==| 9")
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "expected 9")
}

func TestNumericComparison(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("count above", "@body jsonpath $.count |>| 10")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("count below", "@body jsonpath $.count |<| 10")
	assert.False(t, r.Passed)

	r = e.Evaluate("not a number", "@body jsonpath $.email |>| 10")
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "type mismatch")
}

func TestContains(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("email domain", "@body jsonpath $.email |contains| b.com")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("no admin", "@body jsonpath $.email |!contains| admin")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("sequence member", "@body jsonpath $.tags |contains| beta")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("sequence non-member", "@body jsonpath $.tags |contains| gamma")
	assert.False(t, r.Passed)
}

func TestPresenceCheck(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("id present", "@body jsonpath $.id")
	assert.True(t, r.Passed, r.Message)
	assert.Empty(t, r.Operator)

	r = e.Evaluate("missing field", "@body jsonpath $.missing")
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "present")
}

func TestFalseValueIsPresent(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	// A false boolean is a real value; only null/absent fails presence.
	r := e.Evaluate("deleted flag", "@body jsonpath $.deleted")
	assert.True(t, r.Passed, r.Message)
}

func TestStatusAndTimeSubjects(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("ok", "@status |==| 200")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("fast enough", "@time |<| 5000")
	assert.True(t, r.Passed, r.Message)
}

func TestHeaderSubject(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("token header", "@headers['X-Token'] |==| abc123")
	assert.True(t, r.Passed, r.Message)

	r = e.Evaluate("content type", "@headers['Content-Type'] |contains| json")
	assert.True(t, r.Passed, r.Message)
}

func TestExpectedSidePlaceholder(t *testing.T) {
	resolver := testResolver(map[string]any{"expected_email": "a@b.com", "expected_id": 7})
	e := NewEvaluator(testResponse(), resolver)

	r := e.Evaluate("email echoed", "@body jsonpath $.email |==| ${expected_email}")
	assert.True(t, r.Passed, r.Message)

	// Whole-value placeholder keeps the numeric type.
	r = e.Evaluate("id echoed", "@body jsonpath $.id |==| ${expected_id}")
	assert.True(t, r.Passed, r.Message)
	assert.Equal(t, float64(7), r.Expected)
}

func TestSourceSidePlaceholder(t *testing.T) {
	resolver := testResolver(map[string]any{"field": "id", "header_name": "X-Token"})
	e := NewEvaluator(testResponse(), resolver)

	r := e.Evaluate("picked field", "@body jsonpath $.${field} |==| 7")
	assert.True(t, r.Passed, r.Message)
	assert.Equal(t, float64(7), r.Actual)

	r = e.Evaluate("picked header", "@headers['${header_name}']")
	assert.True(t, r.Passed, r.Message)
	assert.Equal(t, "abc123", r.Actual)
}

func TestSourceSideUnresolved(t *testing.T) {
	resolver := testResolver(nil)
	e := NewEvaluator(testResponse(), resolver)

	r := e.Evaluate("bad source", "@body jsonpath $.${nope} |==| 7")
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "unresolved placeholder")
}

func TestExpectedSideUnresolved(t *testing.T) {
	resolver := testResolver(nil)
	e := NewEvaluator(testResponse(), resolver)

	r := e.Evaluate("bad expected", "@body jsonpath $.id |==| ${nope}")
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "unresolved placeholder")
}

func TestQuotedExpected(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	r := e.Evaluate("quoted", `@body jsonpath $.email |==| "a@b.com"`)
	assert.True(t, r.Passed, r.Message)
}

func TestAutoStatusAssertion(t *testing.T) {
	resp := testResponse()
	e := NewEvaluator(resp, nil)

	r := e.StatusEquals(201)
	assert.False(t, r.Passed)
	assert.Equal(t, "status", r.Label)
	assert.Equal(t, 200, r.Actual)
	assert.Equal(t, 201, r.Expected)
	assert.Equal(t, "==", r.Operator)
}

func TestEvaluateAll(t *testing.T) {
	rules := []Rule{
		{Label: "id present", Expr: "@body jsonpath $.id"},
		{Label: "wrong email", Expr: "@body jsonpath $.email |==| other@b.com"},
	}

	results := EvaluateAll(testResponse(), nil, 201, rules)
	require.Len(t, results, 3)

	// The failing auto status assertion never aborts the rest.
	assert.Equal(t, "status", results[0].Label)
	assert.False(t, results[0].Passed)
	assert.True(t, results[1].Passed)
	assert.False(t, results[2].Passed)
}

func TestNumericStringEquality(t *testing.T) {
	e := NewEvaluator(testResponse(), nil)

	// "7" (string expected) equals 7 (number actual) by numeric coercion.
	r := e.Evaluate("coerced", "@body jsonpath $.id |==| 7.0")
	assert.True(t, r.Passed, r.Message)
}
