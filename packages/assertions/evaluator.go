package assertions

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/imhmg/purl/packages/extract"
	"github.com/imhmg/purl/packages/http"
	"github.com/imhmg/purl/packages/template"
)

// Result records one assertion outcome.
type Result struct {
	Label    string
	Passed   bool
	Message  string
	Actual   any
	Expected any
	Operator string
}

// Rule is a labeled assert expression from a request spec.
type Rule struct {
	Label string
	Expr  string
}

var (
	pipeOpPattern    = regexp.MustCompile(`\|\s*(==|!=|>|<|contains|!contains)\s*\|`)
	bracketOpPattern = regexp.MustCompile(`\[\s*(==|!=|>|<|contains|!contains)\s*\]`)
)

// Evaluator evaluates assert rules against one completed HTTP exchange. The
// resolver substitutes placeholders on the expected side; it may be nil, in
// which case expected values are taken literally.
type Evaluator struct {
	extractor *extract.Extractor
	resolver  *template.Resolver
}

func NewEvaluator(resp *http.Response, resolver *template.Resolver) *Evaluator {
	return &Evaluator{
		extractor: extract.NewExtractor(resp),
		resolver:  resolver,
	}
}

// StatusEquals builds the auto-generated status assertion for a request that
// declares an expected top-level status code.
func (e *Evaluator) StatusEquals(expected int) *Result {
	actual, _ := e.extractor.Extract("@status")
	result := &Result{
		Label:    "status",
		Actual:   actual,
		Expected: expected,
		Operator: "==",
	}
	result.Passed, result.Message = e.equals(actual, expected)
	return result
}

// Evaluate parses and evaluates one assert expression. The source side may
// contain placeholders; they are resolved before extraction, so captures
// taken from the same response are already visible.
func (e *Evaluator) Evaluate(label, expr string) *Result {
	left, op, right := parseExpr(expr)
	result := &Result{Label: label, Operator: op}

	if e.resolver != nil && strings.Contains(left, "${") {
		resolved, err := e.resolver.ResolveString(left)
		if err != nil {
			result.Message = err.Error()
			return result
		}
		left = resolved
	}

	actual, found := e.extractor.Extract(left)
	result.Actual = actual

	if op == "" {
		// Presence check: the source resolved to a non-null, non-empty value.
		if found && actual != nil && fmt.Sprintf("%v", actual) != "" {
			result.Passed = true
		} else {
			result.Message = "expected a value to be present"
		}
		return result
	}

	expected, err := e.resolveExpected(right)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Expected = expected

	result.Passed, result.Message = e.compare(actual, op, expected)
	return result
}

// EvaluateAll runs the auto status assertion (when expectedStatus is
// nonzero) followed by every user rule in order.
func EvaluateAll(resp *http.Response, resolver *template.Resolver, expectedStatus int, rules []Rule) []*Result {
	e := NewEvaluator(resp, resolver)

	var results []*Result
	if expectedStatus > 0 {
		results = append(results, e.StatusEquals(expectedStatus))
	}
	for _, r := range rules {
		results = append(results, e.Evaluate(r.Label, r.Expr))
	}
	return results
}

// parseExpr splits an expression into source, operator, and expected value.
// Both "|op|" and "[op]" operator styles are accepted; a missing operator
// yields op == "".
func parseExpr(expr string) (left, op, right string) {
	s := strings.TrimSpace(expr)

	for _, pattern := range []*regexp.Regexp{pipeOpPattern, bracketOpPattern} {
		if loc := pattern.FindStringSubmatchIndex(s); loc != nil {
			op = s[loc[2]:loc[3]]
			left = strings.TrimSpace(s[:loc[0]])
			right = strings.TrimSpace(s[loc[1]:])
			return left, op, right
		}
	}

	return s, "", ""
}

func (e *Evaluator) resolveExpected(raw string) (any, error) {
	var resolved any = raw
	if e.resolver != nil {
		v, err := e.resolver.Resolve(raw)
		if err != nil {
			return nil, err
		}
		resolved = v
	}

	if s, ok := resolved.(string); ok {
		return unquote(s), nil
	}
	return resolved, nil
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func (e *Evaluator) compare(actual any, op string, expected any) (bool, string) {
	switch op {
	case "==":
		return e.equals(actual, expected)
	case "!=":
		passed, _ := e.equals(actual, expected)
		if passed {
			return false, fmt.Sprintf("expected not to equal %v", expected)
		}
		return true, ""
	case ">":
		return e.compareNumeric(actual, expected, ">")
	case "<":
		return e.compareNumeric(actual, expected, "<")
	case "contains":
		return e.contains(actual, expected)
	case "!contains":
		passed, _ := e.contains(actual, expected)
		if passed {
			return false, fmt.Sprintf("expected not to contain %v", expected)
		}
		return true, ""
	default:
		return false, fmt.Sprintf("unknown operator: %s", op)
	}
}

// equals does value-typed comparison, falling back to numeric then string
// comparison when the Go types differ.
func (e *Evaluator) equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	if fmt.Sprintf("%v", actual) == fmt.Sprintf("%v", expected) {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", expected, actual)
}

func (e *Evaluator) compareNumeric(actual, expected any, op string) (bool, string) {
	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)

	if !aOk || !eOk {
		return false, fmt.Sprintf("type mismatch: cannot compare %v %s %v numerically", actual, op, expected)
	}

	var passed bool
	switch op {
	case ">":
		passed = actualNum > expectedNum
	case "<":
		passed = actualNum < expectedNum
	}

	if passed {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v %s %v", actual, op, expected)
}

// contains checks substring containment for string-like values and
// membership for sequences.
func (e *Evaluator) contains(actual, expected any) (bool, string) {
	if arr, ok := actual.([]any); ok {
		for _, item := range arr {
			if passed, _ := e.equals(item, expected); passed {
				return true, ""
			}
		}
		return false, fmt.Sprintf("expected sequence to contain %v", expected)
	}

	actualStr := fmt.Sprintf("%v", actual)
	expectedStr := fmt.Sprintf("%v", expected)
	if strings.Contains(actualStr, expectedStr) {
		return true, ""
	}
	return false, fmt.Sprintf("expected '%v' to contain '%v'", actual, expected)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
