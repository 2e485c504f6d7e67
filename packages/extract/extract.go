package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/imhmg/purl/packages/http"
	"github.com/tidwall/gjson"
)

var headerBracketPattern = regexp.MustCompile(`^@headers\['([^']+)'\]$`)

// Extractor evaluates capture sources against one completed HTTP exchange.
// A source that matches nothing yields (nil, false), a capture miss rather
// than an error.
type Extractor struct {
	response *http.Response
	bodyJSON gjson.Result
	hasJSON  bool
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{response: resp}
	if json.Valid(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.hasJSON = true
	}
	return e
}

// Extract evaluates a capture expression. Supported sources:
//
//	@status
//	@time
//	@headers['Name']  or  @headers Name
//	@body
//	@body jsonpath <path>
//	@body regex <pattern>
func (e *Extractor) Extract(expr string) (any, bool) {
	expr = strings.TrimSpace(expr)

	switch {
	case expr == "@status":
		return e.response.StatusCode, true
	case expr == "@time":
		return e.response.DurationMs(), true
	case expr == "@body":
		return e.response.BodyString(), true
	}

	if m := headerBracketPattern.FindStringSubmatch(expr); m != nil {
		return e.extractHeader(m[1])
	}
	if name, ok := strings.CutPrefix(expr, "@headers "); ok {
		return e.extractHeader(strings.TrimSpace(name))
	}
	if path, ok := strings.CutPrefix(expr, "@body jsonpath "); ok {
		return e.extractJSONPath(strings.TrimSpace(path))
	}
	if pattern, ok := strings.CutPrefix(expr, "@body regex "); ok {
		return e.extractRegex(strings.TrimSpace(pattern))
	}

	return nil, false
}

func (e *Extractor) extractHeader(name string) (any, bool) {
	value := e.response.Header(name)
	if value == "" {
		return nil, false
	}
	return value, true
}

func (e *Extractor) extractJSONPath(path string) (any, bool) {
	if !e.hasJSON {
		return nil, false
	}

	gpath := JSONPathToGJSON(path)
	if gpath == "" {
		return e.bodyJSON.Value(), true
	}

	result := e.bodyJSON.Get(gpath)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractRegex(pattern string) (any, bool) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, false
	}

	m := re.FindStringSubmatch(e.response.BodyString())
	if m == nil {
		return nil, false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return m[0], true
}

// JSONPathToGJSON converts the documented JSONPath subset ($.a.b, $.items[0])
// to gjson dot notation.
func JSONPathToGJSON(path string) string {
	path = strings.TrimSpace(path)
	path = strings.TrimPrefix(path, "$")
	// [N] -> .N
	path = regexp.MustCompile(`\[(\d+)\]`).ReplaceAllString(path, ".$1")
	// ['key'] -> .key
	path = regexp.MustCompile(`\['([^']+)'\]`).ReplaceAllString(path, ".$1")
	path = strings.TrimPrefix(path, ".")
	return path
}
